package persistence

import (
	"fmt"
	"path/filepath"

	"github.com/spacemeshos/ethproof/ethash"
)

const (
	OwnerReadWriteExec = 0o700

	epochsDirName = "epochs"
	proofsDirName = "proofs"
	epochFileExt  = ".epoch"
	proofFileExt  = ".proof"
)

func EpochsDir(datadir string) string {
	return filepath.Join(datadir, epochsDirName)
}

func ProofsDir(datadir string) string {
	return filepath.Join(datadir, proofsDirName)
}

func EpochFilename(datadir string, epoch uint32) string {
	return filepath.Join(EpochsDir(datadir), fmt.Sprintf("%d%s", epoch, epochFileExt))
}

func ProofFilename(datadir string, header ethash.Hash, nonce uint64) string {
	return filepath.Join(ProofsDir(datadir), fmt.Sprintf("%v-%016x%s", header, nonce, proofFileExt))
}
