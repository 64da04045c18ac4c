package persistence

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	xdr "github.com/nullstyle/go-xdr/xdr3"

	"github.com/spacemeshos/ethproof/ethash"
)

var (
	ErrEpochNotExist = errors.New("epoch params don't exist")
	ErrProofNotExist = errors.New("proof doesn't exist")
)

// Envelope is a proof of work as it is stored and exchanged: the claimed
// header, the epoch it was sealed in and the compact proof.
type Envelope struct {
	Header     ethash.Hash
	Nonce      uint64
	Difficulty uint64
	Epoch      uint32
	Proof      []byte
}

// SaveEpoch writes the trusted params of an epoch into datadir.
func SaveEpoch(datadir string, epoch uint32, params ethash.EpochParams) error {
	if err := os.MkdirAll(EpochsDir(datadir), OwnerReadWriteExec); err != nil {
		return fmt.Errorf("dir creation failure: %w", err)
	}
	return writeXDR(EpochFilename(datadir, epoch), &params)
}

func LoadEpoch(datadir string, epoch uint32) (ethash.EpochParams, error) {
	var params ethash.EpochParams
	err := readXDR(EpochFilename(datadir, epoch), &params)
	if errors.Is(err, os.ErrNotExist) {
		return params, fmt.Errorf("%w: epoch %d", ErrEpochNotExist, epoch)
	}
	return params, err
}

// SaveEnvelope writes env into the proofs dir of datadir and returns its path.
func SaveEnvelope(datadir string, env *Envelope) (string, error) {
	if err := os.MkdirAll(ProofsDir(datadir), OwnerReadWriteExec); err != nil {
		return "", fmt.Errorf("dir creation failure: %w", err)
	}
	filename := ProofFilename(datadir, env.Header, env.Nonce)
	if err := writeXDR(filename, env); err != nil {
		return "", err
	}
	return filename, nil
}

// LoadEnvelope reads an envelope from an explicit path.
func LoadEnvelope(filename string) (*Envelope, error) {
	env := &Envelope{}
	err := readXDR(filename, env)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrProofNotExist, filename)
	}
	if err != nil {
		return nil, err
	}
	return env, nil
}

// ListEnvelopes returns the paths of all envelopes stored in datadir.
func ListEnvelopes(datadir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(ProofsDir(datadir), "*"+proofFileExt))
	if err != nil {
		return nil, err
	}
	return files, nil
}

func writeXDR(filename string, v any) error {
	tmp, err := os.Create(fmt.Sprintf("%s.tmp", filename))
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	defer tmp.Close()

	w := bufio.NewWriter(tmp)
	if _, err := xdr.Marshal(w, v); err != nil {
		return fmt.Errorf("serialization failure: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write to disk failure: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close tmp file %s: %w", tmp.Name(), err)
	}

	if err := atomic.ReplaceFile(tmp.Name(), filename); err != nil {
		return fmt.Errorf("atomic replace: %w", err)
	}
	return nil
}

func readXDR(filename string, v any) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := xdr.Unmarshal(bufio.NewReader(f), v); err != nil {
		return fmt.Errorf("deserialization failure of %s: %w", filename, err)
	}
	return nil
}

// ReadAll decodes an envelope from r.
func ReadAll(r io.Reader) (*Envelope, error) {
	env := &Envelope{}
	if _, err := xdr.Unmarshal(r, env); err != nil {
		return nil, fmt.Errorf("deserialization failure: %w", err)
	}
	return env, nil
}
