package persistence

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	xdr "github.com/nullstyle/go-xdr/xdr3"
	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/ethproof/ethash"
)

func TestEpoch_SaveLoad(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	params := ethash.EpochParams{DatasetCount: 4097, Root: ethash.Node{1, 2, 3}}
	r.NoError(SaveEpoch(dir, 7, params))

	got, err := LoadEpoch(dir, 7)
	r.NoError(err)
	r.Equal(params, got)

	_, err = os.Stat(EpochFilename(dir, 7) + ".tmp")
	r.ErrorIs(err, os.ErrNotExist)

	_, err = LoadEpoch(dir, 8)
	r.ErrorIs(err, ErrEpochNotExist)
}

func TestEpoch_Overwrite(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	r.NoError(SaveEpoch(dir, 1, ethash.EpochParams{DatasetCount: 1}))
	r.NoError(SaveEpoch(dir, 1, ethash.EpochParams{DatasetCount: 2}))

	got, err := LoadEpoch(dir, 1)
	r.NoError(err)
	r.Equal(uint32(2), got.DatasetCount)
}

func TestEnvelope_SaveLoad(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	env := &Envelope{
		Header:     ethash.Hash{0xde, 0xad},
		Nonce:      0x0102030405060708,
		Difficulty: 1000,
		Epoch:      3,
		Proof:      bytes.Repeat([]byte{0xab}, ethash.FixedProofSize+3*ethash.NodeSize),
	}
	path, err := SaveEnvelope(dir, env)
	r.NoError(err)
	r.Equal(ProofFilename(dir, env.Header, env.Nonce), path)

	got, err := LoadEnvelope(path)
	r.NoError(err)
	r.Equal(env, got)

	files, err := ListEnvelopes(dir)
	r.NoError(err)
	r.Equal([]string{path}, files)

	_, err = LoadEnvelope(filepath.Join(dir, "missing.proof"))
	r.ErrorIs(err, ErrProofNotExist)
}

func TestLoadEnvelope_Corrupt(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "bad.proof")
	r.NoError(os.WriteFile(path, []byte{1, 2, 3}, 0o600))

	_, err := LoadEnvelope(path)
	r.ErrorContains(err, "deserialization failure")
}

func TestReadAll(t *testing.T) {
	r := require.New(t)

	env := &Envelope{Nonce: 9, Proof: []byte{1, 2, 3}}
	var buf bytes.Buffer
	_, err := xdr.Marshal(&buf, env)
	r.NoError(err)

	got, err := ReadAll(&buf)
	r.NoError(err)
	r.Equal(env, got)
}

func TestListEnvelopes_Empty(t *testing.T) {
	files, err := ListEnvelopes(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, files)
}
