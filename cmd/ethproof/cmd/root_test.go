package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/ethproof/ethash"
	"github.com/spacemeshos/ethproof/persistence"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func generate(t *testing.T, dir string, extra ...string) string {
	t.Helper()
	args := append([]string{
		"generate",
		"--datadir", dir,
		"--log-level", "error",
		"--dataset-count", "1000",
		"--difficulty", "4",
		"--seed", "0102",
	}, extra...)
	out, err := run(t, args...)
	require.NoError(t, err, out)

	files, err := persistence.ListEnvelopes(dir)
	require.NoError(t, err)
	require.NotEmpty(t, files)
	return files[len(files)-1]
}

func TestGenerateAndVerify(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	path := generate(t, dir, "--epoch", "2")

	params, err := persistence.LoadEpoch(dir, 2)
	r.NoError(err)
	r.Equal(uint32(1000), params.DatasetCount)

	env, err := persistence.LoadEnvelope(path)
	r.NoError(err)
	r.Equal(uint32(2), env.Epoch)
	r.Equal(uint64(4), env.Difficulty)
	r.True(ethash.CheckDifficulty(finalHash(env), 4))

	out, err := run(t, "verify", "--datadir", dir, "--log-level", "error", path)
	r.NoError(err, out)
	r.Contains(out, "valid")
}

func finalHash(env *persistence.Envelope) ethash.Hash {
	seed := ethash.SeedHash(env.Header, env.Nonce)
	var elements [ethash.NumSolutionElements]ethash.Element
	for i := range elements {
		copy(elements[i][:], env.Proof[i*ethash.ElementSize:])
	}
	mix, _ := ethash.InterpretPath(1000, &seed, &elements)
	return ethash.FinalHash(&seed, &mix)
}

func TestVerify_Tampered(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	path := generate(t, dir)
	env, err := persistence.LoadEnvelope(path)
	r.NoError(err)
	env.Proof[5] ^= 0xff
	_, err = persistence.SaveEnvelope(dir, env)
	r.NoError(err)

	_, err = run(t, "verify", "--datadir", dir, "--log-level", "error", path)
	r.Error(err)
}

func TestVerify_MissingEpoch(t *testing.T) {
	dir := t.TempDir()
	path := generate(t, dir, "--epoch", "1")
	require.NoError(t, os.Remove(persistence.EpochFilename(dir, 1)))

	_, err := run(t, "verify", "--datadir", dir, "--log-level", "error", path)
	require.ErrorIs(t, err, persistence.ErrEpochNotExist)
}

func TestBatch(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	generate(t, dir, "--header", strings.Repeat("11", 32))
	generate(t, dir, "--header", strings.Repeat("22", 32), "--epoch", "1")
	bad := generate(t, dir, "--header", strings.Repeat("33", 32))

	out, err := run(t, "batch", "--datadir", dir, "--log-level", "error", "--workers", "2")
	r.NoError(err, out)
	r.Equal(3, strings.Count(out, "valid"))

	env, err := persistence.LoadEnvelope(bad)
	r.NoError(err)
	env.Proof = env.Proof[:ethash.FixedProofSize-1]
	_, err = persistence.SaveEnvelope(dir, env)
	r.NoError(err)

	out, err = run(t, "batch", "--datadir", dir, "--log-level", "error")
	r.ErrorContains(err, "1 of 3 proofs rejected")
	r.Contains(out, "underrun")
}

func TestGenerate_InvalidFlags(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, "generate", "--datadir", dir, "--seed", "zz")
	require.ErrorContains(t, err, "invalid seed")

	_, err = run(t, "generate", "--datadir", dir, "--header", "abcd")
	require.ErrorContains(t, err, "invalid header")

	_, err = run(t, "generate", "--datadir", dir, "--dataset-count", "0")
	require.ErrorContains(t, err, "`DatasetCount`")
}

func TestGenerate_NoSolution(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "generate",
		"--datadir", dir,
		"--log-level", "error",
		"--dataset-count", "64",
		"--difficulty", "18446744073709551615",
		"--attempts", "3",
	)
	require.ErrorIs(t, err, ErrNoSolution)
}

func TestConfigFile(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	cfgFile := filepath.Join(dir, "config.yaml")
	r.NoError(os.WriteFile(cfgFile, []byte("workers: 7\ndataset-count: 123\n"), 0o600))

	out, err := run(t, "--config", cfgFile, "--datadir", dir, "--print-config")
	r.NoError(err)
	r.Contains(out, "Workers: (int) 7")
	r.Contains(out, "DatasetCount: (uint32) 123")
	r.Contains(out, dir)

	out, err = run(t, "--config", cfgFile, "--workers", "9", "--print-config")
	r.NoError(err)
	r.Contains(out, "Workers: (int) 9")

	_, err = run(t, "--config", filepath.Join(dir, "missing.yaml"))
	r.ErrorContains(err, "failed to read config file")
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("ETHPROOF_DATASET_COUNT", "77")

	out, err := run(t, "--print-config")
	require.NoError(t, err)
	require.Contains(t, out, "DatasetCount: (uint32) 77")

	out, err = run(t, "--dataset-count", "78", "--print-config")
	require.NoError(t, err)
	require.Contains(t, out, "DatasetCount: (uint32) 78")
}
