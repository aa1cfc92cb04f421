package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgolubev/cgio/cmd"
	"github.com/tgolubev/cgio/h5io"
	"github.com/tgolubev/cgio/partition"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rc := cmd.NewRootCommand(strings.NewReader(""), &stdout, &stderr)
	rc.SetArgs(args)
	err := rc.Execute()
	return stdout.String(), stderr.String(), err
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := execute(t, args...)
	require.NoError(t, err, "cgio %s\nstderr: %s", strings.Join(args, " "), errOut)
	return out
}

func TestRootCommand(t *testing.T) {
	out := run(t, "--help")
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "Available Commands:")
	for _, sub := range []string{"generate", "partition", "read", "store", "verify", "inspect", "config"} {
		assert.Contains(t, out, sub)
	}
}

func TestPartitionCommand(t *testing.T) {
	out := run(t, "partition", "--rows", "10", "--procs", "3")
	assert.Equal(t, "rank 0: rows [0, 3) (3 rows)\n"+
		"rank 1: rows [3, 6) (3 rows)\n"+
		"rank 2: rows [6, 9) (3 rows)\n"+
		"unassigned: rows [9, 10) (1 rows)\n", out)

	_, _, err := execute(t, "partition", "--rows", "10", "--procs", "0")
	assert.Error(t, err)
}

func TestGenerateReadStoreVerify(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "sys.h5")
	run(t, "generate", "-n", "6", "--seed", "3", "--late", name)

	out := run(t, "inspect", name)
	assert.Contains(t, out, "superblock version 3")
	assert.Regexp(t, `/A\s+dataset\s+6x6\s+H5T_IEEE_F64LE\s+288 B`, out)
	assert.Regexp(t, `/num_iters\s+dataset\s+scalar\s+H5T_STD_I32LE\s+not allocated`, out)

	full := run(t, "read", "--rows", "6", "--full", name)
	assert.Len(t, strings.Split(strings.TrimSpace(full), "\n"), 6)
	block := run(t, "read", "--rows", "6", "--rank", "1", "--size", "3", name)
	fullLines := strings.Split(full, "\n")
	assert.Equal(t, strings.Join(fullLines[2:4], "\n")+"\n", block)

	rhs := run(t, "read", "--rows", "6", "--vector", name)
	assert.True(t, strings.HasSuffix(rhs, "\n\n"))

	out = run(t, "verify", "--rows", "6", "--procs", "4", name)
	assert.Equal(t, "ok: 4 processes cover rows [0, 4) of 6\n", out)

	solution := filepath.Join(dir, "x.txt")
	require.NoError(t, os.WriteFile(solution, []byte("1 2 3 4 5 6\n"), 0o644))
	_, _, err := execute(t, "store", "--rows", "6", "--solution-file", solution, "--rank", "1", "--size", "2", name)
	assert.Error(t, err, "rank 1 must not store results")

	run(t, "store", "--rows", "6", "--solution-file", solution, "--iterations", "5", "--tolerance", "1e-6", name)
	r, err := h5io.NewReader(partition.Single)
	require.NoError(t, err)
	x, err := r.ReadVector(name, h5io.DatasetSolution, 6)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, []float64(x))

	out = run(t, "inspect", name)
	assert.Regexp(t, `/num_iters\s+dataset\s+scalar\s+H5T_STD_I32LE\s+4 B`, out)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "cgio.toml")
	require.NoError(t, os.WriteFile(conf, []byte("matrix = \"K\"\nverbose = true\n"), 0o644))

	out := run(t, "config", "--config", conf, "--rhs", "f")
	assert.Contains(t, out, "matrix = 'K'")
	assert.Contains(t, out, "rhs = 'f'")
	assert.Contains(t, out, "verbose = true")

	t.Setenv("CGIO_MATRIX", "M")
	out = run(t, "config")
	assert.Contains(t, out, "matrix = 'M'")

	require.NoError(t, os.WriteFile(conf, []byte("bogus = 1\n"), 0o644))
	_, _, err := execute(t, "config", "--config", conf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid option")
}

func TestGenerateFromText(t *testing.T) {
	dir := t.TempDir()
	matrix, rhs := filepath.Join(dir, "A.txt"), filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(matrix, []byte("2 -1\n-1 2\n"), 0o644))
	require.NoError(t, os.WriteFile(rhs, []byte("1 1\n"), 0o644))
	name := filepath.Join(dir, "text.h5")

	run(t, "generate", "-n", "2", "--matrix-file", matrix, "--rhs-file", rhs, "--matrix", "K", name)
	out := run(t, "read", "--rows", "2", "--full", "--matrix", "K", name)
	assert.Equal(t, "   2.00000  -1.00000\n  -1.00000   2.00000\n", out)

	_, _, err := execute(t, "generate", "-n", "2", "--matrix-file", matrix, name)
	assert.Error(t, err)
}
