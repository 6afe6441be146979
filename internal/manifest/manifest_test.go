package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestPhageIDsKeepsFileOrder(t *testing.T) {
	path := writeFile(t, "phages.tsv", "phage_id\tgenome_path\nP3\tg/p3.fa\nP1\tg/p1.fa\nP2\n")
	ids, err := PhageIDs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"P3", "P1", "P2"}, ids)
}

func TestPhageIDsMissingColumn(t *testing.T) {
	path := writeFile(t, "phages.tsv", "id\tgenome_path\nP1\tx\n")
	_, err := PhageIDs(path)
	assert.ErrorContains(t, err, "phage_id")
}

func TestContainsHost(t *testing.T) {
	path := writeFile(t, "hosts.tsv", "host_id\tspecies\nPAO1\tP. aeruginosa\nMG1655\tE. coli\n")

	ok, err := ContainsHost(path, "MG1655")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ContainsHost(path, "ATCC")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContainsHostMissingFile(t *testing.T) {
	_, err := ContainsHost(filepath.Join(t.TempDir(), "nope.tsv"), "H1")
	assert.Error(t, err)
}

func TestEmptyManifest(t *testing.T) {
	path := writeFile(t, "empty.tsv", "")
	_, err := PhageIDs(path)
	assert.Error(t, err, "no header means no phage_id column")
}

func TestSHA256File(t *testing.T) {
	path := writeFile(t, "x.txt", "abc")
	sum, err := SHA256File(path)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)
}
