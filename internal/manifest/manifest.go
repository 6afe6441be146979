// Package manifest reads the tab-separated phage and host manifests and
// fingerprints input files for provenance.
package manifest

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// Column names required by the assembly.
const (
	PhageIDColumn = "phage_id"
	HostIDColumn  = "host_id"
)

// Row is one manifest record keyed by header name.
type Row map[string]string

// ReadTSV parses a tab-separated file with a header row.
func ReadTSV(path string) ([]Row, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	return parseTSV(f, path)
}

func parseTSV(r io.Reader, name string) ([]Row, []string, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header of %s: %w", name, err)
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", name, err)
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}

// PhageIDs returns the phage_id column of a phage manifest in file order.
func PhageIDs(path string) ([]string, error) {
	rows, header, err := ReadTSV(path)
	if err != nil {
		return nil, err
	}
	if !hasColumn(header, PhageIDColumn) {
		return nil, fmt.Errorf("phage manifest %s has no %q column", path, PhageIDColumn)
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r[PhageIDColumn])
	}
	return ids, nil
}

// ContainsHost reports whether hostID appears in the host_id column.
func ContainsHost(path, hostID string) (bool, error) {
	rows, header, err := ReadTSV(path)
	if err != nil {
		return false, err
	}
	if !hasColumn(header, HostIDColumn) {
		return false, fmt.Errorf("host manifest %s has no %q column", path, HostIDColumn)
	}
	for _, r := range rows {
		if r[HostIDColumn] == hostID {
			return true, nil
		}
	}
	return false, nil
}

// SHA256File returns the hex sha256 digest of a file's contents.
func SHA256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hasColumn(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}
