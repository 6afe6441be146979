package feature

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
)

// #region loader
// Loader reads feature artefacts from the per-module output directories.
// Similarity and structural features live at <dir>/<host_id>/<phage_id>.json,
// safety features at <dir>/<phage_id>.json. An empty directory disables the module.
type Loader struct {
	SimilarityDir string
	StructuralDir string
	SafetyDir     string
}

// Load reads all three features for one host×phage pair.
func (l Loader) Load(hostID, phageID string) Set {
	return Set{
		Similarity: l.Similarity(hostID, phageID),
		Structural: l.Structural(hostID, phageID),
		Safety:     l.Safety(phageID),
	}
}

// Similarity loads the similarity feature for a pair.
func (l Loader) Similarity(hostID, phageID string) Evidence[Similarity] {
	if l.SimilarityDir == "" {
		return Absent[Similarity]()
	}
	return readJSON[Similarity](PairPath(l.SimilarityDir, hostID, phageID))
}

// Structural loads the structural feature for a pair.
func (l Loader) Structural(hostID, phageID string) Evidence[Structural] {
	if l.StructuralDir == "" {
		return Absent[Structural]()
	}
	return readJSON[Structural](PairPath(l.StructuralDir, hostID, phageID))
}

// Safety loads the per-phage safety feature.
func (l Loader) Safety(phageID string) Evidence[Safety] {
	if l.SafetyDir == "" {
		return Absent[Safety]()
	}
	return readJSON[Safety](PhagePath(l.SafetyDir, phageID))
}

// #endregion loader

// #region paths
// PairPath is the artefact path of a host-scoped feature.
func PairPath(dir, hostID, phageID string) string {
	return filepath.Join(dir, hostID, phageID+".json")
}

// PhagePath is the artefact path of a phage-scoped feature.
func PhagePath(dir, phageID string) string {
	return filepath.Join(dir, phageID+".json")
}

// #endregion paths

// #region helpers
func readJSON[T any](path string) Evidence[T] {
	data, err := os.ReadFile(path)
	if err != nil {
		return Absent[T]()
	}
	return Decode[T](data)
}

// Decode parses one artefact. Malformed JSON, a non-object document, an empty
// object and a bare null all yield Absent.
func Decode[T any](data []byte) Evidence[T] {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Absent[T]()
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil || len(fields) == 0 {
		return Absent[T]()
	}
	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return Absent[T]()
	}
	return Present(v)
}

// #endregion helpers
