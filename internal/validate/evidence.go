package validate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultSchema is the published evidence-bundle schema.
//
//go:embed schema/evidence_bundle.schema.json
var DefaultSchema []byte

const schemaURL = "evidence_bundle.schema.json"

// Schema is a compiled evidence-bundle schema.
type Schema struct {
	sch *jsonschema.Schema
}

// CompileSchema compiles a draft 2020-12 schema document.
func CompileSchema(data []byte) (*Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	sch, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{sch: sch}, nil
}

// LoadSchema reads and compiles a schema file. An empty path selects DefaultSchema.
func LoadSchema(path string) (*Schema, error) {
	if path == "" {
		return CompileSchema(DefaultSchema)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	s, err := CompileSchema(data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return s, nil
}

// CheckEvidence validates an evidence bundle file. An unreadable file and a
// document that is not JSON each count as one violation.
func (s *Schema) CheckEvidence(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("evidence bundle could not be read: %v", err)}
	}
	return s.checkDocument(data)
}

func (s *Schema) checkDocument(data []byte) []string {
	doc, err := decodeInstance(data)
	if err != nil {
		return []string{fmt.Sprintf("evidence bundle is not valid JSON: %v", err)}
	}
	err = s.sch.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}
	var out []string
	collectLeaves(verr, &out)
	slices.Sort(out)
	return slices.Compact(out)
}

// decodeInstance keeps numbers as json.Number so integer keywords see the
// literal the writer produced.
func decodeInstance(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return doc, nil
}

// collectLeaves flattens the error tree to its most specific causes.
func collectLeaves(e *jsonschema.ValidationError, out *[]string) {
	if len(e.Causes) == 0 {
		loc := e.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, fmt.Sprintf("%s: %s", loc, e.Message))
		return
	}
	for _, c := range e.Causes {
		collectLeaves(c, out)
	}
}
