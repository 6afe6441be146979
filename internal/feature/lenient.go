package feature

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// #region loose-values
// Producers are loose about scalar types: counts arrive as 3, 3.0 or "3",
// versions as "2.1" or 2.1. The loose* types accept those variants and fall
// back to "unset" instead of failing the whole artefact.

type looseInt struct {
	v  int
	ok bool
}

func (l *looseInt) UnmarshalJSON(data []byte) error {
	var f Float
	_ = f.UnmarshalJSON(data)
	*l = looseInt{}
	if v, ok := f.Get(); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
		*l = looseInt{v: int(v), ok: true}
	}
	return nil
}

func (l looseInt) ptr() *int {
	if !l.ok {
		return nil
	}
	v := l.v
	return &v
}

type looseBool bool

func (l *looseBool) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = false
		return nil
	}
	switch v := raw.(type) {
	case bool:
		*l = looseBool(v)
	case float64:
		*l = v != 0
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		*l = looseBool(b)
	default:
		*l = false
	}
	return nil
}

type looseString struct {
	s *string
}

func (l *looseString) UnmarshalJSON(data []byte) error {
	*l = looseString{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			l.s = &s
		}
	case '{', '[':
	default:
		s := string(data)
		l.s = &s
	}
	return nil
}

// looseStrings keeps the string elements of a JSON array and drops the rest.
type looseStrings struct {
	v  []string
	ok bool
}

func (l *looseStrings) UnmarshalJSON(data []byte) error {
	*l = looseStrings{}
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil
	}
	l.ok = true
	l.v = make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			l.v = append(l.v, s)
		}
	}
	return nil
}

// #endregion loose-values

// #region loose-provenance
type looseProvenance struct {
	Tool        looseString `json:"tool"`
	ToolVersion looseString `json:"tool_version"`
	Status      looseString `json:"status"`
	Reason      looseString `json:"reason"`
}

func (lp looseProvenance) apply(p *Provenance) {
	*p = Provenance{ToolVersion: lp.ToolVersion.s, Reason: lp.Reason.s}
	if lp.Tool.s != nil {
		p.Tool = *lp.Tool.s
	}
	if lp.Status.s != nil {
		p.Status = Status(*lp.Status.s)
	}
}

// #endregion loose-provenance

// #region unmarshal
// UnmarshalJSON implements json.Unmarshaler with loose provenance fields.
func (s *Similarity) UnmarshalJSON(data []byte) error {
	type plain Similarity
	aux := struct {
		*plain
		looseProvenance
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	aux.looseProvenance.apply(&s.Provenance)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler with a loose hit_count.
func (s *Structural) UnmarshalJSON(data []byte) error {
	type plain Structural
	aux := struct {
		*plain
		HitCount looseInt `json:"hit_count"`
		looseProvenance
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.HitCount = max(aux.HitCount.v, 0)
	aux.looseProvenance.apply(&s.Provenance)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler with loose counts, markers and flags.
func (s *Safety) UnmarshalJSON(data []byte) error {
	type plain Safety
	aux := struct {
		*plain
		VFDBHits      looseInt     `json:"vfdb_hits"`
		IntegraseLike looseBool    `json:"integrase_like"`
		TRNACount     looseInt     `json:"tRNA_count"`
		Flags         looseStrings `json:"flags"`
		looseProvenance
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.VFDBHits = max(aux.VFDBHits.v, 0)
	s.IntegraseLike = bool(aux.IntegraseLike)
	s.TRNACount = aux.TRNACount.ptr()
	s.Flags = nil
	if aux.Flags.ok {
		s.Flags = aux.Flags.v
	}
	aux.looseProvenance.apply(&s.Provenance)
	return nil
}

// #endregion unmarshal
