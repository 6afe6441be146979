package feature

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// #region evidence
// Evidence is a feature value that is either present or explicitly absent.
// A missing or unreadable artefact is Absent, never an error.
type Evidence[T any] struct {
	value   T
	present bool
}

// Present wraps v as available evidence.
func Present[T any](v T) Evidence[T] {
	return Evidence[T]{value: v, present: true}
}

// Absent returns the empty evidence value.
func Absent[T any]() Evidence[T] {
	return Evidence[T]{}
}

// FromPtr maps nil to Absent.
func FromPtr[T any](v *T) Evidence[T] {
	if v == nil {
		return Absent[T]()
	}
	return Present(*v)
}

// Get returns the wrapped value and whether it is present.
func (e Evidence[T]) Get() (T, bool) {
	return e.value, e.present
}

// IsPresent reports whether the evidence exists.
func (e Evidence[T]) IsPresent() bool {
	return e.present
}

// Ptr returns a pointer to a copy of the value, or nil when absent.
func (e Evidence[T]) Ptr() *T {
	if !e.present {
		return nil
	}
	v := e.value
	return &v
}

// #endregion evidence

// #region float
// Float is a nullable number as written by the feature producers. It accepts a
// JSON number, a numeric string or null. Anything else decodes to "not a number"
// rather than failing the surrounding document.
type Float struct {
	v  float64
	ok bool
}

// Num returns a valid Float.
func Num(v float64) Float {
	return Float{v: v, ok: true}
}

// Null returns an invalid Float, encoded as JSON null.
func Null() Float {
	return Float{}
}

// Get returns the number and whether it is usable.
func (f Float) Get() (float64, bool) {
	return f.v, f.ok
}

// Valid reports whether the value parsed as a number.
func (f Float) Valid() bool {
	return f.ok
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	*f = Float{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		*f = Num(v)
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			*f = Num(n)
		}
	case bool:
		if v {
			*f = Num(1)
		} else {
			*f = Num(0)
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler. NaN and infinities have no JSON form
// and are written as null.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.ok || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f.v)
}

// #endregion float
