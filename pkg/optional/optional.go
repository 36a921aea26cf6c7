// Package optional provides a JSON field container that distinguishes a key
// absent from the payload from a key present with a null value. Partial-update
// payloads need this distinction: absent fields are left untouched, present
// fields (null included) are applied.
package optional

import "encoding/json"

// Field wraps a value decoded from JSON. Set is true only when the key was
// present in the payload; Valid is true when the value was non-null.
type Field[T any] struct {
	Value T
	Set   bool
	Valid bool
}

// UnmarshalJSON is only invoked by encoding/json when the key is present, so
// Set records presence exactly.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err != nil {
		return err
	}
	f.Valid = true
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Of returns a present, non-null field. Mostly useful in tests.
func Of[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true, Valid: true}
}

// Null returns a present field carrying JSON null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

// Ptr returns the value as a pointer, or nil when the field was null.
func (f Field[T]) Ptr() *T {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}
