package types

import (
	"bytes"
	"encoding/json"
)

// Nullable is a field of an update payload that can be absent, null, or set.
//
//	{}            → Set=false            (leave the column alone)
//	{"age": null} → Set=true, Valid=false (write NULL)
//	{"age": 21}   → Set=true, Valid=true  (write 21)
//
// encoding/json only calls UnmarshalJSON for keys present in the body, which
// is what distinguishes the first two cases.
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Of returns a Nullable holding v.
func Of[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Valid: true, Value: v}
}

// Null returns a Nullable that clears the column.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Valid = false
		var zero T
		n.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Ptr returns nil for an unset or null value and a pointer to a copy of the
// value otherwise. database/sql writes a nil pointer as NULL.
func (n Nullable[T]) Ptr() *T {
	if !n.Set || !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}
