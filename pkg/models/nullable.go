package models

import "encoding/json"

// Nullable is a patch field that distinguishes "absent" from an explicit JSON null.
// Set reports whether the key was present; Valid reports whether it carried a value.
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// NewNullable returns a present, non-null field
func NewNullable[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Valid: true, Value: v}
}

// Null returns a present field that clears the stored value
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// IsZero lets `omitzero` drop fields that were never set.
func (n Nullable[T]) IsZero() bool {
	return !n.Set
}

// Ptr returns nil for null, otherwise a pointer to a copy of the value.
func (n Nullable[T]) Ptr() *T {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		var zero T
		n.Valid = false
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
