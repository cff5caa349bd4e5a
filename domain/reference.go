package domain

import (
	"bytes"
	"encoding/json"
)

// Reference points at another entity that may or may not have been loaded
// alongside the referencing record. It is either Unresolved (only the id is
// known) or Resolved (the id plus a snapshot of the target).
type Reference[T any] struct {
	id     string
	target *T
}

// Unresolved builds a reference that carries only the target id.
func Unresolved[T any](id string) Reference[T] {
	return Reference[T]{id: id}
}

// Resolved builds a reference with the target snapshot attached.
func Resolved[T any](id string, target T) Reference[T] {
	return Reference[T]{id: id, target: &target}
}

// ID returns the referenced id in both variants.
func (r Reference[T]) ID() string {
	return r.id
}

// Resolved returns the loaded target, if any.
func (r Reference[T]) Resolved() (T, bool) {
	if r.target == nil {
		var zero T
		return zero, false
	}
	return *r.target, true
}

// IsZero reports an absent reference (no id, nothing loaded).
func (r Reference[T]) IsZero() bool {
	return r.id == "" && r.target == nil
}

// MarshalJSON writes the target object when resolved and the bare id otherwise.
func (r Reference[T]) MarshalJSON() ([]byte, error) {
	if r.target != nil {
		return json.Marshal(r.target)
	}
	if r.id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.id)
}

// UnmarshalJSON accepts either a string id or an embedded object with an "id" field.
func (r *Reference[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Reference[T]{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Unresolved[T](id)
		return nil
	}

	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	var target T
	if err := json.Unmarshal(data, &target); err != nil {
		return err
	}
	*r = Resolved(head.ID, target)
	return nil
}
