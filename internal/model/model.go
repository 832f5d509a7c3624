package model

import (
	"context"
	"encoding/json"
	"fmt"
)

// Reserved record keys. They hold model metadata and can neither be produced
// by a factory nor changed by With.
const (
	KeyID         = "id"
	KeyModelName  = "modelName"
	KeyCreateTime = "createTime"
)

// Factory builds the domain fields of a model (or the payload of an event)
// from caller supplied arguments. It may block on I/O.
type Factory func(ctx context.Context, args Fields) (Fields, error)

// Validator reports whether m is valid. It may block on I/O.
type Validator func(ctx context.Context, m *Model) (bool, error)

// AlwaysValid is the Validator used when none is registered.
func AlwaysValid(context.Context, *Model) (bool, error) { return true, nil }

// Model is an immutable domain entity.
type Model struct {
	name       string
	id         string
	createTime string
	fields     Fields
	isValid    Validator
}

func (m *Model) Name() string       { return m.name }
func (m *Model) ID() string         { return m.id }
func (m *Model) CreateTime() string { return m.createTime }

// Get returns the value stored under key. Reserved keys resolve to metadata.
func (m *Model) Get(key string) (any, bool) {
	switch key {
	case KeyID:
		return m.id, m.id != ""
	case KeyModelName:
		return m.name, m.name != ""
	case KeyCreateTime:
		return m.createTime, m.createTime != ""
	}
	v, ok := m.fields[key]
	return v, ok
}

// String returns the value stored under key when it is a string.
func (m *Model) String(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Fields returns a copy of the domain fields (metadata excluded).
func (m *Model) Fields() Fields { return m.fields.Clone() }

// Map returns a flat record of the domain fields plus non-empty metadata. It is
// the form handed to repositories and serialized to clients.
func (m *Model) Map() Fields {
	out := m.fields.Clone()
	if m.id != "" {
		out[KeyID] = m.id
	}
	if m.name != "" {
		out[KeyModelName] = m.name
	}
	if m.createTime != "" {
		out[KeyCreateTime] = m.createTime
	}
	return out
}

// IsValid runs the model's validator.
func (m *Model) IsValid(ctx context.Context) (bool, error) {
	if m.isValid == nil {
		return true, nil
	}
	return m.isValid(ctx, m)
}

// With returns a new model whose fields are m's fields overridden by changes.
// Metadata and the validator are carried over; reserved keys in changes are
// ignored.
func (m *Model) With(changes Fields) *Model {
	out := *m
	out.fields = Merge(m.fields, withoutReserved(changes))
	return &out
}

func (m *Model) MarshalJSON() ([]byte, error) { return json.Marshal(m.Map()) }

// Restore rebuilds a model from a flat record as produced by Map. Metadata is
// taken from the reserved keys; a nil isValid means always valid.
func Restore(record Fields, isValid Validator) *Model {
	m := &Model{fields: withoutReserved(record), isValid: isValid}
	m.id = identity(record[KeyID])
	m.name, _ = record.String(KeyModelName)
	m.createTime, _ = record.String(KeyCreateTime)
	return m
}

// identity renders a stored identifier as a string. Stores that hand back
// numeric keys (JSON numbers, integer columns) still yield a usable id.
func identity(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

func withoutReserved(f Fields) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		switch k {
		case KeyID, KeyModelName, KeyCreateTime:
			continue
		}
		out[k] = v
	}
	return out
}
