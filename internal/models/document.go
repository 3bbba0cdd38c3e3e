package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Reserved document keys.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
)

// Document is one schemaless record of a collection. Fields holds everything
// except the identifier, which is owned by the store.
type Document struct {
	ID     string
	Fields map[string]interface{}
	// Key is the store-native identifier when its type differs from ID, such
	// as an ObjectID imported into MongoDB. It is never serialized.
	Key interface{}
}

// NewDocument builds a document copying the provided fields.
func NewDocument(id string, fields map[string]interface{}) Document {
	return Document{ID: id, Fields: CloneFields(fields)}
}

// Value returns the raw value of a field, resolving the identifier too.
func (d Document) Value(field string) (interface{}, bool) {
	if field == FieldID {
		return d.ID, true
	}
	v, ok := d.Fields[field]
	return v, ok
}

// String returns a scalar field rendered as a string; absent fields yield "".
func (d Document) String(field string) string {
	v, ok := d.Value(field)
	if !ok || v == nil {
		return ""
	}
	switch typed := v.(type) {
	case string:
		return typed
	case time.Time:
		return typed.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(typed)
	}
}

// MarshalJSON flattens the document into `{"id": ..., ...fields}`.
func (d Document) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(d.Fields)+1)
	for k, v := range d.Fields {
		flat[k] = v
	}
	flat[FieldID] = d.ID
	return json.Marshal(flat)
}

// UnmarshalJSON accepts the flat form produced by MarshalJSON.
func (d *Document) UnmarshalJSON(raw []byte) error {
	var flat map[string]interface{}
	if err := json.Unmarshal(raw, &flat); err != nil {
		return err
	}
	if id, ok := flat[FieldID].(string); ok {
		d.ID = id
	}
	delete(flat, FieldID)
	d.Fields = flat
	return nil
}

// CloneFields returns a shallow copy without the reserved id key.
func CloneFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if k == FieldID {
			continue
		}
		out[k] = v
	}
	return out
}
