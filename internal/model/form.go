package model

import (
	"errors"
	"fmt"
	"maps"
)

// ErrUnknownField is returned when a form update names a field outside the form.
var ErrUnknownField = errors.New("unknown form field")

// Field names a form field or another input that can carry a validation error.
type Field string

// Fields known to the application.
const (
	FieldName        Field = "name"
	FieldCategory    Field = "category"
	FieldDescription Field = "description"
	FieldSearch      Field = "search"
	FieldID          Field = "id"
)

// FormFields lists the editable fields of a FormState, in display order.
var FormFields = []Field{FieldName, FieldCategory, FieldDescription}

// ParseFormField maps a raw field name to one of FormFields.
func ParseFormField(name string) (Field, error) {
	for _, f := range FormFields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// FormState is a draft Item that has not been submitted yet.
// ID is only filled when the form was pre-loaded from an existing item.
type FormState struct {
	ID          ItemID
	Name        string
	Category    string
	Description string
}

// NewFormState returns a form pre-filled with the fields of item.
func NewFormState(item Item) FormState {
	return FormState{
		ID:          item.ID,
		Name:        item.Name,
		Category:    item.Category,
		Description: item.Description,
	}
}

// Set updates a single field. Only FormFields are accepted.
func (f *FormState) Set(field Field, value string) error {
	switch field {
	case FieldName:
		f.Name = value
	case FieldCategory:
		f.Category = value
	case FieldDescription:
		f.Description = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Get returns the value of a single field.
func (f FormState) Get(field Field) (string, error) {
	switch field {
	case FieldName:
		return f.Name, nil
	case FieldCategory:
		return f.Category, nil
	case FieldDescription:
		return f.Description, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

// Draft returns the create payload for the form. The ID is dropped.
func (f FormState) Draft() ItemDraft {
	return ItemDraft{
		Name:        f.Name,
		Category:    f.Category,
		Description: f.Description,
	}
}

// ValidationErrors maps a field to a human-readable message.
// A missing key means the field is valid.
type ValidationErrors map[Field]string

// HasErrors reports whether at least one field failed validation.
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

// Clone returns an independent copy.
func (v ValidationErrors) Clone() ValidationErrors {
	out := make(ValidationErrors, len(v))
	maps.Copy(out, v)
	return out
}
