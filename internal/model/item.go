// Package model defines data structures used throughout the application.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidItemID is returned when an ItemID cannot be decoded from JSON.
var ErrInvalidItemID = errors.New("item ID must be a JSON number or string")

// ItemID identifies an Item. It is assigned by the remote store.
type ItemID string

// String returns the identifier as a plain string.
func (id ItemID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is unset.
func (id ItemID) IsZero() bool {
	return id == ""
}

// MarshalJSON encodes integer identifiers as JSON numbers and anything else as a string.
func (id ItemID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts both JSON numbers and JSON strings.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode item ID: %w", err)
		}
		*id = ItemID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return ErrInvalidItemID
	}
	*id = ItemID(n.String())
	return nil
}

// Item represents a persisted, categorized record.
type Item struct {
	ID          ItemID `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// ItemDraft is the payload sent when creating an Item. It never carries an ID.
type ItemDraft struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// ErrorResponse represents an error response structure.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
