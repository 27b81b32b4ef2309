// Package store provides persistence for the development item backend.
package store

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/vyrodovalexey/itemdesk/internal/model"
)

// Store errors.
var (
	ErrNotFound  = errors.New("item not found")
	ErrInvalidID = errors.New("invalid item ID")
	ErrNilItem   = errors.New("item cannot be nil")
)

// Store defines the interface for item storage operations.
type Store interface {
	// List returns all items in creation order.
	List(ctx context.Context) ([]model.Item, error)

	// Get retrieves an item by its ID.
	Get(ctx context.Context, id model.ItemID) (*model.Item, error)

	// Create adds a new item to the store and returns it with a generated ID.
	Create(ctx context.Context, draft *model.ItemDraft) (*model.Item, error)

	// Delete removes an item from the store by its ID.
	Delete(ctx context.Context, id model.ItemID) error

	// Close releases resources held by the store.
	Close() error
}

// parseID converts an ItemID into the numeric key used by the stores.
func parseID(id model.ItemID) (int64, error) {
	s := strings.TrimSpace(id.String())
	if s == "" {
		return 0, ErrInvalidID
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidID
	}
	return n, nil
}

// formatID converts a numeric key into an ItemID.
func formatID(n int64) model.ItemID {
	return model.ItemID(strconv.FormatInt(n, 10))
}
