// Package collection holds the local copy of the items fetched from the remote store.
package collection

import (
	"slices"
	"sync"

	"github.com/vyrodovalexey/itemdesk/internal/model"
)

// Collection is the authoritative local item set. It is only ever replaced
// wholesale after a successful fetch; there are no partial updates.
type Collection struct {
	mu    sync.RWMutex
	items []model.Item
}

// New creates an empty Collection.
func New() *Collection {
	return &Collection{
		items: make([]model.Item, 0),
	}
}

// ReplaceAll swaps the whole item set. The slice is copied.
func (c *Collection) ReplaceAll(items []model.Item) {
	replacement := make([]model.Item, len(items))
	copy(replacement, items)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = replacement
}

// Items returns a copy of the current item set in fetch order.
func (c *Collection) Items() []model.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.items)
}

// Lookup returns the item with the given ID.
func (c *Collection) Lookup(id model.ItemID) (model.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, item := range c.items {
		if item.ID == id {
			return item, true
		}
	}
	return model.Item{}, false
}

// Len returns the number of items held.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}
