// Package controller wires user events to validation, the remote store and the
// local collection, and exposes the state the rendering layer displays.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/itemdesk/internal/collection"
	"github.com/vyrodovalexey/itemdesk/internal/model"
	"github.com/vyrodovalexey/itemdesk/internal/validate"
	"github.com/vyrodovalexey/itemdesk/internal/view"
)

// Controller errors.
var (
	ErrInvalidForm       = errors.New("form has validation errors")
	ErrInvalidIdentifier = errors.New("delete aborted: invalid item ID")
	ErrItemNotFound      = errors.New("item not found")
)

// Phase is the interaction state of the form.
type Phase string

// Phases.
const (
	PhaseIdle        Phase = "idle"
	PhaseEditingForm Phase = "editing-form"
	PhaseSubmitting  Phase = "submitting"
)

// RemoteStore is the subset of the remote API the controller needs.
type RemoteStore interface {
	FetchAll(ctx context.Context) ([]model.Item, error)
	Create(ctx context.Context, draft model.FormState) (*model.Item, error)
	Delete(ctx context.Context, id model.ItemID) error
}

// state is the transient UI state owned by the controller.
type state struct {
	form   model.FormState
	filter model.ViewFilter
	errors model.ValidationErrors
	phase  Phase
}

// Controller orchestrates user events. It is safe for concurrent use; the
// state lock is never held while a remote call is in flight, so overlapping
// operations race and the last completed fetch wins.
type Controller struct {
	remote    RemoteStore
	items     *collection.Collection
	projector *view.Projector
	logger    *zap.Logger

	mu    sync.Mutex
	state state
}

// New creates a Controller with an empty collection and default state.
func New(remote RemoteStore, projector *view.Projector, logger *zap.Logger) *Controller {
	return &Controller{
		remote:    remote,
		items:     collection.New(),
		projector: projector,
		logger:    logger,
		state: state{
			filter: model.DefaultViewFilter(),
			errors: make(model.ValidationErrors),
			phase:  PhaseIdle,
		},
	}
}

// Init loads the collection for the first time. On failure it stays empty.
func (c *Controller) Init(ctx context.Context) {
	c.Refresh(ctx)
}

// Refresh re-synchronizes the collection from the remote store.
// It reports whether the collection was replaced.
func (c *Controller) Refresh(ctx context.Context) bool {
	items, err := c.remote.FetchAll(ctx)
	if err != nil {
		c.logger.Error("failed to fetch items", zap.Error(err))
		return false
	}

	c.items.ReplaceAll(items)
	c.logger.Debug("collection refreshed", zap.Int("count", len(items)))
	return true
}

// SetField updates one form field without validating it.
func (c *Controller) SetField(field model.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.state.form.Set(field, value); err != nil {
		return fmt.Errorf("set field: %w", err)
	}
	c.state.phase = PhaseEditingForm
	return nil
}

// Submit validates the form and creates an item from it. Validation failures
// are stored and returned as ErrInvalidForm. Remote failures are logged and
// leave the form untouched.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	draft := c.state.form
	errs := validate.Form(draft)
	if errs.HasErrors() {
		c.setFormErrorsLocked(errs)
		c.state.phase = PhaseEditingForm
		c.mu.Unlock()
		return ErrInvalidForm
	}
	c.state.phase = PhaseSubmitting
	c.mu.Unlock()

	created, err := c.remote.Create(ctx, draft)
	if err != nil {
		c.logger.Error("failed to create item", zap.Error(err))
		c.mu.Lock()
		c.state.phase = PhaseEditingForm
		c.mu.Unlock()
		return nil
	}
	c.logger.Info("item created", zap.String("id", created.ID.String()))

	c.Refresh(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.form = model.FormState{}
	c.state.errors = make(model.ValidationErrors)
	c.state.phase = PhaseIdle
	return nil
}

// setFormErrorsLocked replaces the form field errors, keeping errors of other inputs.
func (c *Controller) setFormErrorsLocked(errs model.ValidationErrors) {
	for _, field := range model.FormFields {
		delete(c.state.errors, field)
	}
	for field, msg := range errs {
		c.state.errors[field] = msg
	}
}

// Delete removes an item by ID. Invalid identifiers are stored under the id
// error key and never reach the remote store.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := validate.Identifier(id); err != nil {
		c.mu.Lock()
		c.state.errors[model.FieldID] = err.Error()
		c.mu.Unlock()
		return ErrInvalidIdentifier
	}

	c.mu.Lock()
	delete(c.state.errors, model.FieldID)
	c.mu.Unlock()

	itemID := model.ItemID(strings.TrimSpace(id))
	if err := c.remote.Delete(ctx, itemID); err != nil {
		c.logger.Error("failed to delete item", zap.String("id", itemID.String()), zap.Error(err))
		return nil
	}
	c.logger.Info("item deleted", zap.String("id", itemID.String()))

	c.Refresh(ctx)
	return nil
}

// SetSearch applies a search term immediately. Its validation result is
// stored under the search error key for display only.
func (c *Controller) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.filter.SearchTerm = term

	// An empty search box shows everything and is not an error.
	if strings.TrimSpace(term) == "" {
		delete(c.state.errors, model.FieldSearch)
		return
	}

	if err := validate.SearchTerm(term); err != nil {
		c.state.errors[model.FieldSearch] = err.Error()
		return
	}
	delete(c.state.errors, model.FieldSearch)
}

// SetCategory applies a category filter immediately. An empty category shows all items.
func (c *Controller) SetCategory(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.filter.FilterCategory = category
}

// ToggleSort flips the sort order of the view.
func (c *Controller) ToggleSort() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.filter.SortOrder = c.state.filter.SortOrder.Toggle()
}

// Edit loads an item into the form. Submitting it afterwards creates a new item.
func (c *Controller) Edit(item model.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.form = model.NewFormState(item)
	c.state.phase = PhaseEditingForm
}

// EditByID loads the item with the given ID from the collection into the form.
func (c *Controller) EditByID(id model.ItemID) error {
	item, ok := c.items.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	c.Edit(item)
	return nil
}

// View returns the filtered and sorted items to display.
func (c *Controller) View() []model.Item {
	return c.projector.Project(c.items.Items(), c.Filter())
}

// Errors returns a copy of the current validation errors.
func (c *Controller) Errors() model.ValidationErrors {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state.errors.Clone()
}

// Form returns the current form contents.
func (c *Controller) Form() model.FormState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state.form
}

// Filter returns the current view filter.
func (c *Controller) Filter() model.ViewFilter {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state.filter
}

// Phase returns the current interaction phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state.phase
}
