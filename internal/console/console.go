// Package console is a line-oriented rendering layer for the item controller.
// It reads one command per line, forwards it to the controller as a user
// event and prints the resulting view and validation errors.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/vyrodovalexey/itemdesk/internal/controller"
	"github.com/vyrodovalexey/itemdesk/internal/model"
)

// Prompt is printed before every command.
const Prompt = "> "

// Controller is the set of user events and read accessors the console drives.
type Controller interface {
	Refresh(ctx context.Context) bool
	SetField(field model.Field, value string) error
	Submit(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	SetSearch(term string)
	SetCategory(category string)
	ToggleSort()
	EditByID(id model.ItemID) error
	View() []model.Item
	Errors() model.ValidationErrors
	Form() model.FormState
	Filter() model.ViewFilter
	Phase() controller.Phase
}

const helpText = `commands:
  list                   show the filtered and sorted items
  form                   show the form being edited
  set <field> <value>    set name, category or description
  add                    create an item from the form
  edit <id>              load an item into the form
  delete <id>            delete an item
  search [term]          filter by name (empty clears)
  category [name]        filter by category (empty clears)
  sort                   toggle ascending/descending
  refresh                reload items from the API
  help                   show this help
  quit                   exit`

// Console renders controller state to a writer.
type Console struct {
	ctrl Controller
	out  io.Writer
}

// New creates a Console writing to out.
func New(ctrl Controller, out io.Writer) *Console {
	return &Console{ctrl: ctrl, out: out}
}

// Run reads commands from in until EOF, quit or context cancellation.
func Run(ctx context.Context, in io.Reader, out io.Writer, ctrl Controller) error {
	return New(ctrl, out).Run(ctx, in)
}

// Run reads commands from in until EOF, quit or context cancellation.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	c.renderItems()

	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.printf("%s", Prompt)
		if !scanner.Scan() {
			c.printf("\n")
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			return nil
		}

		if quit := c.Execute(ctx, scanner.Text()); quit {
			return nil
		}
	}
}

// Execute runs a single command line. It reports whether the console should exit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")

	switch strings.ToLower(cmd) {
	case "":
	case "list", "ls":
		c.renderItems()
	case "form":
		c.renderForm()
	case "set":
		c.set(rest)
	case "add", "submit":
		c.submit(ctx)
	case "edit":
		c.edit(strings.TrimSpace(rest))
	case "delete", "rm":
		c.delete(ctx, rest)
	case "search":
		c.ctrl.SetSearch(rest)
		c.renderErrors(model.FieldSearch)
		c.renderItems()
	case "category":
		c.ctrl.SetCategory(strings.TrimSpace(rest))
		c.renderItems()
	case "sort":
		c.ctrl.ToggleSort()
		c.renderItems()
	case "refresh":
		if !c.ctrl.Refresh(ctx) {
			c.printf("could not reach the API, showing cached items\n")
		}
		c.renderItems()
	case "help", "?":
		c.printf("%s\n", helpText)
	case "quit", "exit":
		return true
	default:
		c.printf("unknown command %q, type help\n", cmd)
	}

	return false
}

func (c *Console) set(args string) {
	name, value, _ := strings.Cut(strings.TrimSpace(args), " ")

	field, err := model.ParseFormField(name)
	if err != nil {
		c.printf("%v\n", err)
		return
	}

	if err := c.ctrl.SetField(field, value); err != nil {
		c.printf("%v\n", err)
		return
	}
	c.renderForm()
}

func (c *Console) submit(ctx context.Context) {
	if err := c.ctrl.Submit(ctx); err != nil {
		if errors.Is(err, controller.ErrInvalidForm) {
			c.renderErrors(model.FormFields...)
			return
		}
		c.printf("%v\n", err)
		return
	}

	if c.ctrl.Phase() != controller.PhaseIdle {
		c.printf("item was not saved, the form is kept\n")
		return
	}
	c.renderItems()
}

func (c *Console) edit(id string) {
	if err := c.ctrl.EditByID(model.ItemID(id)); err != nil {
		c.printf("%v\n", err)
		return
	}
	c.renderForm()
}

func (c *Console) delete(ctx context.Context, id string) {
	if err := c.ctrl.Delete(ctx, id); err != nil {
		if errors.Is(err, controller.ErrInvalidIdentifier) {
			c.renderErrors(model.FieldID)
			return
		}
		c.printf("%v\n", err)
		return
	}
	c.renderItems()
}

// renderItems prints the projected view as a table.
func (c *Console) renderItems() {
	items := c.ctrl.View()
	filter := c.ctrl.Filter()

	c.printf("%d item(s), sort %s", len(items), filter.SortOrder)
	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		c.printf(", search %q", term)
	}
	if category := strings.TrimSpace(filter.FilterCategory); category != "" {
		c.printf(", category %q", category)
	}
	c.printf("\n")

	if len(items) == 0 {
		return
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tDESCRIPTION")
	for _, item := range items {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.ID, item.Name, item.Category, item.Description)
	}
	_ = tw.Flush()
}

// renderForm prints the form with any field errors next to their values.
func (c *Console) renderForm() {
	form := c.ctrl.Form()
	errs := c.ctrl.Errors()

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	if !form.ID.IsZero() {
		_, _ = fmt.Fprintf(tw, "editing\t#%s\t\n", form.ID)
	}
	for _, field := range model.FormFields {
		value, _ := form.Get(field)
		_, _ = fmt.Fprintf(tw, "%s\t%q\t%s\n", field, value, errs[field])
	}
	_ = tw.Flush()
}

// renderErrors prints the current errors of the given fields, sorted by field.
func (c *Console) renderErrors(fields ...model.Field) {
	errs := c.ctrl.Errors()

	keys := make([]model.Field, 0, len(fields))
	for _, field := range fields {
		if _, ok := errs[field]; ok {
			keys = append(keys, field)
		}
	}
	slices.Sort(keys)

	for _, field := range keys {
		c.printf("error: %s: %s\n", field, errs[field])
	}
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}
