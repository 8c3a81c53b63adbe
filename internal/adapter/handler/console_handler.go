package handler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/core/service"
)

const menu = `
=== INVENTORY ===
1) Add product
2) Remove product by ID
3) Update quantity/price
4) Search by name
5) List all
6) Summary
7) Save
0) Exit`

// Console drives the inventory from a line-oriented text menu. Prompts repeat
// until the input is valid; store errors are reported and the session goes on.
type Console struct {
	inventory *service.InventoryService
	in        io.Reader
	out       io.Writer
	log       *slog.Logger
	autosave  bool

	lines <-chan string
}

func NewConsole(inventory *service.InventoryService, in io.Reader, out io.Writer, log *slog.Logger) *Console {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Console{
		inventory: inventory,
		in:        in,
		out:       out,
		log:       log,
		autosave:  true,
	}
}

// WithAutosave controls whether every successful change is written to storage
// immediately.
func (c *Console) WithAutosave(enabled bool) *Console {
	c.autosave = enabled
	return c
}

// Run serves the menu until the user exits, input ends, or ctx is cancelled.
// Every way out performs a final save; its error is returned.
func (c *Console) Run(ctx context.Context) error {
	c.lines = readLines(c.in)

	for {
		c.println(menu)
		choice, err := c.readLine(ctx, "Select an option: ")
		if err != nil {
			c.println("")
			return c.exit(ctx)
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = c.add(ctx)
		case "2":
			err = c.remove(ctx)
		case "3":
			err = c.update(ctx)
		case "4":
			err = c.search(ctx)
		case "5":
			c.list()
		case "6":
			c.summary()
		case "7":
			c.save(ctx)
		case "0":
			return c.exit(ctx)
		default:
			c.println("Invalid option.")
		}

		if isInputClosed(err) {
			c.println("")
			return c.exit(ctx)
		}
	}
}

func (c *Console) add(ctx context.Context) error {
	id, err := c.readText(ctx, "Unique ID: ")
	if err != nil {
		return err
	}
	name, err := c.readText(ctx, "Name: ")
	if err != nil {
		return err
	}
	quantity, err := c.readInt(ctx, "Quantity (>=0): ")
	if err != nil {
		return err
	}
	price, err := c.readFloat(ctx, "Price (>=0): ")
	if err != nil {
		return err
	}

	p, err := domain.NewProduct(id, name, quantity, price)
	if err == nil {
		err = c.inventory.Add(p)
	}
	if err != nil {
		c.reportError(err)
		return nil
	}

	c.println("Product added.")
	c.autosaveChange(ctx)
	return nil
}

func (c *Console) remove(ctx context.Context) error {
	id, err := c.readText(ctx, "ID to remove: ")
	if err != nil {
		return err
	}

	if err := c.inventory.Remove(id); err != nil {
		c.reportError(err)
		return nil
	}

	c.println("Product removed.")
	c.autosaveChange(ctx)
	return nil
}

func (c *Console) update(ctx context.Context) error {
	id, err := c.readText(ctx, "ID to update: ")
	if err != nil {
		return err
	}
	p, ok := c.inventory.Get(id)
	if !ok {
		c.println("No product with that ID.")
		return nil
	}
	c.println("Current product:")
	c.show(p)

	c.println("1) Quantity  2) Price  3) Both")
	sub, err := c.readLine(ctx, "Option: ")
	if err != nil {
		return err
	}

	var (
		quantity *int
		price    *float64
	)
	switch strings.TrimSpace(sub) {
	case "1", "3":
		q, err := c.readInt(ctx, "New quantity: ")
		if err != nil {
			return err
		}
		quantity = &q
	case "2":
	default:
		c.println("Invalid option.")
		return nil
	}
	if s := strings.TrimSpace(sub); s == "2" || s == "3" {
		pr, err := c.readFloat(ctx, "New price: ")
		if err != nil {
			return err
		}
		price = &pr
	}

	if err := c.inventory.Update(id, quantity, price); err != nil {
		c.reportError(err)
		return nil
	}

	c.println("Product updated.")
	c.autosaveChange(ctx)
	return nil
}

func (c *Console) search(ctx context.Context) error {
	query, err := c.readText(ctx, "Name (or part of it): ")
	if err != nil {
		return err
	}

	results := c.inventory.SearchByName(query)
	if len(results) == 0 {
		c.println("No products found.")
		return nil
	}
	c.printf("Matches: %d\n", len(results))
	for _, p := range results {
		c.show(p)
	}
	return nil
}

func (c *Console) list() {
	products := c.inventory.ListAll()
	if len(products) == 0 {
		c.println("Inventory is empty.")
		return
	}
	for _, p := range products {
		c.show(p)
	}
}

func (c *Console) summary() {
	s := c.inventory.Summary()
	c.println("\n--- SUMMARY ---")
	c.printf("Distinct products: %d\n", s.Distinct)
	c.printf("Total units: %d\n", s.Units)
	c.printf("Total value: $%.2f\n", s.TotalValue)
}

func (c *Console) save(ctx context.Context) bool {
	if err := c.inventory.Save(ctx); err != nil {
		c.log.Error("save failed", "error", err)
		c.printf("Error: could not save inventory: %s\n", describeError(err))
		return false
	}
	c.println("Inventory saved.")
	return true
}

// autosaveChange persists a change that already succeeded in memory. A failed
// write is reported on its own and does not undo the change.
func (c *Console) autosaveChange(ctx context.Context) {
	if !c.autosave {
		return
	}
	if err := c.inventory.Save(ctx); err != nil {
		c.log.Error("autosave failed", "error", err)
		c.printf("Change kept in memory, but saving failed: %s\n", describeError(err))
	}
}

func (c *Console) exit(ctx context.Context) error {
	// The session context may already be cancelled; the final save still runs.
	saveCtx := context.WithoutCancel(ctx)
	if err := c.inventory.Save(saveCtx); err != nil {
		c.log.Error("final save failed", "error", err)
		c.printf("Final save failed: %s\n", describeError(err))
		return err
	}
	c.println("Final save done. Bye.")
	return nil
}

func (c *Console) reportError(err error) {
	c.log.Debug("operation rejected", "error", err)
	c.printf("Error: %s\n", describeError(err))
}

func (c *Console) show(p domain.Product) {
	c.printf("ID: %s | Name: %s | Quantity: %d | Price: $%.2f\n", p.ID, p.Name, p.Quantity, p.Price)
}

func (c *Console) readLine(ctx context.Context, prompt string) (string, error) {
	c.printf("%s", prompt)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

func (c *Console) readText(ctx context.Context, prompt string) (string, error) {
	for {
		line, err := c.readLine(ctx, prompt)
		if err != nil {
			return "", err
		}
		if text := strings.TrimSpace(line); text != "" {
			return text, nil
		}
		c.println("Error: value must not be empty.")
	}
}

func (c *Console) readInt(ctx context.Context, prompt string) (int, error) {
	for {
		line, err := c.readLine(ctx, prompt)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			c.println("Error: enter a valid integer.")
			continue
		}
		if v < 0 {
			c.println("Error: must be >= 0.")
			continue
		}
		return v, nil
	}
}

func (c *Console) readFloat(ctx context.Context, prompt string) (float64, error) {
	for {
		line, err := c.readLine(ctx, prompt)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			c.println("Error: enter a valid number (e.g. 10.50).")
			continue
		}
		if v < 0 {
			c.println("Error: must be >= 0.")
			continue
		}
		return v, nil
	}
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// readLines feeds input lines to a channel so prompts can also wait on the
// session context. The channel closes when input ends.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

func isInputClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateKey):
		return "a product with that ID already exists"
	case errors.Is(err, domain.ErrNotFound):
		return "no product with that ID"
	case errors.Is(err, domain.ErrValidation):
		return err.Error()
	case errors.Is(err, fs.ErrPermission):
		return "permission denied writing the inventory file"
	case errors.Is(err, domain.ErrFormat):
		return "the inventory data is malformed: " + err.Error()
	case errors.Is(err, domain.ErrStorage):
		return "storage error: " + err.Error()
	default:
		return err.Error()
	}
}
