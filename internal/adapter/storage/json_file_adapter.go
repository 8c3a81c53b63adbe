package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/port"
)

const documentKey = "productos"

// JSONFileAdapter stores the whole inventory as {"productos": [...]}.
// Unlike the text format, a single malformed entry fails the whole load.
type JSONFileAdapter struct {
	path string

	beforeRename func(tmp string) error
}

func NewJSONFileAdapter(path string) *JSONFileAdapter {
	return &JSONFileAdapter{path: path}
}

func (a *JSONFileAdapter) Path() string { return a.path }

func (a *JSONFileAdapter) Load(ctx context.Context) ([]domain.Product, port.LoadReport, error) {
	data, err := os.ReadFile(a.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Product{}, port.LoadReport{}, nil
	}
	if err != nil {
		return nil, port.LoadReport{}, storageError("read", a.path, err)
	}

	products, err := decodeDocument(data)
	if err != nil {
		return nil, port.LoadReport{}, fmt.Errorf("%s: %w", a.path, err)
	}
	return products, port.LoadReport{Loaded: len(products)}, nil
}

func (a *JSONFileAdapter) Save(ctx context.Context, products []domain.Product) error {
	data, err := encodeDocument(products)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeFileAtomic(a.path, data, a.beforeRename)
}

func encodeDocument(products []domain.Product) ([]byte, error) {
	entries := make([]map[string]any, 0, len(products))
	for _, p := range products {
		entries = append(entries, p.ToPlainData())
	}

	data, err := json.MarshalIndent(map[string]any{documentKey: entries}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encode inventory: %v", domain.ErrFormat, err)
	}
	return append(data, '\n'), nil
}

// decodeDocument parses the whole-file JSON format. A top-level null or an
// object without the "productos" key is an empty inventory, and other keys are
// ignored, so the next save replaces such a file with an empty list. Anything
// malformed is an error.
func decodeDocument(data []byte) ([]domain.Product, error) {
	var doc map[string]json.RawMessage

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFormat, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing content after document", domain.ErrFormat)
	}

	raw, ok := doc[documentKey]
	if !ok {
		return []domain.Product{}, nil
	}

	var entries []map[string]any
	entryDec := json.NewDecoder(bytes.NewReader(raw))
	entryDec.UseNumber()
	if err := entryDec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", domain.ErrFormat, documentKey, err)
	}

	products := make([]domain.Product, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, entry := range entries {
		p, err := domain.ProductFromPlainData(entry)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: entry %d: duplicate id %q", domain.ErrFormat, i, p.ID)
		}
		seen[p.ID] = struct{}{}
		products = append(products, p)
	}
	return products, nil
}
