package storage

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/port"
)

const (
	fieldSeparator = "|"
	lineFields     = 4
	maxLineSize    = 1 << 20
)

// TextFileAdapter stores one product per line as id|name|quantity|price.
// Fields are not escaped, so a product whose id or name contains '|' or a
// line break cannot be saved in this format.
type TextFileAdapter struct {
	path string

	beforeRename func(tmp string) error
}

func NewTextFileAdapter(path string) *TextFileAdapter {
	return &TextFileAdapter{path: path}
}

func (a *TextFileAdapter) Path() string { return a.path }

// Load reads every well-formed line. Malformed or over-long lines are skipped
// and counted as corrupted, repeated ids keep their first occurrence. A
// missing file is created empty.
func (a *TextFileAdapter) Load(ctx context.Context) ([]domain.Product, port.LoadReport, error) {
	var report port.LoadReport

	f, err := os.Open(a.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := a.createEmpty(); err != nil {
			return nil, report, err
		}
		return []domain.Product{}, report, nil
	}
	if err != nil {
		return nil, report, storageError("open", a.path, err)
	}
	defer f.Close()

	products := make([]domain.Product, 0)
	seen := make(map[string]struct{})

	r := bufio.NewReaderSize(f, 64*1024)
	for {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		raw, tooLong, readErr := readLine(r)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, report, storageError("read", a.path, readErr)
		}

		if tooLong {
			report.Corrupted++
		} else if line := strings.TrimSpace(string(raw)); line != "" {
			p, err := parseLine(line)
			if err != nil {
				report.Corrupted++
			} else if _, dup := seen[p.ID]; dup {
				report.Duplicates++
			} else {
				seen[p.ID] = struct{}{}
				products = append(products, p)
			}
		}

		if readErr != nil {
			break
		}
	}

	report.Loaded = len(products)
	return products, report, nil
}

// Save atomically replaces the file with one line per product.
func (a *TextFileAdapter) Save(ctx context.Context, products []domain.Product) error {
	var b strings.Builder
	for _, p := range products {
		line, err := formatLine(p)
		if err != nil {
			return err
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeFileAtomic(a.path, []byte(b.String()), a.beforeRename)
}

func (a *TextFileAdapter) createEmpty() error {
	f, err := os.OpenFile(a.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return storageError("create", a.path, err)
	}
	if err := f.Close(); err != nil {
		return storageError("create", a.path, err)
	}
	return nil
}

func formatLine(p domain.Product) (string, error) {
	if strings.ContainsAny(p.ID, "|\r\n") || strings.ContainsAny(p.Name, "|\r\n") {
		return "", fmt.Errorf("%w: product %q: '|' and line breaks cannot be stored in a text inventory", domain.ErrFormat, p.ID)
	}
	line := strings.Join([]string{
		p.ID,
		p.Name,
		strconv.Itoa(p.Quantity),
		strconv.FormatFloat(p.Price, 'f', -1, 64),
	}, fieldSeparator)
	if len(line) > maxLineSize {
		return "", fmt.Errorf("%w: product %q: line longer than %d bytes", domain.ErrFormat, truncateID(p.ID), maxLineSize)
	}
	return line, nil
}

func truncateID(id string) string {
	const maxShown = 64
	if len(id) > maxShown {
		return id[:maxShown] + "..."
	}
	return id
}

// readLine returns the next line without its terminator. A line longer than
// maxLineSize is consumed up to its newline and reported as tooLong with no
// content. err is io.EOF on the last line.
func readLine(r *bufio.Reader) ([]byte, bool, error) {
	var (
		line    []byte
		tooLong bool
	)
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			line = append(line, chunk...)
			// room for a trailing \r\n
			if len(line) > maxLineSize+2 {
				tooLong = true
				line = nil
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}

		line = bytes.TrimRight(line, "\r\n")
		if len(line) > maxLineSize {
			tooLong = true
			line = nil
		}
		return line, tooLong, err
	}
}

func parseLine(line string) (domain.Product, error) {
	parts := strings.Split(line, fieldSeparator)
	if len(parts) != lineFields {
		return domain.Product{}, fmt.Errorf("%w: expected %d fields, got %d", domain.ErrFormat, lineFields, len(parts))
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: quantity: %v", domain.ErrFormat, err)
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: price: %v", domain.ErrFormat, err)
	}

	return domain.NewProduct(parts[0], parts[1], quantity, price)
}
