package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Product is one inventory entry. The ID never changes once the product is
// created; renaming a key is a remove followed by an add.
type Product struct {
	ID       string
	Name     string
	Quantity int
	Price    float64
}

// Plain data keys, shared by every persisted representation.
const (
	KeyID       = "id"
	KeyName     = "nombre"
	KeyQuantity = "cantidad"
	KeyPrice    = "precio"
)

func NewProduct(id, name string, quantity int, price float64) (Product, error) {
	p := Product{
		ID:       strings.TrimSpace(id),
		Name:     strings.TrimSpace(name),
		Quantity: quantity,
		Price:    price,
	}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id must not be empty", ErrValidation)
	}
	if err := checkName(p.Name); err != nil {
		return err
	}
	if err := checkQuantity(p.Quantity); err != nil {
		return err
	}
	return checkPrice(p.Price)
}

func (p *Product) SetName(name string) error {
	name = strings.TrimSpace(name)
	if err := checkName(name); err != nil {
		return err
	}
	p.Name = name
	return nil
}

func (p *Product) SetQuantity(quantity int) error {
	if err := checkQuantity(quantity); err != nil {
		return err
	}
	p.Quantity = quantity
	return nil
}

func (p *Product) SetPrice(price float64) error {
	if err := checkPrice(price); err != nil {
		return err
	}
	p.Price = price
	return nil
}

// Value is quantity times unit price, unrounded.
func (p Product) Value() float64 {
	return float64(p.Quantity) * p.Price
}

func (p Product) ToPlainData() map[string]any {
	return map[string]any{
		KeyID:       p.ID,
		KeyName:     p.Name,
		KeyQuantity: p.Quantity,
		KeyPrice:    p.Price,
	}
}

// ProductFromPlainData rebuilds a product from its generic representation.
// Missing or mistyped keys fail with ErrFormat, out of range values with
// ErrValidation.
func ProductFromPlainData(data map[string]any) (Product, error) {
	id, err := stringField(data, KeyID)
	if err != nil {
		return Product{}, err
	}
	name, err := stringField(data, KeyName)
	if err != nil {
		return Product{}, err
	}
	quantity, err := intField(data, KeyQuantity)
	if err != nil {
		return Product{}, err
	}
	price, err := floatField(data, KeyPrice)
	if err != nil {
		return Product{}, err
	}
	return NewProduct(id, name, quantity, price)
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	return nil
}

func checkQuantity(quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative, got %d", ErrValidation, quantity)
	}
	return nil
}

func checkPrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("%w: price must be a finite number", ErrValidation)
	}
	if price < 0 {
		return fmt.Errorf("%w: price must not be negative, got %v", ErrValidation, price)
	}
	return nil
}

func stringField(data map[string]any, key string) (string, error) {
	raw, ok := data[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrFormat, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", ErrFormat, key, raw)
	}
	return s, nil
}

func intField(data map[string]any, key string) (int, error) {
	raw, ok := data[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrFormat, key)
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %q must be an integer, got %v", ErrFormat, key, v)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q must be an integer, got %s", ErrFormat, key, v)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %q must be an integer, got %T", ErrFormat, key, raw)
	}
}

func floatField(data map[string]any, key string) (float64, error) {
	raw, ok := data[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrFormat, key)
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q must be a number, got %s", ErrFormat, key, v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %q must be a number, got %T", ErrFormat, key, raw)
	}
}
