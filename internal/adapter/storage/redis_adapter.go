package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/port"
)

const productsKeySuffix = "products"

// RedisAdapter keeps the inventory in a single hash: product id -> JSON plain
// data. Save replaces the hash inside MULTI/EXEC.
type RedisAdapter struct {
	client *redis.Client
	key    string
}

func NewRedisAdapter(client *redis.Client, prefix string) *RedisAdapter {
	return &RedisAdapter{client: client, key: prefix + productsKeySuffix}
}

func (r *RedisAdapter) Key() string { return r.key }

func (r *RedisAdapter) Load(ctx context.Context) ([]domain.Product, port.LoadReport, error) {
	var report port.LoadReport

	entries, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, report, fmt.Errorf("%w: hgetall %s: %w", domain.ErrStorage, r.key, err)
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	products := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		p, err := decodeRedisEntry(entries[id])
		if err != nil || p.ID != id {
			report.Corrupted++
			continue
		}
		products = append(products, p)
	}

	report.Loaded = len(products)
	return products, report, nil
}

func (r *RedisAdapter) Save(ctx context.Context, products []domain.Product) error {
	fields := make(map[string]any, len(products))
	for _, p := range products {
		data, err := json.Marshal(p.ToPlainData())
		if err != nil {
			return fmt.Errorf("%w: encode product %q: %v", domain.ErrFormat, p.ID, err)
		}
		fields[p.ID] = string(data)
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		if len(fields) > 0 {
			pipe.HSet(ctx, r.key, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: replace %s: %w", domain.ErrStorage, r.key, err)
	}
	return nil
}

func decodeRedisEntry(raw string) (domain.Product, error) {
	var data map[string]any
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return domain.Product{}, fmt.Errorf("%w: %v", domain.ErrFormat, err)
	}
	return domain.ProductFromPlainData(data)
}
