package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/shopassist/internal/db"
	"github.com/kailas-cloud/shopassist/internal/domain"
)

// DefaultKeyPrefix namespaces catalog hashes in Redis.
const DefaultKeyPrefix = "shopassist:catalog:"

const fetchBatchSize = 500

// readStore is the consumer interface for loading rows (ISP).
type readStore interface {
	db.Pinger
	Scan(ctx context.Context, pattern string) ([]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// RedisSource reads rows stored as hashes {prefix}row:{ordinal}.
type RedisSource struct {
	store  readStore
	prefix string
}

// NewRedisSource creates a Redis-backed catalog source.
func NewRedisSource(store readStore, prefix string) *RedisSource {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisSource{store: store, prefix: prefix}
}

// LoadRows returns every stored row ordered by ordinal. Nothing is cached.
func (s *RedisSource) LoadRows(ctx context.Context) ([]domain.Row, error) {
	keys, err := s.store.Scan(ctx, rowPattern(s.prefix))
	if err != nil {
		return nil, fmt.Errorf("scan catalog: %v: %w", err, domain.ErrCatalogUnavailable)
	}
	sortKeys(keys, s.prefix)

	rows := make([]domain.Row, 0, len(keys))
	for start := 0; start < len(keys); start += fetchBatchSize {
		end := min(start+fetchBatchSize, len(keys))
		batch, err := s.store.HGetAllMulti(ctx, keys[start:end])
		if err != nil {
			return nil, fmt.Errorf("fetch catalog rows: %v: %w", err, domain.ErrCatalogUnavailable)
		}
		for _, fields := range batch {
			// key deleted between SCAN and HGETALL
			if len(fields) == 0 {
				continue
			}
			rows = append(rows, domain.Row(fields))
		}
	}
	return rows, nil
}

// Ping checks Redis availability.
func (s *RedisSource) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func rowKey(prefix string, ordinal int) string {
	return fmt.Sprintf("%srow:%06d", prefix, ordinal)
}

func rowPattern(prefix string) string {
	return prefix + "row:*"
}

// sortKeys orders keys by numeric ordinal; keys without one sort after, lexically.
func sortKeys(keys []string, prefix string) {
	ordinal := func(k string) (int, bool) {
		n, err := strconv.Atoi(strings.TrimPrefix(k, prefix+"row:"))
		return n, err == nil
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, okA := ordinal(keys[i])
		b, okB := ordinal(keys[j])
		switch {
		case okA && okB:
			return a < b
		case okA != okB:
			return okA
		default:
			return keys[i] < keys[j]
		}
	})
}
