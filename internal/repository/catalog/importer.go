package catalog

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/shopassist/internal/db"
	"github.com/kailas-cloud/shopassist/internal/domain"
)

const writeBatchSize = 500

// writeStore is the consumer interface for importing rows (ISP).
type writeStore interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, keys ...string) error
}

// Importer writes catalog rows into Redis hashes.
type Importer struct {
	store  writeStore
	prefix string
}

// NewImporter creates an importer writing under prefix.
func NewImporter(store writeStore, prefix string) *Importer {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Importer{store: store, prefix: prefix}
}

// Import stores rows in order and returns how many were written. Rows without
// fields are skipped but keep their ordinal. With replace set, existing catalog
// keys are deleted first.
func (im *Importer) Import(ctx context.Context, rows []domain.Row, replace bool) (int, error) {
	if replace {
		if err := im.Clear(ctx); err != nil {
			return 0, err
		}
	}

	written := 0
	batch := make([]db.HashSetItem, 0, writeBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := im.store.HSetMulti(ctx, batch); err != nil {
			return fmt.Errorf("write catalog rows: %w", err)
		}
		written += len(batch)
		batch = batch[:0]
		return nil
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		batch = append(batch, db.HashSetItem{Key: rowKey(im.prefix, i), Fields: row})
		if len(batch) == writeBatchSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	if err := flush(); err != nil {
		return written, err
	}
	return written, nil
}

// Clear deletes every catalog row under the prefix.
func (im *Importer) Clear(ctx context.Context) error {
	keys, err := im.store.Scan(ctx, rowPattern(im.prefix))
	if err != nil {
		return fmt.Errorf("scan catalog: %w", err)
	}
	for start := 0; start < len(keys); start += writeBatchSize {
		end := min(start+writeBatchSize, len(keys))
		if err := im.store.Del(ctx, keys[start:end]...); err != nil {
			return fmt.Errorf("delete catalog rows: %w", err)
		}
	}
	return nil
}
