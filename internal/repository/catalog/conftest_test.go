package catalog

import (
	"context"
	"strings"

	"github.com/kailas-cloud/shopassist/internal/db"
)

// mockStore is an in-memory hash store for tests.
type mockStore struct {
	hashes  map[string]map[string]string
	pingErr error
	scanErr error
	getErr  error
	setErr  error
	delErr  error

	hgetCalls int
	hsetCalls int
	deleted   []string
}

func newMockStore() *mockStore {
	return &mockStore{hashes: map[string]map[string]string{}}
}

func (m *mockStore) Ping(_ context.Context) error { return m.pingErr }

func (m *mockStore) Scan(_ context.Context, pattern string) ([]string, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *mockStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	m.hgetCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		if h, ok := m.hashes[k]; ok {
			out[i] = h
		} else {
			out[i] = map[string]string{}
		}
	}
	return out, nil
}

func (m *mockStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	m.hsetCalls++
	if m.setErr != nil {
		return m.setErr
	}
	for _, item := range items {
		h := make(map[string]string, len(item.Fields))
		for k, v := range item.Fields {
			h[k] = v
		}
		m.hashes[item.Key] = h
	}
	return nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	if m.delErr != nil {
		return m.delErr
	}
	for _, k := range keys {
		delete(m.hashes, k)
		m.deleted = append(m.deleted, k)
	}
	return nil
}
