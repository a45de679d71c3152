package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Memory is a process-local Store used for tests and single-node development.
type Memory struct {
	mu     sync.RWMutex
	tables map[string][]Row
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[string][]Row)}
}

func (m *Memory) FetchTable(ctx context.Context, table string) ([]Row, error) {
	if err := check(ctx, table); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.tables[table]
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, Project(table, r))
	}
	return out, nil
}

func (m *Memory) FindBy(ctx context.Context, table, column string, value any) (Row, error) {
	if err := check(ctx, table); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.tables[table] {
		if sameValue(r[column], value) {
			return Project(table, r), nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindAll(ctx context.Context, table, column string, value any) ([]Row, error) {
	if err := check(ctx, table); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Row
	for _, r := range m.tables[table] {
		if sameValue(r[column], value) {
			out = append(out, Project(table, r))
		}
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, table string, row Row) error {
	if err := check(ctx, table); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range append([]string{PrimaryKey(table)}, Unique[table]...) {
		v, ok := row[key]
		if !ok || v == "" {
			continue
		}
		for _, r := range m.tables[table] {
			if sameValue(r[key], v) {
				return fmt.Errorf("%w: %s=%v", ErrDuplicate, key, v)
			}
		}
	}
	m.tables[table] = append(m.tables[table], row.Clone())
	return nil
}

func (m *Memory) Update(ctx context.Context, table, keyColumn string, key any, changes Row) error {
	if err := check(ctx, table); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.tables[table] {
		if sameValue(r[keyColumn], key) {
			updated := r.Clone()
			for k, v := range changes {
				updated[k] = v
			}
			m.tables[table][i] = updated
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) Delete(ctx context.Context, table, column string, value any) (int64, error) {
	if err := check(ctx, table); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.tables[table]
	kept := rows[:0]
	var removed int64
	for _, r := range rows {
		if sameValue(r[column], value) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.tables[table] = kept
	return removed, nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

func check(ctx context.Context, table string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !knownTable(table) {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return nil
}

func sameValue(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Equal(tb)
		}
	}
	if a == nil || b == nil {
		return a == b
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
