// Package storetest provides store wrappers for exercising failure paths.
package storetest

import (
	"context"
	"sync"

	"k9harmony/internal/store"
)

// Faulty wraps a Store and fails selected operations on demand.
type Faulty struct {
	store.Store

	mu          sync.Mutex
	insertFails map[string]fault
	readFails   map[string]fault
	beforeNext  map[string]func()
	Inserts     map[string]int
}

type fault struct {
	err       error
	remaining int
}

func NewFaulty(next store.Store) *Faulty {
	return &Faulty{
		Store:       next,
		insertFails: map[string]fault{},
		readFails:   map[string]fault{},
		beforeNext:  map[string]func(){},
		Inserts:     map[string]int{},
	}
}

// FailInserts makes the next n inserts into table fail with err. n < 0 fails forever.
func (f *Faulty) FailInserts(table string, err error, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertFails[table] = fault{err: err, remaining: n}
}

// FailReads makes the next n scans of table fail with err. n < 0 fails forever.
func (f *Faulty) FailReads(table string, err error, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readFails[table] = fault{err: err, remaining: n}
}

// BeforeNextInsert runs fn once, just ahead of the next insert into table.
// fn may write to the store itself.
func (f *Faulty) BeforeNextInsert(table string, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beforeNext[table] = fn
}

func (f *Faulty) Insert(ctx context.Context, table string, row store.Row) error {
	f.mu.Lock()
	f.Inserts[table]++
	err := take(f.insertFails, table)
	hook := f.beforeNext[table]
	delete(f.beforeNext, table)
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return err
	}
	return f.Store.Insert(ctx, table, row)
}

func (f *Faulty) FetchTable(ctx context.Context, table string) ([]store.Row, error) {
	if err := f.readErr(table); err != nil {
		return nil, err
	}
	return f.Store.FetchTable(ctx, table)
}

func (f *Faulty) FindAll(ctx context.Context, table, column string, value any) ([]store.Row, error) {
	if err := f.readErr(table); err != nil {
		return nil, err
	}
	return f.Store.FindAll(ctx, table, column, value)
}

func (f *Faulty) FindBy(ctx context.Context, table, column string, value any) (store.Row, error) {
	if err := f.readErr(table); err != nil {
		return nil, err
	}
	return f.Store.FindBy(ctx, table, column, value)
}

func (f *Faulty) readErr(table string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return take(f.readFails, table)
}

func take(faults map[string]fault, table string) error {
	ft, ok := faults[table]
	if !ok || ft.remaining == 0 {
		return nil
	}
	if ft.remaining > 0 {
		ft.remaining--
		faults[table] = ft
	}
	return ft.err
}
