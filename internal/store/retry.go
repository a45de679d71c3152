package store

import (
	"context"
	"errors"
	"time"

	"k9harmony/pkg/logger"
)

// Retrying retries transient failures of the wrapped store with exponential backoff.
type Retrying struct {
	next        Store
	maxAttempts int
	delay       time.Duration
	log         *logger.Logger
}

func NewRetrying(next Store, maxAttempts int, delay time.Duration, log *logger.Logger) *Retrying {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retrying{next: next, maxAttempts: maxAttempts, delay: delay, log: log}
}

func (r *Retrying) FetchTable(ctx context.Context, table string) ([]Row, error) {
	var rows []Row
	err := r.do(ctx, "fetch_table", table, func(ctx context.Context) (err error) {
		rows, err = r.next.FetchTable(ctx, table)
		return err
	})
	return rows, err
}

func (r *Retrying) FindBy(ctx context.Context, table, column string, value any) (Row, error) {
	var row Row
	err := r.do(ctx, "find_by", table, func(ctx context.Context) (err error) {
		row, err = r.next.FindBy(ctx, table, column, value)
		return err
	})
	return row, err
}

func (r *Retrying) FindAll(ctx context.Context, table, column string, value any) ([]Row, error) {
	var rows []Row
	err := r.do(ctx, "find_all", table, func(ctx context.Context) (err error) {
		rows, err = r.next.FindAll(ctx, table, column, value)
		return err
	})
	return rows, err
}

// Insert treats a duplicate on a retry as success: the earlier attempt landed.
func (r *Retrying) Insert(ctx context.Context, table string, row Row) error {
	attempt := 0
	return r.do(ctx, "insert", table, func(ctx context.Context) error {
		attempt++
		err := r.next.Insert(ctx, table, row)
		if attempt > 1 && errors.Is(err, ErrDuplicate) {
			return nil
		}
		return err
	})
}

func (r *Retrying) Update(ctx context.Context, table, keyColumn string, key any, changes Row) error {
	return r.do(ctx, "update", table, func(ctx context.Context) error {
		return r.next.Update(ctx, table, keyColumn, key, changes)
	})
}

func (r *Retrying) Delete(ctx context.Context, table, column string, value any) (int64, error) {
	var n int64
	err := r.do(ctx, "delete", table, func(ctx context.Context) (err error) {
		n, err = r.next.Delete(ctx, table, column, value)
		return err
	})
	return n, err
}

func (r *Retrying) Ping(ctx context.Context) error {
	if p, ok := r.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (r *Retrying) do(ctx context.Context, op, table string, fn func(context.Context) error) error {
	var err error
	delay := r.delay
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil || !retryable(ctx, err) {
			return err
		}
		if attempt == r.maxAttempts {
			break
		}
		r.log.Warn("Store operation failed, retrying",
			"op", op,
			"table", table,
			"attempt", attempt,
			"max_attempts", r.maxAttempts,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
		delay *= 2
	}
	r.log.Error("Store operation failed after retries", "op", op, "table", table, "error", err)
	return err
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnknownTable),
		errors.Is(err, ErrDuplicate),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}
