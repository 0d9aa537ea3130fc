package mochow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// WaitForTableState polls DescribeTable until the table reaches state.
//
// Example:
//
//	table, err := client.WaitForTableState(ctx, "book", "book_segments",
//	    mochow.TableStateNormal,
//	    mochow.WithPollInterval(time.Second),
//	)
func (c *Client) WaitForTableState(ctx context.Context, database, table string, state TableState, opts ...WaitOption) (*Table, error) {
	var last *Table
	op := fmt.Sprintf("wait for table %s.%s to be %s", database, table, state)
	err := c.poll(ctx, op, opts, func(ctx context.Context) (bool, error) {
		resp, err := c.DescribeTable(ctx, database, table)
		if err != nil {
			return false, err
		}
		last = resp.Table
		return last != nil && last.State == state, nil
	})
	if err != nil {
		return nil, err
	}
	return last, nil
}

// WaitForIndexState polls DescribeIndex until the index reaches state.
func (c *Client) WaitForIndexState(ctx context.Context, database, table, indexName string, state IndexState, opts ...WaitOption) (*IndexField, error) {
	var last *IndexField
	op := fmt.Sprintf("wait for index %s on %s.%s to be %s", indexName, database, table, state)
	err := c.poll(ctx, op, opts, func(ctx context.Context) (bool, error) {
		resp, err := c.DescribeIndex(ctx, database, table, indexName)
		if err != nil {
			return false, err
		}
		last = resp.Index
		return last != nil && last.State == state, nil
	})
	if err != nil {
		return nil, err
	}
	return last, nil
}

// WaitForTableDropped polls DescribeTable until the server reports the
// table no longer exists.
func (c *Client) WaitForTableDropped(ctx context.Context, database, table string, opts ...WaitOption) error {
	op := fmt.Sprintf("wait for table %s.%s to be dropped", database, table)
	return c.poll(ctx, op, opts, func(ctx context.Context) (bool, error) {
		_, err := c.DescribeTable(ctx, database, table)
		if err == nil {
			return false, nil
		}
		var svcErr *ServiceError
		if errors.As(err, &svcErr) && (svcErr.StatusCode == http.StatusNotFound || errors.Is(err, ErrTableNotFound)) {
			return true, nil
		}
		return false, err
	})
}

// poll calls check until it reports done, returns an error, or the wait
// timeout expires.
func (c *Client) poll(ctx context.Context, operation string, opts []WaitOption, check func(context.Context) (bool, error)) error {
	cfg := &waitConfig{
		timeout:      defaultWaitTimeout,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	waitCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-waitCtx.Done():
			return waitError(ctx, operation, cfg.timeout)
		case <-timer.C:
		}

		done, err := check(waitCtx)
		if err != nil {
			if waitCtx.Err() != nil {
				return waitError(ctx, operation, cfg.timeout)
			}
			return err
		}
		if done {
			return nil
		}

		c.logger.LogAttrs(ctx, slog.LevelDebug, "waiting",
			slog.String("operation", operation),
			slog.Int("attempt", attempt),
			slog.Duration("interval", cfg.pollInterval),
		)
		timer.Reset(cfg.pollInterval)
	}
}

func waitError(parent context.Context, operation string, timeout time.Duration) error {
	if err := parent.Err(); err != nil {
		return err
	}
	return &TimeoutError{Operation: operation, Timeout: timeout}
}
