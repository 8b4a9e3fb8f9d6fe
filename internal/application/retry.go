package application

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds retries of filesystem operations that can fail
// transiently while another process holds the file
type RetryPolicy struct {
	Attempts        uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy allows ten attempts, backing off from 20ms to 200ms
var DefaultRetryPolicy = RetryPolicy{
	Attempts:        10,
	InitialInterval: 20 * time.Millisecond,
	MaxInterval:     200 * time.Millisecond,
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	eb.MaxInterval = p.MaxInterval
	eb.MaxElapsedTime = 0 // bounded by attempts
	eb.Reset()

	attempts := p.Attempts
	if attempts > 0 {
		attempts-- // WithMaxRetries counts retries, not attempts
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, attempts), ctx)
}

// RetryOnFail runs op until it succeeds, returns a permanent error, or the
// policy is exhausted. The last error is returned.
func (p RetryPolicy) RetryOnFail(ctx context.Context, op func() error) error {
	return backoff.Retry(op, p.backOff(ctx))
}

// ReadExitCode reads the integer exit code written to a result sentinel.
// Unparseable content is retried since the writer may not have finished.
func (p RetryPolicy) ReadExitCode(ctx context.Context, path string) (int, error) {
	code := -1
	err := p.RetryOnFail(ctx, func() error {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(string(data)))
		if err != nil {
			return fmt.Errorf("invalid exit code in %s: %w", path, err)
		}
		code = n
		return nil
	})
	if err != nil {
		return -1, err
	}
	return code, nil
}

// RemoveFile deletes path, retrying transient failures. A file that is
// already gone counts as removed.
func (p RetryPolicy) RemoveFile(ctx context.Context, path string) error {
	return p.RetryOnFail(ctx, func() error {
		err := os.Remove(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	})
}
