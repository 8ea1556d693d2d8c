package store

import (
	"errors"
	"testing"
	"time"
)

func TestIsTransientSQLiteErr(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("UNIQUE constraint failed"), false},
		{errors.New("exec: SQLITE_BUSY"), true},
		{errors.New("database is locked"), true},
		{errors.New("sqlite: (522) short read"), true},
	}
	for _, tt := range tests {
		if got := isTransientSQLiteErr(tt.err); got != tt.want {
			t.Errorf("isTransientSQLiteErr(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestRetryOp(t *testing.T) {
	fast := retryConfig{maxRetries: 2, baseDelay: time.Millisecond, maxDelay: 2 * time.Millisecond}

	calls := 0
	err := retryOp(fast, func() error {
		calls++
		if calls < 2 {
			return errors.New("SQLITE_BUSY")
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("transient then ok: err=%v calls=%d, want nil/2", err, calls)
	}

	calls = 0
	permanent := errors.New("no such table")
	err = retryOp(fast, func() error {
		calls++
		return permanent
	})
	if err != permanent || calls != 1 {
		t.Errorf("permanent: err=%v calls=%d, want %v/1", err, calls, permanent)
	}

	calls = 0
	err = retryOp(fast, func() error {
		calls++
		return errors.New("database is locked")
	})
	if err == nil || calls != 3 {
		t.Errorf("exhausted: err=%v calls=%d, want error/3", err, calls)
	}
}

func TestBackoffDelayCapped(t *testing.T) {
	cfg := retryConfig{maxRetries: 5, baseDelay: 10 * time.Millisecond, maxDelay: 40 * time.Millisecond}
	for attempt := 0; attempt < 6; attempt++ {
		d := backoffDelay(cfg, attempt)
		if d > cfg.maxDelay+cfg.baseDelay {
			t.Errorf("attempt %d: delay %s exceeds cap", attempt, d)
		}
	}
}
