package util

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

func fastRetry() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		InitialWait: 5 * time.Millisecond,
		MaxWait:     20 * time.Millisecond,
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"EAGAIN", syscall.EAGAIN, true},
		{"EBUSY", syscall.EBUSY, true},
		{"EIO", syscall.EIO, true},
		{"ENOENT", syscall.ENOENT, false},
		{"EACCES", syscall.EACCES, false},
		{"timeout in message", errors.New("write timeout"), true},
		{"generic error", errors.New("invalid argument"), false},
		{"PathError with EBUSY", &os.PathError{Op: "rename", Path: "/x", Err: syscall.EBUSY}, true},
		{"PathError with ENOENT", &os.PathError{Op: "open", Path: "/x", Err: syscall.ENOENT}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableError(tt.err); got != tt.expected {
				t.Errorf("IsRetryableError(%v) = %v, expected %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestRetryWithBackoff_SuccessAfterRetries(t *testing.T) {
	attempts := 0

	result, err := RetryWithBackoff(fastRetry(), func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", syscall.EAGAIN
		}
		return "done", nil
	}, "test operation")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result != "done" {
		t.Errorf("Expected result 'done', got: %s", result)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	attempts := 0

	_, err := RetryWithBackoff(fastRetry(), func() (int, error) {
		attempts++
		return 0, syscall.EIO
	}, "test operation")

	if err == nil {
		t.Fatal("Expected error after max retries, got nil")
	}
	if !errors.Is(err, syscall.EIO) {
		t.Errorf("Expected wrapped EIO, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
}

func TestRetryWithBackoff_NonRetryableError(t *testing.T) {
	attempts := 0

	_, err := RetryWithBackoff(fastRetry(), func() (int, error) {
		attempts++
		return 0, syscall.EACCES
	}, "test operation")

	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got: %d", attempts)
	}
}

func TestRetryWithBackoff_ZeroAttemptsRunsOnce(t *testing.T) {
	attempts := 0
	_ = Retry(&RetryConfig{}, func() error {
		attempts++
		return nil
	}, "noop")

	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got: %d", attempts)
	}
}

func TestRetryableFileHelpers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	if err := RetryableMkdirAll(dir, 0755, fastRetry()); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	f, err := RetryableCreateTemp(dir, "tmp-*", fastRetry())
	if err != nil {
		t.Fatalf("create temp failed: %v", err)
	}
	f.Close()

	final := filepath.Join(dir, "final.csv")
	if err := RetryableRename(f.Name(), final, fastRetry()); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if _, err := os.Stat(final); err != nil {
		t.Errorf("expected %s to exist: %v", final, err)
	}
}
