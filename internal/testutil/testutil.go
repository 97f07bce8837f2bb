// Package testutil provides testing utilities for pybar tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// DefaultTimeout bounds every blocking helper in this package.
const DefaultTimeout = 2 * time.Second

// Recv returns the next value from ch. The test fails if ch is closed or
// nothing arrives within DefaultTimeout.
func Recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()

	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatal("channel closed while waiting for a value")
		}
		return v
	case <-time.After(DefaultTimeout):
		t.Fatalf("timed out after %v waiting for a value", DefaultTimeout)
	}
	var zero T
	return zero
}

// NoRecv fails the test if ch yields a value within d. A closed channel
// is also reported, since it would otherwise look like a zero value.
func NoRecv[T any](t *testing.T, ch <-chan T, d time.Duration) {
	t.Helper()

	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatal("channel closed unexpectedly")
		}
		t.Fatalf("unexpected value %v", v)
	case <-time.After(d):
	}
}

// WaitClosed drains ch until it is closed and returns what it received.
// The test fails if ch stays open longer than DefaultTimeout.
func WaitClosed[T any](t *testing.T, ch <-chan T) []T {
	t.Helper()

	var got []T
	deadline := time.After(DefaultTimeout)
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, v)
		case <-deadline:
			t.Fatalf("timed out after %v waiting for channel to close (received %d values)", DefaultTimeout, len(got))
			return got
		}
	}
}

// Eventually polls cond until it holds or DefaultTimeout passes.
func Eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(DefaultTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %v: %s", DefaultTimeout, msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// WriteFiles creates files under a fresh temporary directory and returns
// its path. Keys are slash-separated paths relative to the directory.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for path, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write file %s: %v", path, err)
		}
	}
	return dir
}
