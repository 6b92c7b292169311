package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWatcher_BatchesMatchingChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, 50*time.Millisecond, func(path string) bool {
		return strings.HasSuffix(path, ".re")
	}, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	batches := make(chan []string, 4)
	go w.Run(ctx, func(changed []string) { batches <- changed })

	for _, name := range []string{"ch01.re", "notes.tmp", "ch02.re"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("= x\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	seen := make(map[string]bool)
	for len(seen) < 2 {
		select {
		case batch := <-batches:
			for _, path := range batch {
				if filepath.Ext(path) != ".re" {
					t.Errorf("expected only .re changes, got %s", path)
				}
				seen[filepath.Base(path)] = true
			}
		case <-ctx.Done():
			t.Fatalf("expected changes for both chapters, saw %v", seen)
		}
	}
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, 20*time.Millisecond, nil, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	batches := make(chan []string, 8)
	go w.Run(ctx, func(changed []string) { batches <- changed })

	sub := filepath.Join(dir, "part1")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)
	target := filepath.Join(sub, "setup.md")
	if err := os.WriteFile(target, []byte("# Setup\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	for {
		select {
		case batch := <-batches:
			for _, path := range batch {
				if path == target {
					return
				}
			}
		case <-ctx.Done():
			t.Fatal("expected change in new subdirectory")
		}
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	w, err := New(t.TempDir(), 0, nil, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()
	if w.delay != DefaultDelay {
		t.Errorf("expected default delay %s, got %s", DefaultDelay, w.delay)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx, func([]string) {}); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
