package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/config"
	"github.com/dgallion1/bookc/internal/metrics"
)

func testConfig() config.Config {
	return config.Config{
		WorkerCount:        2,
		MaxQueueSize:       4,
		JobTTL:             time.Hour,
		StatsWindow:        time.Hour,
		ReferenceSeparator: "|",
	}
}

func waitDone(t *testing.T, job *Job) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if snap := job.Snapshot(); snap.Status.Done() {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish, status %q", job.ID, job.Snapshot().Status)
	return JobSnapshot{}
}

func bookFiles(ref string) map[string][]byte {
	return map[string][]byte{
		"catalog.yml": []byte("CHAPS:\n  - ch*.re\n"),
		"ch01.re":     []byte("= One\n\n//list[l1][Sample]{\nx\n//}\n"),
		"ch02.re":     []byte("= Two\n\nSee @<list>{" + ref + "}.\n"),
	}
}

func TestOrchestrator_CompilesJobs(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewOrchestrator(testConfig(), metrics.New(reg), slog.New(slog.DiscardHandler))
	o.Start(context.Background())
	defer o.Stop()

	ok := NewJob("catalog.yml", bookFiles("ch01|l1"), []string{"text"})
	bad := NewJob("catalog.yml", bookFiles("ch01|nope"), []string{"text"})
	broken := NewJob("missing.yml", bookFiles("ch01|l1"), []string{"text"})
	for _, j := range []*Job{ok, bad, broken} {
		if err := o.Submit(j); err != nil {
			t.Fatalf("submit %s: %v", j.ID, err)
		}
	}

	snap := waitDone(t, ok)
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.TotalChapters != 2 || snap.Progress.ChaptersLoaded != 2 {
		t.Errorf("expected 2 chapters listed and loaded, got %+v", snap.Progress)
	}
	out, found := ok.Output("text", "ch02")
	if !found || !strings.Contains(string(out), "See List 1.1.") {
		t.Errorf("expected resolved reference in ch02 output, got %q", out)
	}

	snap = waitDone(t, bad)
	if snap.Status != StatusFailed {
		t.Errorf("expected failed, got %q", snap.Status)
	}
	if reps := bad.Reports(); len(reps) != 1 || reps[0].Code != book.CodeReferenceNotFound {
		t.Errorf("expected one reference-not-found report, got %v", reps)
	}
	if _, found := bad.Output("text", "ch02"); found {
		t.Error("expected no output for a failed compilation")
	}

	snap = waitDone(t, broken)
	if snap.Status != StatusError || len(snap.Progress.Errors) != 1 {
		t.Errorf("expected error status with one error, got %q %v", snap.Status, snap.Progress.Errors)
	}

	stats := o.Stats().Snapshot()
	if stats.Count != 3 {
		t.Errorf("expected 3 recorded jobs, got %d", stats.Count)
	}
	// The broken job never reaches the compiler.
	if n, err := testutil.GatherAndCount(reg, "bookc_compiles_total"); err != nil || n != 2 {
		t.Errorf("expected success and failed outcome series, got %d (%v)", n, err)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	o := NewOrchestrator(cfg, nil, slog.New(slog.DiscardHandler))
	// Not started: nothing drains the queue.

	first := NewJob("catalog.yml", bookFiles("ch01|l1"), nil)
	if err := o.Submit(first); err != nil {
		t.Fatalf("expected first submit to succeed, got %v", err)
	}
	second := NewJob("catalog.yml", bookFiles("ch01|l1"), nil)
	if err := o.Submit(second); err == nil {
		t.Fatal("expected queue full error")
	}
	if snap := second.Snapshot(); snap.Status != StatusError || snap.Phase != "queue_full" {
		t.Errorf("expected error/queue_full, got %q/%q", snap.Status, snap.Phase)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
	if o.GetJob(second.ID) == nil {
		t.Error("expected rejected job to stay visible")
	}
}
