package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/compiler"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestFilesHashHex(t *testing.T) {
	a := FilesHashHex(map[string][]byte{"a.re": []byte("x"), "b.re": []byte("y")})
	b := FilesHashHex(map[string][]byte{"b.re": []byte("y"), "a.re": []byte("x")})
	if a != b {
		t.Errorf("expected hash independent of map order, got %q and %q", a, b)
	}
	// Moving bytes between names must change the hash.
	c := FilesHashHex(map[string][]byte{"a.re": []byte("xy"), "b.re": []byte("")})
	if a == c {
		t.Error("expected different hashes for different file contents")
	}
}

func TestNewJob(t *testing.T) {
	files := map[string][]byte{"catalog.yml": []byte("CHAPS: [a.re]")}
	j1 := NewJob("catalog.yml", files, []string{"text"})
	j2 := NewJob("catalog.yml", files, []string{"text"})
	if j1.ID == j2.ID {
		t.Errorf("expected unique job ids, got %q twice", j1.ID)
	}
	if j1.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, j1.Status)
	}
	if j1.ContentHash != j2.ContentHash || j1.ContentHash == "" {
		t.Errorf("expected equal non-empty content hashes, got %q and %q", j1.ContentHash, j2.ContentHash)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
		done   bool
	}{
		{StatusLoading, "loading", false},
		{StatusCompiling, "compiling", false},
		{StatusCompleted, "done", true},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if job.Status.Done() != tr.done {
			t.Errorf("expected Done()=%v for %q", tr.done, tr.status)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("catalog missing")
	job.AddError("compile cancelled")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "catalog missing" {
		t.Errorf("expected first error %q, got %q", "catalog missing", snap.Progress.Errors[0])
	}
}

func TestJob_SetResult(t *testing.T) {
	job := NewJob("catalog.yml", map[string][]byte{"catalog.yml": nil}, []string{"text"})
	job.SetResult(&compiler.Result{
		Reports: []book.Report{
			{Level: book.LevelWarning, Code: book.CodeMissingHeadline, Chapter: "faq"},
		},
		Outputs: map[string]map[string][]byte{
			"text": {"intro": []byte("Intro\n"), "faq": []byte("Q\n")},
		},
	})

	if job.Files() != nil {
		t.Error("expected uploaded files to be released")
	}
	out, ok := job.Output("text", "intro")
	if !ok || string(out) != "Intro\n" {
		t.Errorf("expected intro output, got %q (ok=%v)", out, ok)
	}
	if _, ok := job.Output("html", "intro"); ok {
		t.Error("expected no html output")
	}
	names := job.OutputNames()["text"]
	if len(names) != 2 || names[0] != "faq" || names[1] != "intro" {
		t.Errorf("expected sorted names [faq intro], got %v", names)
	}
	snap := job.Snapshot()
	if snap.Progress.ReportWarnings != 1 || snap.Progress.ReportErrors != 0 {
		t.Errorf("expected 1 warning and 0 errors, got %+v", snap.Progress)
	}
	if len(job.Reports()) != 1 {
		t.Errorf("expected 1 report, got %d", len(job.Reports()))
	}
}

func TestJob_SnapshotNeverNil(t *testing.T) {
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if snap.Builders == nil {
		t.Error("expected non-nil builders slice in snapshot")
	}
	if job.Reports() == nil {
		t.Error("expected non-nil reports before compilation")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", Status: StatusCompleted, UpdatedAt: time.Now()}
	running := &Job{ID: "running", Status: StatusCompiling, UpdatedAt: time.Now()}
	store.Put(expired)
	store.Put(running)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", Status: StatusFailed, UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("running") == nil {
		t.Error("expected running job to survive cleanup")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 jobs left, got %d", store.Len())
	}
}
