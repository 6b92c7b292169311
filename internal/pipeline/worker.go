package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/bookc/internal/analyzer"
	"github.com/dgallion1/bookc/internal/catalog"
	"github.com/dgallion1/bookc/internal/compiler"
	"github.com/dgallion1/bookc/internal/frontend"
	"github.com/dgallion1/bookc/internal/metrics"
)

// Worker compiles one job at a time.
type Worker struct {
	log       *slog.Logger
	metrics   *metrics.Metrics
	stats     *CompileStats
	separator string
	frontends frontend.Options
}

func NewWorker(log *slog.Logger, m *metrics.Metrics, stats *CompileStats, separator string, frontends frontend.Options) *Worker {
	return &Worker{
		log:       log,
		metrics:   m,
		stats:     stats,
		separator: separator,
		frontends: frontends,
	}
}

// Process loads and compiles the job's book and leaves the job in a
// terminal state.
func (w *Worker) Process(ctx context.Context, job *Job) {
	start := time.Now()
	log := w.log.With("job_id", job.ID, "catalog", job.Catalog)

	status, err := w.run(ctx, job, log)
	if err != nil {
		log.Error("compile job failed", "phase", job.Snapshot().Phase, "error", err)
		job.AddError(err.Error())
	}
	elapsed := time.Since(start)
	w.stats.Record(elapsed, status)
	job.SetStatus(status, "done")
	log.Info("compile job finished", "status", status, "duration_ms", elapsed.Milliseconds())
}

func (w *Worker) run(ctx context.Context, job *Job, log *slog.Logger) (JobStatus, error) {
	// Phase 1: stage the upload and read the catalog.
	job.SetStatus(StatusLoading, "loading")
	dir, err := stageFiles(job.Files())
	if err != nil {
		return StatusError, err
	}
	defer os.RemoveAll(dir)
	fsys := os.DirFS(dir)

	data, ok := job.Files()[job.Catalog]
	if !ok {
		return StatusError, fmt.Errorf("catalog %q was not uploaded", job.Catalog)
	}
	cat, err := catalog.Parse(data)
	if err != nil {
		return StatusError, err
	}
	if cat, err = cat.Expand(fsys); err != nil {
		return StatusError, err
	}
	job.SetTotalChapters(len(cat.Files()))

	// Phase 2: run the frontends.
	b, err := compiler.LoadBook(cat, compiler.FSOpener(fsys), w.frontends)
	if err != nil {
		return StatusError, err
	}
	job.SetChaptersLoaded(len(b.Chapters()))
	log.Info("loaded book", "chapters", len(b.Chapters()), "parts", len(b.Parts))

	// Phase 3: compile.
	job.SetStatus(StatusCompiling, "compiling")
	builders, err := compiler.NewBuilders(job.Builders)
	if err != nil {
		return StatusError, err
	}
	res, err := compiler.Compile(ctx, b, compiler.Options{
		Analyzer: analyzer.New(analyzer.WithSeparator(w.separator)),
		Builders: builders,
		Logger:   log,
		Metrics:  w.metrics,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return StatusError, fmt.Errorf("compile cancelled: %w", err)
		}
		return StatusError, fmt.Errorf("compile: %w", err)
	}
	job.SetResult(res)
	if res.Failed() {
		return StatusFailed, nil
	}
	return StatusCompleted, nil
}

// stageFiles writes the uploaded files into a fresh temp directory.
func stageFiles(files map[string][]byte) (string, error) {
	dir, err := os.MkdirTemp("", "bookc-job-*")
	if err != nil {
		return "", fmt.Errorf("create job dir: %w", err)
	}
	for name, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			os.RemoveAll(dir)
			return "", fmt.Errorf("stage %s: %w", name, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			os.RemoveAll(dir)
			return "", fmt.Errorf("stage %s: %w", name, err)
		}
	}
	return dir, nil
}
