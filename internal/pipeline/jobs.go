package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/compiler"
)

// JobStatus represents the state of a compile job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusLoading   JobStatus = "loading"
	StatusCompiling JobStatus = "compiling"
	StatusCompleted JobStatus = "completed"
	// StatusFailed means the book compiled but has error reports.
	StatusFailed JobStatus = "failed"
	// StatusError means the job could not run to completion.
	StatusError JobStatus = "error"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusError
}

// Job tracks the state of a single book compilation.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Catalog  string    `json:"catalog"`
	Builders []string  `json:"builders"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	files   map[string][]byte
	reports []book.Report
	outputs map[string]map[string][]byte
	errors  []string
}

// Progress tracks compilation progress.
type Progress struct {
	TotalChapters  int      `json:"total_chapters"`
	ChaptersLoaded int      `json:"chapters_loaded"`
	ReportErrors   int      `json:"report_errors"`
	ReportWarnings int      `json:"report_warnings"`
	Errors         []string `json:"errors"`
}

// NewJob returns a queued job for the uploaded files. catalog names the
// catalog among files.
func NewJob(catalog string, files map[string][]byte, builders []string) *Job {
	now := time.Now()
	return &Job{
		ID:          uuid.NewString(),
		Status:      StatusQueued,
		Phase:       "queued",
		Catalog:     catalog,
		Builders:    builders,
		ContentHash: FilesHashHex(files),
		CreatedAt:   now,
		UpdatedAt:   now,
		files:       files,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of stored jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs. Jobs still running are kept.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Done() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records a job-level error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotalChapters records how many chapter files the catalog lists.
func (j *Job) SetTotalChapters(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalChapters = n
	j.UpdatedAt = time.Now()
}

// SetChaptersLoaded records how many chapters were parsed.
func (j *Job) SetChaptersLoaded(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ChaptersLoaded = n
	j.UpdatedAt = time.Now()
}

// Files returns the uploaded files by name.
func (j *Job) Files() map[string][]byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.files
}

// SetResult keeps the reports and outputs of a finished compilation and
// releases the uploaded files.
func (j *Job) SetResult(res *compiler.Result) {
	errs, warnings := res.Counts()
	j.mu.Lock()
	defer j.mu.Unlock()
	j.reports = res.Reports
	j.outputs = res.Outputs
	j.files = nil
	j.Progress.ReportErrors = errs
	j.Progress.ReportWarnings = warnings
	j.UpdatedAt = time.Now()
}

// Reports returns the document reports of a finished compilation.
func (j *Job) Reports() []book.Report {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.reports == nil {
		return []book.Report{}
	}
	return j.reports
}

// Output returns a builder's output for a chapter.
func (j *Job) Output(builder, chapter string) ([]byte, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out, ok := j.outputs[builder][chapter]
	return out, ok
}

// OutputNames lists chapter names with output, per builder.
func (j *Job) OutputNames() map[string][]string {
	j.mu.Lock()
	defer j.mu.Unlock()
	names := make(map[string][]string, len(j.outputs))
	for bl, chapters := range j.outputs {
		list := make([]string, 0, len(chapters))
		for name := range chapters {
			list = append(list, name)
		}
		sort.Strings(list)
		names[bl] = list
	}
	return names
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Catalog     string    `json:"catalog"`
	Builders    []string  `json:"builders"`
	Progress    Progress  `json:"progress"`
	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	builders := j.Builders
	if builders == nil {
		builders = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		Status:   j.Status,
		Phase:    j.Phase,
		Catalog:  j.Catalog,
		Builders: builders,
		Progress: Progress{
			TotalChapters:  j.Progress.TotalChapters,
			ChaptersLoaded: j.Progress.ChaptersLoaded,
			ReportErrors:   j.Progress.ReportErrors,
			ReportWarnings: j.Progress.ReportWarnings,
			Errors:         errs,
		},
		ContentHash: j.ContentHash,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// FilesHashHex hashes a set of named files independent of map order.
func FilesHashHex(files map[string][]byte) string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	h := sha256.New()
	for _, name := range names {
		fmt.Fprintf(h, "%s\x00%d\x00", name, len(files[name]))
		h.Write(files[name])
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
