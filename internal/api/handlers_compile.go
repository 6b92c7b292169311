package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/bookc/internal/analyzer"
	"github.com/dgallion1/bookc/internal/builder/docxbuilder"
	"github.com/dgallion1/bookc/internal/builder/htmlbuilder"
	"github.com/dgallion1/bookc/internal/compiler"
	"github.com/dgallion1/bookc/internal/frontend"
	"github.com/dgallion1/bookc/internal/pipeline"
)

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	catalogs := r.MultipartForm.File["catalog"]
	if len(catalogs) != 1 {
		jsonError(w, "exactly one catalog file is required", http.StatusBadRequest)
		return
	}
	chapters := r.MultipartForm.File["files"]
	if len(chapters) == 0 {
		jsonError(w, "at least one chapter file is required", http.StatusBadRequest)
		return
	}

	builders := s.cfg.DefaultBuilders
	if v := r.FormValue("builders"); v != "" {
		builders = strings.Split(v, ",")
	}
	// Reject unknown builders before queueing.
	if _, err := compiler.NewBuilders(builders); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := make(map[string][]byte, len(chapters)+1)
	var total int64
	read := func(fh *multipart.FileHeader) (string, bool) {
		name := sanitizeFilename(fh.Filename)
		if _, dup := files[name]; dup {
			jsonError(w, fmt.Sprintf("duplicate file name: %s", name), http.StatusBadRequest)
			return "", false
		}
		data, err := readUpload(fh, s.cfg.MaxUploadBytes-total)
		if err != nil {
			jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
			return "", false
		}
		total += int64(len(data))
		files[name] = data
		return name, true
	}

	catalogName, ok := read(catalogs[0])
	if !ok {
		return
	}
	for _, fh := range chapters {
		name := sanitizeFilename(fh.Filename)
		if !frontend.IsSupportedExtension(name) {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(name)), http.StatusBadRequest)
			return
		}
		if _, ok := read(fh); !ok {
			return
		}
	}

	job := pipeline.NewJob(catalogName, files, builders)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/compile/%s/status", job.ID),
	})
}

func (s *Server) handleCompileStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	resp := map[string]any{
		"job_id":       snap.ID,
		"status":       snap.Status,
		"phase":        snap.Phase,
		"builders":     snap.Builders,
		"progress":     snap.Progress,
		"content_hash": snap.ContentHash,
	}
	if snap.Status.Done() {
		resp["reports"] = job.Reports()
		resp["outputs"] = job.OutputNames()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleCompileOutput(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	if snap := job.Snapshot(); !snap.Status.Done() {
		jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
		return
	}
	bl, chapter := chi.URLParam(r, "builder"), chi.URLParam(r, "chapter")
	out, ok := job.Output(bl, chapter)
	if !ok {
		jsonError(w, fmt.Sprintf("no %s output for chapter %s", bl, chapter), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", contentType(bl))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", chapter+compiler.OutputExtension(bl)))
	w.Write(out)
}

func (s *Server) handleCompileStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       s.orchestrator.Stats().Snapshot(),
	})
}

func (s *Server) handleAcceptables(w http.ResponseWriter, r *http.Request) {
	a := analyzer.New(analyzer.WithSeparator(s.cfg.ReferenceSeparator))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"separator":   a.Separator(),
		"acceptables": a.Acceptables(),
		"builders":    compiler.BuilderNames(),
	})
}

func readUpload(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("upload exceeds max size")
	}
	return data, nil
}

func contentType(builder string) string {
	switch builder {
	case htmlbuilder.Name:
		return "text/html; charset=utf-8"
	case docxbuilder.Name:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "text/plain; charset=utf-8"
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
