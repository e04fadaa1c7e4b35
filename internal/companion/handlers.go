package companion

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/nikbrunner/bmc/internal/exporter"
	"github.com/nikbrunner/bmc/internal/logger"
	"github.com/nikbrunner/bmc/internal/model"
	"github.com/nikbrunner/bmc/internal/normalize"
	"github.com/nikbrunner/bmc/internal/storage"
)

const (
	// DefaultFolderName is used when a request names no folder.
	DefaultFolderName = "Imported Bookmarks"

	maxBodyBytes       = 1 << 20
	maxFolderNameLen   = 200
	downloadName       = "bookmarks.html"
	downloadPattern    = "bookmarks-*.html"
	sourceConvert      = "convert"
	sourceAddToBrowser = "add-to-browser"
)

var downloadFile = regexp.MustCompile(`^bookmarks-[0-9]+\.html$`)

// BookmarkRequest is the body of /convert and /add-to-browser.
type BookmarkRequest struct {
	URLs       string `json:"urls"`
	FolderName string `json:"folder_name"`
}

// Validate checks a trimmed request.
func (r BookmarkRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.URLs, validation.Required.Error("Please provide some URLs")),
		validation.Field(&r.FolderName, validation.Length(0, maxFolderNameLen)),
	)
}

// ConvertResponse is returned by /convert.
type ConvertResponse struct {
	Success     bool   `json:"success"`
	URLCount    int    `json:"url_count"`
	DownloadURL string `json:"download_url"`
}

// AddToBrowserResponse is returned by /add-to-browser.
type AddToBrowserResponse struct {
	Success    bool          `json:"success"`
	Bookmarks  []model.Entry `json:"bookmarks"`
	FolderName string        `json:"folder_name"`
	Count      int           `json:"count"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
}

type handlers struct {
	log         logger.Logger
	activity    ActivityStore
	downloadDir string
	version     string
	started     time.Time
	now         func() time.Time
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, healthzResponse{
		Status:        "ok",
		UptimeSeconds: h.now().Sub(h.started).Seconds(),
		Version:       h.version,
	})
}

func (h *handlers) convert(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	entries := normalize.NormalizeBlock(req.URLs)
	doc := exporter.ExportEntries(req.FolderName, entries)

	f, err := os.CreateTemp(h.downloadDir, downloadPattern)
	if err != nil {
		h.fail(w, err)
		return
	}
	_, werr := io.WriteString(f, doc)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(f.Name())
		h.fail(w, err)
		return
	}

	h.record(r, len(entries), req.FolderName, sourceConvert)

	writeJSON(w, http.StatusOK, ConvertResponse{
		Success:     true,
		URLCount:    len(entries),
		DownloadURL: "/download/" + filepath.Base(f.Name()),
	})
}

func (h *handlers) download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !downloadFile.MatchString(name) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "File not found"})
		return
	}

	f, err := os.Open(filepath.Join(h.downloadDir, name))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "File not found"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+downloadName+`"`)
	http.ServeContent(w, r, downloadName, info.ModTime(), f)
}

func (h *handlers) addToBrowser(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	entries := normalize.NormalizeBlock(req.URLs)
	h.record(r, len(entries), req.FolderName, sourceAddToBrowser)

	writeJSON(w, http.StatusOK, AddToBrowserResponse{
		Success:    true,
		Bookmarks:  entries,
		FolderName: req.FolderName,
		Count:      len(entries),
	})
}

func (h *handlers) analytics(w http.ResponseWriter, r *http.Request) {
	stats := storage.Stats{RecentActivity: []storage.Activity{}}
	if h.activity != nil {
		s, err := h.activity.Stats(r.Context(), AnalyticsLimit)
		if err != nil {
			h.log.Warn("read analytics", logger.Error(err))
		} else {
			stats = s
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

// decode reads and validates a BookmarkRequest, answering 400 on failure.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request) (BookmarkRequest, bool) {
	var req BookmarkRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"})
		return req, false
	}

	req.URLs = strings.TrimSpace(req.URLs)
	req.FolderName = strings.TrimSpace(req.FolderName)
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validationMessage(err)})
		return req, false
	}
	if req.FolderName == "" {
		req.FolderName = DefaultFolderName
	}
	return req, true
}

func (h *handlers) record(r *http.Request, count int, folder, source string) {
	if h.activity == nil {
		return
	}
	err := h.activity.RecordActivity(r.Context(), storage.Activity{
		CreatedAt:  h.now(),
		URLCount:   count,
		FolderName: folder,
		Source:     source,
	})
	if err != nil {
		h.log.Warn("record activity", logger.Error(err))
	}
}

func (h *handlers) fail(w http.ResponseWriter, err error) {
	h.log.Error("request failed", logger.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

// validationMessage prefers the urls message, which is shown to users as is.
func validationMessage(err error) string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	if e, ok := errs["urls"]; ok {
		return e.Error()
	}
	return errs.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
