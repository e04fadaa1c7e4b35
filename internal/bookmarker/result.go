package bookmarker

import (
	"errors"

	"github.com/nikbrunner/bmc/internal/host"
	"github.com/nikbrunner/bmc/internal/model"
)

// Result codes.
const (
	CodeNoValidURLs     = "no_valid_urls"
	CodeInvalidPage     = "invalid_page"
	CodeHostUnavailable = "host_unavailable"
	CodeFailed          = "failed"
)

// Folder list sources.
const (
	SourceLive    = "live"
	SourceCache   = "cache"
	SourceDefault = "default"
)

const hostUnavailableMessage = "Bookmark store unavailable. Please reload the browser and try again."

// ItemError records one entry that could not be created.
type ItemError struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error"`
}

// Result is the response of every Service operation.
// Success is false only when nothing could be attempted; individual
// failures are collected in Errors.
type Result struct {
	Success       bool                     `json:"success"`
	Count         int                      `json:"count"`
	FolderName    string                   `json:"folderName,omitempty"`
	FolderID      string                   `json:"folderId,omitempty"`
	FolderCreated bool                     `json:"folderCreated,omitempty"`
	Errors        []ItemError              `json:"errors,omitempty"`
	Error         string                   `json:"error,omitempty"`
	Code          string                   `json:"code,omitempty"`
	Folders       []model.FolderDescriptor `json:"folders,omitempty"`
	Source        string                   `json:"source,omitempty"`
}

func failure(code, message string) Result {
	return Result{Error: message, Code: code}
}

// failed maps a host error onto a result.
func failed(err error) Result {
	if errors.Is(err, host.ErrUnavailable) {
		return failure(CodeHostUnavailable, hostUnavailableMessage)
	}
	return failure(CodeFailed, err.Error())
}
