package storage

import (
	"context"
	"fmt"
)

// Package storage contains the remote storage-tree abstraction: resolving
// per-user folders and opening resumable upload sessions. The implementation
// talks to Google Drive; handlers and services only see this interface.

// SessionRequest declares an intended upload. ContentType and Size describe
// the bytes the caller will PUT later; Metadata is stored on the file for
// lookup and audit.
type SessionRequest struct {
	FolderID    string
	FileName    string
	ContentType string
	Size        int64
	Metadata    map[string]string
}

// Storage negotiates with the remote storage tree on behalf of one request.
// Both calls authenticate with the bearer token obtained for that request.
type Storage interface {
	// ResolveFolder maps (parentID, name) to exactly one child folder id,
	// creating the folder if absent. Idempotent for pre-existing folders: a
	// second call returns the same id and issues no create. Not transactional
	// across concurrent requests; if the backend already holds duplicates the
	// first match in its result ordering wins.
	ResolveFolder(ctx context.Context, token, parentID, name string) (string, error)

	// OpenUploadSession opens a resumable transfer channel for the declared
	// file and returns its URL. The session is backend-expired; it is not
	// tracked locally.
	OpenUploadSession(ctx context.Context, token string, req SessionRequest) (string, error)
}

// BackendError is any non-success answer from the storage backend, carrying
// the HTTP status and the backend-provided message. Never retried here; the
// whole request is safe to retry from the caller because folder resolution
// is idempotent.
type BackendError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Message)
}
