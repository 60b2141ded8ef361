package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"uploadapi/internal/auth"
	"uploadapi/internal/config"
	"uploadapi/internal/model"
	"uploadapi/internal/naming"
	"uploadapi/internal/storage"
)

// provenanceTag marks files created through this service in their Drive
// metadata.
const provenanceTag = "uploadapi"

// allowedSubjects is the closed set of content categories a recording may
// declare. The subject participates in the final file name only.
var allowedSubjects = map[string]struct{}{
	"Микробиология": {},
	"Анатомия":      {},
	"Русский Язык":  {},
	"Химия":         {},
	"Биология":      {},
}

// ValidationError rejects client-supplied data; the caller can fix the input
// and retry. Field names the offending payload field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UploadService negotiates upload sessions: one call validates the request,
// resolves the per-user folder and opens a resumable session, returning
// everything the browser needs for the direct byte transfer.
type UploadService interface {
	CreateUploadURL(ctx context.Context, req model.UploadURLRequest) (*model.UploadURLResult, error)
}

// uploadService is a concrete implementation of UploadService.
// Stateless across requests; every call obtains a fresh token.
type uploadService struct {
	tokens      auth.TokenProvider
	store       storage.Storage
	cityFolders map[string]string
	now         func() time.Time
}

// NewUploadService constructs a new UploadService. cityFolders maps
// recognized city keys to their Drive root folder ids.
func NewUploadService(tokens auth.TokenProvider, store storage.Storage, cityFolders map[string]string) UploadService {
	return &uploadService{
		tokens:      tokens,
		store:       store,
		cityFolders: cityFolders,
		now:         time.Now,
	}
}

func (s *uploadService) CreateUploadURL(ctx context.Context, req model.UploadURLRequest) (*model.UploadURLResult, error) {
	// Shape checks first: no network traffic for a request we will reject.
	if req.FIO == "" || req.City == "" || req.FileName == "" {
		return nil, &ValidationError{Field: "payload", Reason: "fio, city and fileName are required"}
	}

	if !naming.ValidIdentity(req.FIO) {
		return nil, &ValidationError{Field: "fio", Reason: "must contain only letters and spaces, at least 3 characters"}
	}
	fio := naming.SanitizeIdentity(req.FIO)

	if _, ok := allowedSubjects[req.Subject]; !ok {
		return nil, &ValidationError{Field: "subject", Reason: "unknown subject"}
	}

	city := strings.ToLower(req.City)
	rootID, ok := s.cityFolders[city]
	if !ok {
		return nil, &ValidationError{Field: "city", Reason: "unknown city"}
	}
	if rootID == "" {
		return nil, &config.MissingError{Name: config.CityEnvVar(city)}
	}

	if !strings.HasPrefix(req.MimeType, "video/") {
		return nil, &ValidationError{Field: "mimeType", Reason: "only video files are allowed"}
	}

	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtain access token: %w", err)
	}

	folderID, err := s.store.ResolveFolder(ctx, token, rootID, fio)
	if err != nil {
		return nil, fmt.Errorf("resolve folder: %w", err)
	}

	now := s.now()
	finalName := naming.ComposeFileName(fio, req.Subject, req.FileName, now)

	uploadURL, err := s.store.OpenUploadSession(ctx, token, storage.SessionRequest{
		FolderID:    folderID,
		FileName:    finalName,
		ContentType: req.MimeType,
		Size:        req.Size,
		Metadata: map[string]string{
			"fio":        fio,
			"subject":    req.Subject,
			"city":       city,
			"uploadedAt": now.UTC().Format(time.RFC3339),
			"source":     provenanceTag,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open upload session: %w", err)
	}

	return &model.UploadURLResult{
		UploadURL:   uploadURL,
		AccessToken: token,
		FIOFolderID: folderID,
		FinalName:   finalName,
	}, nil
}
