package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"uploadapi/internal/config"
)

const (
	folderMimeType     = "application/vnd.google-apps.folder"
	defaultContentType = "application/octet-stream"
)

// driveStorage implements Storage against the Google Drive v3 API.
// It is safe for concurrent use by multiple goroutines.
type driveStorage struct {
	apiBase    string
	uploadBase string
	client     *http.Client
}

// NewDrive creates a Drive-backed Storage. client carries the transport used
// for all outbound calls (instrumentation lives there); pass nil to use
// http.DefaultClient.
func NewDrive(cfg config.DriveConfig, client *http.Client) Storage {
	if client == nil {
		client = http.DefaultClient
	}
	return &driveStorage{
		apiBase:    strings.TrimSuffix(cfg.APIBase, "/"),
		uploadBase: strings.TrimSuffix(cfg.UploadBase, "/"),
		client:     client,
	}
}

// service builds a Drive client bound to this request's bearer token.
func (d *driveStorage) service(ctx context.Context, token string) (*drive.Service, error) {
	hctx := context.WithValue(ctx, oauth2.HTTPClient, d.client)
	authClient := oauth2.NewClient(hctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	return drive.NewService(ctx,
		option.WithHTTPClient(authClient),
		option.WithEndpoint(d.apiBase+"/"),
	)
}

func (d *driveStorage) ResolveFolder(ctx context.Context, token, parentID, name string) (string, error) {
	svc, err := d.service(ctx, token)
	if err != nil {
		return "", fmt.Errorf("drive client: %w", err)
	}

	query := fmt.Sprintf("name='%s' and mimeType='%s' and '%s' in parents and trashed=false",
		escapeQuery(name), folderMimeType, escapeQuery(parentID))

	list, err := svc.Files.List().
		Q(query).
		Fields("files(id,name)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return "", backendError("folder search", err)
	}

	if id, ok := FirstMatch(list.Files); ok {
		return id, nil
	}

	created, err := svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  []string{parentID},
	}).Fields("id").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", backendError("folder create", err)
	}
	return created.Id, nil
}

// FirstMatch is the tie-break policy for duplicate folder names: the lowest
// index in the backend's result ordering wins. The ordering itself is
// backend-defined; pre-existing duplicates make the pick nondeterministic
// across calls, which is accepted.
func FirstMatch(files []*drive.File) (string, bool) {
	if len(files) == 0 {
		return "", false
	}
	return files[0].Id, true
}

// sessionBody is the JSON payload of the resumable-session initiation. The
// real content type and size travel in X-Upload-Content-* headers so Drive
// can validate the eventual transfer against them.
type sessionBody struct {
	Name          string            `json:"name"`
	Parents       []string          `json:"parents"`
	AppProperties map[string]string `json:"appProperties,omitempty"`
}

// OpenUploadSession performs the uploadType=resumable initiation directly
// over HTTP: the Drive SDK's resumable uploader transfers the bytes itself
// and never surfaces the session URL, which is exactly what the browser
// needs from us.
func (d *driveStorage) OpenUploadSession(ctx context.Context, token string, req SessionRequest) (string, error) {
	body, err := json.Marshal(sessionBody{
		Name:          req.FileName,
		Parents:       []string{req.FolderID},
		AppProperties: req.Metadata,
	})
	if err != nil {
		return "", fmt.Errorf("encode session body: %w", err)
	}

	u := d.uploadBase + "/files?uploadType=resumable&supportsAllDrives=true"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build session request: %w", err)
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json; charset=UTF-8")
	httpReq.Header.Set("X-Upload-Content-Type", contentType)
	httpReq.Header.Set("X-Upload-Content-Length", strconv.FormatInt(req.Size, 10))

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("open upload session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &BackendError{
			Op:         "open upload session",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}

	// Success is "2xx AND a usable Location"; a missing or relative session
	// address is a backend error, not success-with-null.
	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", &BackendError{
			Op:         "open upload session",
			StatusCode: resp.StatusCode,
			Message:    "no Location header in response",
		}
	}
	if parsed, err := url.Parse(loc); err != nil || !parsed.IsAbs() {
		return "", &BackendError{
			Op:         "open upload session",
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("malformed session URL %q", loc),
		}
	}
	return loc, nil
}

// escapeQuery escapes characters that are significant in Drive query
// expressions. Escaping the backslash isn't documented but works.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func backendError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = strings.TrimSpace(gerr.Body)
		}
		return &BackendError{Op: op, StatusCode: gerr.Code, Message: msg}
	}
	return fmt.Errorf("%s: %w", op, err)
}
