package model

// Package model contains domain models/data structures shared across layers.
// No business logic here.

// UploadURLRequest is the inbound payload for the upload-URL negotiation.
// FIO is the free-text display name ("фамилия имя отчество") used as the
// per-user folder name after sanitization.
type UploadURLRequest struct {
	FIO      string `json:"fio"`
	City     string `json:"city"`
	Subject  string `json:"subject"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// UploadURLResult is returned to the browser, which then PUTs the file bytes
// directly to UploadURL with AccessToken in the Authorization header.
// Both the token and the session URL expire on the backend's schedule;
// nothing here extends or refreshes them.
type UploadURLResult struct {
	UploadURL   string `json:"uploadUrl"`
	AccessToken string `json:"accessToken"`
	FIOFolderID string `json:"fioFolderId"`
	FinalName   string `json:"finalName"`
}
