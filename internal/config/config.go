package config

import (
	"os"
	"strings"
)

// GoogleConfig holds the OAuth2 credentials used to obtain short-lived
// access tokens for the Drive API.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	// TokenURL overrides the Google token endpoint; leave empty in production.
	TokenURL string
}

// DriveConfig holds Google Drive API settings and the per-city root folders.
type DriveConfig struct {
	APIBase     string
	UploadBase  string
	CityFolders map[string]string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost string
	Port    string
	Google  GoogleConfig
	Drive   DriveConfig
}

// cities maps every recognized city key to the environment variable that
// supplies its root folder id on Drive.
var cities = map[string]string{
	"samara":  "GOOGLE_DRIVE_SAMARA_ID",
	"saratov": "GOOGLE_DRIVE_SARATOV_ID",
	"moscow":  "GOOGLE_DRIVE_MOSCOW_ID",
	"spb":     "GOOGLE_DRIVE_SPB_ID",
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
//
// Missing secrets are not fatal here: each consumer reports a MissingError on
// first use so the operator sees exactly which variable is absent.
func Load() *AppConfig {
	cityFolders := make(map[string]string, len(cities))
	for city, envVar := range cities {
		cityFolders[city] = getEnv(envVar, "")
	}

	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),
			TokenURL:     getEnv("GOOGLE_TOKEN_URL", ""),
		},
		Drive: DriveConfig{
			APIBase:     getEnv("GOOGLE_DRIVE_API_BASE", "https://www.googleapis.com/drive/v3"),
			UploadBase:  getEnv("GOOGLE_DRIVE_UPLOAD_API_BASE", "https://www.googleapis.com/upload/drive/v3"),
			CityFolders: cityFolders,
		},
	}
}

// CityEnvVar returns the name of the environment variable that configures the
// root folder id for the given city key, or "" for an unrecognized key.
func CityEnvVar(city string) string {
	return cities[strings.ToLower(city)]
}

// MissingError reports a required configuration value absent from the environment.
type MissingError struct {
	Name string
}

func (e *MissingError) Error() string {
	return "missing required configuration: " + e.Name
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
