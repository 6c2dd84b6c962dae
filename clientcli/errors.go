package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrConfigRequired   = errors.New("config is required")
	ErrInvalidEndpoint  = errors.New("endpoint must be an http or https URL")
	ErrEndpointRequired = errors.New("endpoint is required")
)

// Errors for input validation.
var (
	ErrNoPaths   = errors.New("no paths provided")
	ErrEmptyPath = errors.New("path is required")
	ErrEmptyName = errors.New("site name is required")
	ErrNoSlugs   = errors.New("no slugs provided")
	ErrEmptySlug = errors.New("slug is required")
)
