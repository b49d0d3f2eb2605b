package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrBackendNotConfigured = fmt.Errorf("supabase client not initialized")
	ErrInvalidConfig        = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed    = fmt.Errorf("authentication failed")
	ErrUnauthorized  = fmt.Errorf("not authorized")
	ErrCodeDispatch  = fmt.Errorf("verification code dispatch failed")
	ErrInvalidCode   = fmt.Errorf("invalid or expired verification code")
	ErrDispatch      = fmt.Errorf("email dispatch failed")
	ErrInvalidState  = fmt.Errorf("invalid login state")
	ErrNoSession     = fmt.Errorf("no active session")
	ErrRefreshFailed = fmt.Errorf("token refresh failed")

	// API and storage errors
	ErrAPIRequest = fmt.Errorf("API request failed")
	ErrNotFound   = fmt.Errorf("not found")
	ErrUpload     = fmt.Errorf("upload failed")
	ErrSync       = fmt.Errorf("remote sync failed")

	// Input validation errors
	ErrValidation      = fmt.Errorf("validation failed")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
