// Package errs defines common error variables used across the application.
package errs

import "errors"

// Request validation errors.
var (
	// ErrInvalidURL indicates that the URL field in the request is invalid.
	ErrInvalidURL = errors.New("invalid url field")
	// ErrInvalidFormat indicates that the format field in the request is invalid.
	ErrInvalidFormat = errors.New("invalid format field")
)

// Extraction and download errors.
var (
	// ErrExtractionFailed indicates that the extraction collaborator failed.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrDownloadFailed indicates that the download failed.
	ErrDownloadFailed = errors.New("download failed")
	// ErrDownloadCancelled indicates that the download was cancelled.
	ErrDownloadCancelled = errors.New("download cancelled")
)

// Dependency manager errors.
var (
	// ErrBinaryNotFound indicates that the required binary was not found.
	ErrBinaryNotFound = errors.New("binary not found")
	// ErrUnsupportedPlatform indicates that the current platform is not supported.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)
