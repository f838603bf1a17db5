package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Catalog errors
	ErrNotFound  = fmt.Errorf("not found")
	ErrConflict  = fmt.Errorf("conflict")
	ErrSlugTaken = fmt.Errorf("slug already in use")

	// Storage errors
	ErrUnknownCollection = fmt.Errorf("unknown collection")
	ErrUnknownField      = fmt.Errorf("unknown field")
	ErrStoreClosed       = fmt.Errorf("store is closed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	// Upload errors
	ErrUnsupportedImage = fmt.Errorf("unsupported image type")

	// Site build errors
	ErrBuildLocked = fmt.Errorf("site build already in progress")
)
