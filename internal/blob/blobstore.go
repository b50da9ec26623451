// Package blob is the facade over the snapshot archive backends. Higher
// layers depend on this package only; concrete drivers live under
// internal/infra/blob.
package blob

import (
	"context"

	"tabcore/internal/blob/core"
	fsblob "tabcore/internal/infra/blob/fs"
	memblob "tabcore/internal/infra/blob/memory"
	s3blob "tabcore/internal/infra/blob/s3"
)

// Re-exported contract types so callers need a single import.
type (
	// Store is the blob storage contract (alias of core.Store).
	Store = core.Store
	// Driver identifies a backend implementation.
	Driver = core.Driver
	// Info describes a stored blob.
	Info = core.Info
	// PutOptions carries optional Put parameters.
	PutOptions = core.PutOptions
	// SignedURLOptions holds pre-signed URL options.
	SignedURLOptions = core.SignedURLOptions
)

// Driver identifiers.
const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

// ErrUnsupported mirrors core.ErrUnsupported.
var ErrUnsupported = core.ErrUnsupported

// NewFilesystem returns a filesystem store rooted at root.
func NewFilesystem(root string) (Store, error) { return fsblob.New(root) }

// NewMemory returns an in-memory store.
func NewMemory() Store { return memblob.New() }

// OpenS3FromEnv constructs an S3 store from process environment.
func OpenS3FromEnv(ctx context.Context) (Store, error) { return s3blob.OpenFromEnv(ctx) }
