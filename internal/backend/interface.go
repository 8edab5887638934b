// Package backend assembles the storage backend and the optional change
// publisher selected by configuration.
package backend

import (
	"context"

	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// BackendType names a storage implementation.
type BackendType string

const (
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (t BackendType) String() string { return string(t) }

func (t BackendType) IsValid() bool {
	switch t {
	case FileBackend, SQLiteBackend, MemoryBackend:
		return true
	}
	return false
}

// CleanupFunc releases what a factory opened.
type CleanupFunc func() error

// BackendResult is a ready store plus the publisher for change events. A nil
// Publisher means events are disabled.
type BackendResult struct {
	Store     storage.Store
	Publisher services.ChangePublisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}
