// Package storage persists school snapshots to SQLite and reads SQLite tables as dataset sources.
package storage

import (
	"context"

	"github.com/hyperjump/schoolfinder/internal/models"
)

// SnapshotStore defines snapshot persistence operations.
type SnapshotStore interface {
	// SaveSnapshot replaces the stored snapshot with schools.
	SaveSnapshot(ctx context.Context, schools []*models.School) error
	// GetSchool returns the first stored school whose stable id is id.
	GetSchool(ctx context.Context, id string) (*models.School, error)
	CountSchools(ctx context.Context) (int64, error)

	Close() error
}
