package ingest

import (
	"context"

	"ziwei/internal/store"
)

// ProfileStore is the part of store.Store the importer writes to.
type ProfileStore interface {
	EnsureSchema(ctx context.Context) error
	UpsertProfile(ctx context.Context, p store.ProfileInput) error
	GetSourceHashes(ctx context.Context) (map[string]string, error)
	RemoveStaleProfiles(ctx context.Context, currentSourceFiles []string) (int64, error)
}
