package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("profile not found")

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	UpsertProfile(ctx context.Context, p ProfileInput) error
	GetProfile(ctx context.Context, name string) (*Profile, error)
	ListProfiles(ctx context.Context, tag string) ([]ProfileSummary, error)
	DeleteProfile(ctx context.Context, name string) (bool, error)
	SearchProfiles(ctx context.Context, query string) ([]SearchResult, error)

	GetSourceHashes(ctx context.Context) (map[string]string, error)
	RemoveStaleProfiles(ctx context.Context, currentSourceFiles []string) (int64, error)
}
