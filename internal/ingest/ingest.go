// Package ingest imports profile markdown files into the profile store.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"ziwei/internal/config"
	"ziwei/internal/metrics"
	"ziwei/internal/parser"
	"ziwei/internal/profile"
)

type Result struct {
	ProfilesUpserted int
	ProfilesRemoved  int
	FilesSkipped     int
	Errors           []error
}

type Options struct {
	// Full re-imports every file, ignoring stored hashes.
	Full    bool
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

func Run(ctx context.Context, cfg *config.ProjectConfig, db ProfileStore, options Options) (*Result, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	var existingHashes map[string]string
	if !options.Full {
		var err error
		existingHashes, err = db.GetSourceHashes(ctx)
		if err != nil {
			return nil, fmt.Errorf("get source hashes: %w", err)
		}
	}

	files, err := walkMarkdownFiles(cfg.Profiles.Paths, cfg.Profiles.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walking profile files: %w", err)
	}

	result := &Result{}
	skip := func(path, reason string) {
		result.FilesSkipped++
		options.Metrics.ObserveImport("skipped")
		logger.Debug("skipping file", zap.String("path", path), zap.String("reason", reason))
	}
	fail := func(err error) {
		result.Errors = append(result.Errors, err)
		options.Metrics.ObserveImport("error")
		logger.Warn("import failed", zap.Error(err))
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hash, err := computeHash(path)
		if err != nil {
			fail(fmt.Errorf("hashing %s: %w", path, err))
			continue
		}
		if existing, ok := existingHashes[path]; ok && existing == hash {
			skip(path, "unchanged")
			continue
		}

		doc, err := parser.ParseFile(path)
		if err != nil {
			if errors.Is(err, parser.ErrNoFrontmatter) || errors.Is(err, parser.ErrMissingType) {
				skip(path, "no profile frontmatter")
				continue
			}
			fail(fmt.Errorf("parsing %s: %w", path, err))
			continue
		}
		if doc.Kind != parser.KindProfile {
			skip(path, "type "+doc.Kind)
			continue
		}

		input, err := profile.FromDocument(doc)
		if err != nil {
			fail(fmt.Errorf("reading %s: %w", path, err))
			continue
		}
		input.SourceHash = hash

		if err := db.UpsertProfile(ctx, input); err != nil {
			fail(fmt.Errorf("upserting %s: %w", path, err))
			continue
		}
		result.ProfilesUpserted++
		options.Metrics.ObserveImport("upserted")
		logger.Debug("imported profile", zap.String("name", input.Name), zap.String("path", path))
	}

	removed, err := db.RemoveStaleProfiles(ctx, files)
	if err != nil {
		fail(fmt.Errorf("removing stale profiles: %w", err))
	} else {
		result.ProfilesRemoved = int(removed)
	}

	logger.Info("import complete",
		zap.Int("upserted", result.ProfilesUpserted),
		zap.Int("removed", result.ProfilesRemoved),
		zap.Int("skipped", result.FilesSkipped),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func walkMarkdownFiles(roots []string, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if isExcluded(path, excluded) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

func computeHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
