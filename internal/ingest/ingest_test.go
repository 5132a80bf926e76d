package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"ziwei/internal/config"
	"ziwei/internal/store"
	"ziwei/internal/store/sqlite"
)

type mockStore struct {
	profiles     []store.ProfileInput
	removeCalls  [][]string
	ensureCalled bool
	failUpsert   bool
	hashes       map[string]string
}

func (m *mockStore) EnsureSchema(ctx context.Context) error {
	m.ensureCalled = true
	return nil
}

func (m *mockStore) UpsertProfile(ctx context.Context, p store.ProfileInput) error {
	if m.failUpsert && p.Name == "Lin Mei" {
		return errors.New("forced error")
	}
	m.profiles = append(m.profiles, p)
	return nil
}

func (m *mockStore) GetSourceHashes(ctx context.Context) (map[string]string, error) {
	if m.hashes == nil {
		return map[string]string{}, nil
	}
	return m.hashes, nil
}

func (m *mockStore) RemoveStaleProfiles(ctx context.Context, currentSourceFiles []string) (int64, error) {
	m.removeCalls = append(m.removeCalls, currentSourceFiles)
	return 0, nil
}

func testProjectConfig(t *testing.T) *config.ProjectConfig {
	t.Helper()
	return &config.ProjectConfig{
		Project:  "test",
		Version:  1,
		Database: config.DatabaseConfig{DSN: "sqlite://:memory:"},
		Profiles: config.ProfilesConfig{
			Paths:   []string{filepath.Join("testdata", "people")},
			Exclude: []string{filepath.Join("testdata", "people", "archive")},
		},
	}
}

func TestRun_BasicImport(t *testing.T) {
	db := &mockStore{}

	result, err := Run(context.Background(), testProjectConfig(t), db, Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !db.ensureCalled {
		t.Fatalf("expected ensure schema")
	}
	if result.ProfilesUpserted != 2 || len(db.profiles) != 2 {
		t.Fatalf("expected 2 profiles upserted, got %d", result.ProfilesUpserted)
	}
	if result.FilesSkipped != 2 {
		t.Fatalf("expected meaning file and plain note skipped, got %d", result.FilesSkipped)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected the bad gender file to fail, got %v", result.Errors)
	}

	for _, p := range db.profiles {
		if p.SourceHash == "" || p.SourceFile == "" {
			t.Fatalf("expected source file and hash on %s", p.Name)
		}
		if p.Name == "Archived" {
			t.Fatalf("expected excluded directory to be skipped")
		}
	}
}

func TestRun_ReadsBirthFields(t *testing.T) {
	db := &mockStore{}
	if _, err := Run(context.Background(), testProjectConfig(t), db, Options{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	var wang *store.ProfileInput
	for i := range db.profiles {
		if db.profiles[i].Name == "Wang Bo" {
			wang = &db.profiles[i]
		}
	}
	if wang == nil {
		t.Fatalf("expected Wang Bo to be imported")
	}
	want := store.Birth{Calendar: store.CalendarLunar, Year: 2023, Month: 2, Day: 1, LeapMonth: true, HourBranch: 4, Gender: "female"}
	if wang.Birth != want {
		t.Fatalf("expected %+v, got %+v", want, wang.Birth)
	}
}

func TestRun_ContinuesOnError(t *testing.T) {
	db := &mockStore{failUpsert: true}

	result, err := Run(context.Background(), testProjectConfig(t), db, Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %v", result.Errors)
	}
	if result.ProfilesUpserted != 1 {
		t.Fatalf("expected the other profile to import, got %d", result.ProfilesUpserted)
	}
}

func TestRun_RemoveStaleProfiles(t *testing.T) {
	db := &mockStore{}

	if _, err := Run(context.Background(), testProjectConfig(t), db, Options{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(db.removeCalls) != 1 {
		t.Fatalf("expected one remove stale call")
	}
	if len(db.removeCalls[0]) != 5 {
		t.Fatalf("expected every walked markdown file, got %v", db.removeCalls[0])
	}
}

func TestRun_IncrementalSkip(t *testing.T) {
	path := filepath.Join("testdata", "people", "lin_mei.md")
	hash, err := computeHash(path)
	if err != nil {
		t.Fatalf("compute hash: %v", err)
	}

	t.Run("unchanged file skipped", func(t *testing.T) {
		db := &mockStore{hashes: map[string]string{path: hash}}
		result, err := Run(context.Background(), testProjectConfig(t), db, Options{})
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		for _, p := range db.profiles {
			if p.Name == "Lin Mei" {
				t.Fatalf("expected Lin Mei to be skipped")
			}
		}
		if result.FilesSkipped != 3 {
			t.Fatalf("expected 3 skipped, got %d", result.FilesSkipped)
		}
	})

	t.Run("full import ignores hashes", func(t *testing.T) {
		db := &mockStore{hashes: map[string]string{path: hash}}
		if _, err := Run(context.Background(), testProjectConfig(t), db, Options{Full: true}); err != nil {
			t.Fatalf("run: %v", err)
		}
		found := false
		for _, p := range db.profiles {
			if p.Name == "Lin Mei" {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected Lin Mei to be imported in full mode")
		}
	})
}

func TestRun_LogsFailures(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	if _, err := Run(context.Background(), testProjectConfig(t), &mockStore{}, Options{Logger: zap.New(core)}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if n := logs.FilterMessage("import failed").Len(); n != 1 {
		t.Fatalf("expected 1 failure log, got %d", n)
	}
	if n := logs.FilterMessage("import complete").Len(); n != 1 {
		t.Fatalf("expected a summary log, got %d", n)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, testProjectConfig(t), &mockStore{}, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRun_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.New(ctx, "sqlite://:memory:")
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer db.Close(ctx)

	cfg := testProjectConfig(t)
	if _, err := Run(ctx, cfg, db, Options{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	second, err := Run(ctx, cfg, db, Options{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.ProfilesUpserted != 0 {
		t.Fatalf("expected second run to skip unchanged files, upserted %d", second.ProfilesUpserted)
	}

	p, err := db.GetProfile(ctx, "lin mei")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.Notes != "Born just after midnight in Tainan." {
		t.Fatalf("unexpected notes %q", p.Notes)
	}
}

func TestIsExcluded(t *testing.T) {
	excludes := []string{filepath.Join("a", "b")}
	cases := []struct {
		path string
		want bool
	}{
		{filepath.Join("a", "b"), true},
		{filepath.Join("a", "b", "c.md"), true},
		{filepath.Join("a", "bc.md"), false},
		{"a", false},
	}
	for _, tc := range cases {
		if got := isExcluded(tc.path, excludes); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.path, tc.want, got)
		}
	}
}
