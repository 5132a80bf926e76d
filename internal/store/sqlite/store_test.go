package sqlite

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"ziwei/internal/store"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()
	c, err := New(ctx, "sqlite://:memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close(ctx) })
	if err := c.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return c
}

func sampleProfile(name, source string) store.ProfileInput {
	return store.ProfileInput{
		Name: name,
		Birth: store.Birth{
			Calendar:   store.CalendarSolar,
			Year:       1990,
			Month:      1,
			Day:        27,
			HourBranch: 0,
			Gender:     "male",
		},
		Tags:       []string{"family"},
		Notes:      "Born just after midnight in Tainan.",
		SourceFile: source,
		SourceHash: "hash-" + name,
	}
}

func TestProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	if err := c.EnsureSchema(ctx); err != nil {
		t.Fatalf("expected EnsureSchema to be idempotent, got %v", err)
	}

	input := sampleProfile("Lin Mei", "people/lin.md")
	input.Birth.Calendar = store.CalendarLunar
	input.Birth.LeapMonth = true
	if err := c.UpsertProfile(ctx, input); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}

	got, err := c.GetProfile(ctx, "  lin mei ")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	want := &store.Profile{
		Name:       input.Name,
		Birth:      input.Birth,
		Tags:       input.Tags,
		Notes:      input.Notes,
		SourceFile: input.SourceFile,
		SourceHash: input.SourceHash,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	input.Birth.Day = 28
	input.Tags = nil
	if err := c.UpsertProfile(ctx, input); err != nil {
		t.Fatalf("UpsertProfile update: %v", err)
	}
	got, err = c.GetProfile(ctx, "Lin Mei")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.Birth.Day != 28 || len(got.Tags) != 0 {
		t.Fatalf("expected update to replace fields, got %+v", got)
	}

	if _, err := c.GetProfile(ctx, "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	for _, p := range []store.ProfileInput{
		sampleProfile("Zhang Wei", ""),
		sampleProfile("An Li", ""),
	} {
		if err := c.UpsertProfile(ctx, p); err != nil {
			t.Fatalf("UpsertProfile: %v", err)
		}
	}
	client := sampleProfile("Client Chen", "")
	client.Tags = []string{"Client"}
	if err := c.UpsertProfile(ctx, client); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}

	all, err := c.ListProfiles(ctx, "")
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	var names []string
	for _, s := range all {
		names = append(names, s.Name)
	}
	if !reflect.DeepEqual(names, []string{"An Li", "Client Chen", "Zhang Wei"}) {
		t.Fatalf("unexpected order %v", names)
	}

	clients, err := c.ListProfiles(ctx, "client")
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(clients) != 1 || clients[0].Name != "Client Chen" {
		t.Fatalf("expected tag filter to match case-insensitively, got %+v", clients)
	}

	deleted, err := c.DeleteProfile(ctx, "zhang wei")
	if err != nil || !deleted {
		t.Fatalf("expected delete, got %v %v", deleted, err)
	}
	deleted, err = c.DeleteProfile(ctx, "zhang wei")
	if err != nil || deleted {
		t.Fatalf("expected second delete to report false, got %v %v", deleted, err)
	}
}

func TestSourceHashesAndStaleRemoval(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	for _, p := range []store.ProfileInput{
		sampleProfile("A", "people/a.md"),
		sampleProfile("B", "people/b.md"),
		sampleProfile("Manual", ""),
	} {
		if err := c.UpsertProfile(ctx, p); err != nil {
			t.Fatalf("UpsertProfile: %v", err)
		}
	}

	hashes, err := c.GetSourceHashes(ctx)
	if err != nil {
		t.Fatalf("GetSourceHashes: %v", err)
	}
	if len(hashes) != 2 || hashes["people/a.md"] != "hash-A" {
		t.Fatalf("unexpected hashes %v", hashes)
	}

	removed, err := c.RemoveStaleProfiles(ctx, []string{"people/a.md"})
	if err != nil {
		t.Fatalf("RemoveStaleProfiles: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	all, err := c.ListProfiles(ctx, "")
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	var names []string
	for _, s := range all {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	if !reflect.DeepEqual(names, []string{"A", "Manual"}) {
		t.Fatalf("expected manual profile to survive, got %v", names)
	}

	if removed, err := c.RemoveStaleProfiles(ctx, nil); err != nil || removed != 0 {
		t.Fatalf("expected empty file list to remove nothing, got %d %v", removed, err)
	}
}

func TestSearchProfiles(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	a := sampleProfile("Lin Mei", "")
	b := sampleProfile("Wang Bo", "")
	b.Notes = "Born at dawn in Kaohsiung."
	for _, p := range []store.ProfileInput{a, b} {
		if err := c.UpsertProfile(ctx, p); err != nil {
			t.Fatalf("UpsertProfile: %v", err)
		}
	}

	results, err := c.SearchProfiles(ctx, "tainan")
	if err != nil {
		t.Fatalf("SearchProfiles: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Lin Mei" {
		t.Fatalf("expected Lin Mei, got %+v", results)
	}

	// Updating notes must refresh the index.
	b.Notes = "Moved to Tainan later."
	if err := c.UpsertProfile(ctx, b); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
	results, err = c.SearchProfiles(ctx, "tainan -midnight")
	if err != nil {
		t.Fatalf("SearchProfiles: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Wang Bo" {
		t.Fatalf("expected Wang Bo, got %+v", results)
	}

	if _, err := c.SearchProfiles(ctx, "  "); err == nil {
		t.Fatalf("expected error for empty query")
	}
}
