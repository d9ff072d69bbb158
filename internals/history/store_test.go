package history

import (
	"context"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordListRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := Record{
		TaskID:       "t1",
		Title:        "Episode 1",
		SourceType:   "url",
		SRTURL:       "/artifacts/t1/result.srt",
		MarkdownURL:  "/artifacts/t1/result.md",
		Duration:     120.5,
		SegmentCount: 42,
		CreatedAt:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	newer := Record{
		TaskID:    "t2",
		Title:     "Episode 2",
		CreatedAt: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.Record(ctx, older); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, newer); err != nil {
		t.Fatalf("Record: %v", err)
	}

	records, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].TaskID != "t2" {
		t.Fatalf("expected newest first, got %s", records[0].TaskID)
	}

	got := records[1]
	if got.Title != "Episode 1" || got.SourceType != "url" ||
		got.Duration != 120.5 || got.SegmentCount != 42 {
		t.Fatalf("record fields lost in round trip: %+v", got)
	}
	if !got.CreatedAt.Equal(older.CreatedAt) {
		t.Fatalf("created_at mangled: %v", got.CreatedAt)
	}
}

func TestListOrdersMixedOffsetTimestamps(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// 23:00+10:00 is 13:00 UTC, one hour before the second entry. Raw
	// RFC3339 strings would sort it after.
	zone := time.FixedZone("UTC+10", 10*3600)
	older := Record{TaskID: "t-old", CreatedAt: time.Date(2026, 1, 1, 23, 0, 0, 0, zone)}
	newer := Record{TaskID: "t-new", CreatedAt: time.Date(2026, 1, 1, 14, 0, 0, 0, time.UTC)}
	if err := store.Record(ctx, older); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, newer); err != nil {
		t.Fatalf("Record: %v", err)
	}

	records, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 || records[0].TaskID != "t-new" {
		t.Fatalf("expected t-new first, got %+v", records)
	}
	if !records[1].CreatedAt.Equal(older.CreatedAt) {
		t.Fatalf("instant changed by normalization: %v", records[1].CreatedAt)
	}
}

func TestRecordRequiresTaskID(t *testing.T) {
	store := openTestStore(t)
	if err := store.Record(context.Background(), Record{Title: "nameless"}); err == nil {
		t.Fatalf("expected error for missing task id")
	}
}

func TestRecordReplacesExistingEntry(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, Record{TaskID: "t1", Title: "draft"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, Record{TaskID: "t1", Title: "final"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	records, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected replacement, got %d records", len(records))
	}
	if records[0].Title != "final" {
		t.Fatalf("expected updated title, got %q", records[0].Title)
	}
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, Record{TaskID: "t1"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Delete(ctx, "t1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	records, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty history, got %d records", len(records))
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if err := store.Record(context.Background(), Record{TaskID: "t1"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	store.Close()

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer reopened.Close()

	records, err := reopened.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected data to survive reopen, got %d records", len(records))
	}
}
