package docker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/amir20/dtop/internal/core"
)

// fetchRecorder fakes the daemon side of the backfill: it records every
// requested window and serves entries from a fixed history.
type fetchRecorder struct {
	windows []fetchRange
	history []core.LogEntry
}

func (f *fetchRecorder) fetch(_ context.Context, since, until time.Time) ([]core.LogEntry, error) {
	f.windows = append(f.windows, fetchRange{since: since, until: until})
	var out []core.LogEntry
	for _, e := range f.history {
		if !e.Timestamp.Before(since) && e.Timestamp.Before(until) {
			out = append(out, e)
		}
	}
	return out, nil
}

func historyEvery(start time.Time, n int, step time.Duration) []core.LogEntry {
	entries := make([]core.LogEntry, n)
	for i := range entries {
		entries[i] = core.LogEntry{
			Timestamp: start.Add(time.Duration(i) * step),
			Message:   fmt.Sprintf("line %d", i),
		}
	}
	return entries
}

func TestBackfillWindowFromBatchDensity(t *testing.T) {
	// Loaded batch spans 600s, so the first window is 600 * 1.2 = 720s and
	// the next doubles to 1440s.
	newest := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	oldest := newest.Add(-600 * time.Second)
	created := newest.Add(-48 * time.Hour)

	rec := &fetchRecorder{}
	backfill(context.Background(), oldest, newest, created, rec.fetch)

	if len(rec.windows) < 2 {
		t.Fatalf("expected the empty window to double, got %d fetches", len(rec.windows))
	}
	if got := oldest.Sub(rec.windows[0].since); got != 720*time.Second {
		t.Fatalf("first window = %v, want 720s", got)
	}
	if got := oldest.Sub(rec.windows[1].since); got != 1440*time.Second {
		t.Fatalf("second window = %v, want 1440s", got)
	}
	for _, w := range rec.windows {
		if !w.until.Equal(oldest) {
			t.Fatalf("window end = %v, want the oldest bookmark %v", w.until, oldest)
		}
	}
}

func TestBackfillStopsAtCreation(t *testing.T) {
	newest := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	oldest := newest.Add(-10 * time.Minute)
	created := oldest.Add(-2 * time.Minute)

	rec := &fetchRecorder{history: historyEvery(created, 30, time.Second)}
	entries, hasMore := backfill(context.Background(), oldest, newest, created, rec.fetch)

	if hasMore {
		t.Fatal("reaching the creation time means no more history")
	}
	if len(entries) != 30 {
		t.Fatalf("got %d entries, want all 30 before the bookmark", len(entries))
	}
	last := rec.windows[len(rec.windows)-1]
	if !last.since.Equal(created) {
		t.Fatalf("final window start = %v, want clamp to creation %v", last.since, created)
	}
}

func TestBackfillKeepsNewestWhenFull(t *testing.T) {
	newest := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	oldest := newest.Add(-time.Hour)
	created := newest.Add(-10 * 24 * time.Hour)

	// Dense history: one line per second for two hours before the bookmark.
	rec := &fetchRecorder{history: historyEvery(oldest.Add(-2*time.Hour), 7200, time.Second)}
	entries, hasMore := backfill(context.Background(), oldest, newest, created, rec.fetch)

	if !hasMore {
		t.Fatal("a full batch means more history likely remains")
	}
	if len(entries) != maxLogBatch {
		t.Fatalf("got %d entries, want capped at %d", len(entries), maxLogBatch)
	}
	// The cap keeps the newest lines, adjacent to what is already loaded.
	wantNewest := oldest.Add(-time.Second)
	if got := entries[len(entries)-1].Timestamp; !got.Equal(wantNewest) {
		t.Fatalf("newest kept entry = %v, want %v", got, wantNewest)
	}
}

func TestBackfillCreationClampWinsOverFullBatch(t *testing.T) {
	// Creation sits inside the very first window, so the fetch is final even
	// though the window holds far more than a full batch. A final fetch
	// forwards everything it found and reports the history exhausted.
	newest := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	oldest := newest.Add(-600 * time.Second)
	created := oldest.Add(-300 * time.Second)

	rec := &fetchRecorder{history: historyEvery(created, 3000, 100*time.Millisecond)}
	entries, hasMore := backfill(context.Background(), oldest, newest, created, rec.fetch)

	if hasMore {
		t.Fatalf("final fetch reported has_more=true with %d entries", len(entries))
	}
	if len(entries) != 3000 {
		t.Fatalf("got %d entries, want all 3000 back to creation", len(entries))
	}
	if len(rec.windows) != 1 {
		t.Fatalf("got %d fetches, want the clamped window to be the only one", len(rec.windows))
	}
}

func TestBackfillFallbackWindow(t *testing.T) {
	// A single-line batch has zero span; the seed window falls back to 5m.
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	created := ts.Add(-time.Hour)

	rec := &fetchRecorder{}
	backfill(context.Background(), ts, ts, created, rec.fetch)

	if got := ts.Sub(rec.windows[0].since); got != backfillFallbackWindow {
		t.Fatalf("seed window = %v, want %v", got, backfillFallbackWindow)
	}
}

func TestBackfillUnknownCreationBounded(t *testing.T) {
	newest := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	oldest := newest.Add(-time.Minute)

	rec := &fetchRecorder{}
	_, hasMore := backfill(context.Background(), oldest, newest, time.Time{}, rec.fetch)

	if hasMore {
		t.Fatal("an exhausted bounded search reports no more history")
	}
	last := rec.windows[len(rec.windows)-1]
	if oldest.Sub(last.since) <= backfillMaxWindow {
		t.Fatalf("search gave up at %v, want it to cross the %v bound first", oldest.Sub(last.since), backfillMaxWindow)
	}
}

func TestParseTimestamp(t *testing.T) {
	ts, msg := parseTimestamp("2026-03-01T12:00:00.123456789Z hello world")
	want := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("ts = %v, want %v", ts, want)
	}
	if msg != "hello world" {
		t.Fatalf("msg = %q, want %q", msg, "hello world")
	}

	before := time.Now()
	ts, msg = parseTimestamp("no timestamp here")
	if ts.Before(before) {
		t.Fatal("untimestamped lines should get the current time")
	}
	if msg != "no timestamp here" {
		t.Fatalf("msg = %q, want the whole line", msg)
	}
}
