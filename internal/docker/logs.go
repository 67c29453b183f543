package docker

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/amir20/dtop/internal/core"
)

const (
	// maxLogBatch caps every history batch; it doubles as the "there is
	// probably more" signal when a fetch comes back full.
	maxLogBatch = 1000

	// backfillFallbackWindow seeds the search when the loaded batch spans
	// no measurable time.
	backfillFallbackWindow = 5 * time.Minute

	// backfillMaxWindow bounds the doubling search when the container's
	// creation time is unknown.
	backfillMaxWindow = 30 * 24 * time.Hour
)

// TailLogs fetches the newest history for a container, publishes it as one
// batch, then follows the live stream line by line. The returned func stops
// everything.
func (h *Host) TailLogs(containerID string, created time.Time) func() {
	ctx, cancel := context.WithCancel(h.ctx)
	key := core.ContainerKey{HostID: h.id, ContainerID: containerID}

	go func() {
		entries, err := h.fetchLogs(ctx, containerID, fetchRange{tail: maxLogBatch})
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("log history fetch failed", "host", h.id, "container", containerID, "error", err)
				h.emit(core.LogBatchPrepend{Key: key})
			}
			return
		}
		h.emit(core.LogBatchPrepend{Key: key, Entries: entries, HasMore: len(entries) >= maxLogBatch})

		// Follow from just after the newest line we already have so the
		// seam between history and live stream has no gap.
		since := time.Time{}
		if len(entries) > 0 {
			since = entries[len(entries)-1].Timestamp.Add(time.Nanosecond)
		}
		h.followLogs(ctx, containerID, key, since)
	}()

	return cancel
}

// FetchOlderLogs searches backwards from oldest for the next page of
// history and publishes it as a LogBatchPrepend. The window is sized from
// the density of the already loaded [oldest, newest] batch and doubles
// until enough lines turn up or the container's creation time is reached.
func (h *Host) FetchOlderLogs(containerID string, oldest, newest, created time.Time) {
	key := core.ContainerKey{HostID: h.id, ContainerID: containerID}
	go func() {
		entries, hasMore := backfill(h.ctx, oldest, newest, created, func(ctx context.Context, since, until time.Time) ([]core.LogEntry, error) {
			return h.fetchLogs(ctx, containerID, fetchRange{since: since, until: until})
		})
		if h.ctx.Err() != nil {
			return
		}
		h.emit(core.LogBatchPrepend{Key: key, Entries: entries, HasMore: hasMore})
	}()
}

type fetchFunc func(ctx context.Context, since, until time.Time) ([]core.LogEntry, error)

// backfill implements the window search. Returns the lines found (oldest
// first, at most maxLogBatch keeping the newest) and whether more history
// may remain beyond them.
func backfill(ctx context.Context, oldest, newest, created time.Time, fetch fetchFunc) ([]core.LogEntry, bool) {
	window := time.Duration(float64(newest.Sub(oldest)) * 1.2)
	if window <= 0 {
		window = backfillFallbackWindow
	}

	for {
		since := oldest.Add(-window)
		final := false
		if !created.IsZero() && !since.After(created) {
			since = created
			final = true
		}
		if created.IsZero() && window > backfillMaxWindow {
			final = true
		}

		entries, err := fetch(ctx, since, oldest)
		if err != nil {
			if ctx.Err() != nil {
				return nil, false
			}
			slog.Warn("log backfill fetch failed", "error", err)
			return nil, false
		}

		if final {
			return entries, false
		}
		if len(entries) >= maxLogBatch {
			return entries[len(entries)-maxLogBatch:], true
		}
		window *= 2
	}
}

// fetchRange selects either a tail fetch (newest n lines) or a time range.
type fetchRange struct {
	tail         int
	since, until time.Time
}

// fetchLogs reads one bounded log request fully and returns parsed entries
// sorted by timestamp. Lines at or past until are dropped so pages never
// overlap.
func (h *Host) fetchLogs(ctx context.Context, containerID string, r fetchRange) ([]core.LogEntry, error) {
	opts := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Timestamps: true,
	}
	if r.tail > 0 {
		opts.Tail = strconv.Itoa(r.tail)
	} else {
		opts.Since = r.since.Format(time.RFC3339Nano)
		opts.Until = r.until.Format(time.RFC3339Nano)
	}

	rc, err := h.client.ContainerLogs(ctx, containerID, opts)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var entries []core.LogEntry
	collect := func(line string) {
		ts, msg := parseTimestamp(line)
		if r.tail == 0 && !ts.Before(r.until) {
			return
		}
		entries = append(entries, core.LogEntry{Timestamp: ts, Message: msg})
	}
	if err := demuxLines(ctx, rc, collect); err != nil && ctx.Err() == nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}

// followLogs streams live lines and publishes one LogLine each.
func (h *Host) followLogs(ctx context.Context, containerID string, key core.ContainerKey, since time.Time) {
	opts := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
		Timestamps: true,
	}
	if since.IsZero() {
		opts.Tail = "0"
	} else {
		opts.Since = since.Format(time.RFC3339Nano)
	}

	rc, err := h.client.ContainerLogs(ctx, containerID, opts)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("log follow failed", "host", h.id, "container", containerID, "error", err)
		}
		return
	}
	defer rc.Close()

	// Unblock the demuxer when the view closes; the client does not always
	// propagate cancellation into a hung read.
	go func() {
		<-ctx.Done()
		rc.Close()
	}()

	err = demuxLines(ctx, rc, func(line string) {
		ts, msg := parseTimestamp(line)
		h.emit(core.LogLine{Key: key, Entry: core.LogEntry{Timestamp: ts, Message: msg}})
	})
	if err != nil && ctx.Err() == nil {
		slog.Debug("log follow ended", "host", h.id, "container", containerID, "error", err)
	}
}

// demuxLines untangles docker's stdout/stderr multiplexing and hands each
// text line to fn. Blocks until the stream ends.
func demuxLines(ctx context.Context, logs io.Reader, fn func(line string)) error {
	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()

	go func() {
		_, err := stdcopy.StdCopy(stdoutW, stderrW, logs)
		stdoutW.CloseWithError(err)
		stderrW.CloseWithError(err)
	}()

	lines := make(chan string, 64)
	done := make(chan struct{}, 2)
	scan := func(r io.Reader) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		done <- struct{}{}
	}
	go scan(stdoutR)
	go scan(stderrR)

	finished := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line := <-lines:
			fn(strings.TrimSuffix(line, "\r"))
		case <-done:
			finished++
			if finished == 2 {
				// Drain anything the scanners queued before finishing.
				for {
					select {
					case line := <-lines:
						fn(strings.TrimSuffix(line, "\r"))
					default:
						return nil
					}
				}
			}
		}
	}
}

// parseTimestamp splits a docker timestamped log line into its RFC3339Nano
// prefix and message. Lines without a parsable prefix get the current time.
func parseTimestamp(line string) (time.Time, string) {
	if len(line) > 31 && line[4] == '-' && line[10] == 'T' {
		if idx := strings.IndexByte(line, ' '); idx > 0 {
			if ts, err := time.Parse(time.RFC3339Nano, line[:idx]); err == nil {
				return ts, line[idx+1:]
			}
		}
	}
	return time.Now(), line
}
