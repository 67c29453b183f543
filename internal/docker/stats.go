package docker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"

	"github.com/amir20/dtop/internal/core"
)

// streamStats decodes the daemon's streaming stats for one container and
// publishes a ContainerStat per sample (roughly one per second). Returns
// when the stream ends or the context is cancelled.
func (h *Host) streamStats(ctx context.Context, containerID string) {
	resp, err := h.client.ContainerStats(ctx, containerID, true)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("stats stream failed", "host", h.id, "container", containerID, "error", err)
		}
		return
	}
	defer resp.Body.Close()

	go func() {
		<-ctx.Done()
		resp.Body.Close()
	}()

	key := core.ContainerKey{HostID: h.id, ContainerID: containerID}
	dec := json.NewDecoder(resp.Body)
	var prev *statSample

	for {
		var stats container.StatsResponse
		if err := dec.Decode(&stats); err != nil {
			return
		}

		sample := &statSample{
			at:           time.Now(),
			containerCPU: stats.CPUStats.CPUUsage.TotalUsage,
			systemCPU:    stats.CPUStats.SystemUsage,
		}
		sample.netRx, sample.netTx = sumNetIO(&stats)

		out := core.ContainerStats{
			MemoryPercent: calcMemPercent(&stats),
		}
		if prev != nil {
			out.CPUPercent = calcCPUPercentDelta(prev.containerCPU, sample.containerCPU, prev.systemCPU, sample.systemCPU, stats.CPUStats.OnlineCPUs)
			out.NetworkRx, out.NetworkTx = calcNetRates(prev, sample)
		} else {
			// The first sample carries precpu from the daemon; use it so
			// the very first tick is not a flat zero.
			out.CPUPercent = calcCPUPercentDelta(
				stats.PreCPUStats.CPUUsage.TotalUsage,
				sample.containerCPU,
				stats.PreCPUStats.SystemUsage,
				sample.systemCPU,
				stats.CPUStats.OnlineCPUs,
			)
		}
		prev = sample

		h.emit(core.ContainerStat{Key: key, Stats: out})
	}
}

type statSample struct {
	at           time.Time
	containerCPU uint64
	systemCPU    uint64
	netRx, netTx uint64
}

// calcCPUPercentDelta computes CPU percent from counter deltas, the same
// formula `docker stats` uses.
func calcCPUPercentDelta(prevContainer, curContainer, prevSystem, curSystem uint64, onlineCPUs uint32) float64 {
	if curContainer <= prevContainer || curSystem <= prevSystem {
		return 0
	}
	containerDelta := float64(curContainer - prevContainer)
	systemDelta := float64(curSystem - prevSystem)

	cpus := float64(onlineCPUs)
	if cpus == 0 {
		cpus = 1
	}
	return (containerDelta / systemDelta) * cpus * 100
}

// calcMemPercent computes usage against the limit with the inactive file
// cache subtracted, covering both cgroup v1 and v2 key names.
func calcMemPercent(stats *container.StatsResponse) float64 {
	limit := stats.MemoryStats.Limit
	usage := stats.MemoryStats.Usage

	if v, ok := stats.MemoryStats.Stats["inactive_file"]; ok && v > 0 && usage > v {
		usage -= v
	} else if v, ok := stats.MemoryStats.Stats["total_inactive_file"]; ok && v > 0 && usage > v {
		usage -= v
	}

	if limit == 0 {
		return 0
	}
	return float64(usage) / float64(limit) * 100
}

// sumNetIO totals cumulative rx/tx bytes across all interfaces.
func sumNetIO(stats *container.StatsResponse) (rx, tx uint64) {
	for _, n := range stats.Networks {
		rx += n.RxBytes
		tx += n.TxBytes
	}
	return
}

// calcNetRates turns two cumulative samples into bytes per second.
func calcNetRates(prev, cur *statSample) (rx, tx float64) {
	elapsed := cur.at.Sub(prev.at).Seconds()
	if elapsed <= 0 {
		return 0, 0
	}
	if cur.netRx > prev.netRx {
		rx = float64(cur.netRx-prev.netRx) / elapsed
	}
	if cur.netTx > prev.netTx {
		tx = float64(cur.netTx-prev.netTx) / elapsed
	}
	return
}
