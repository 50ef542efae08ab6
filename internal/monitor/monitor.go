// Package monitor samples host resource usage for the admin system page.
package monitor

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Usage is a used/total pair in bytes.
type Usage struct {
	Total uint64  `json:"total"`
	Used  uint64  `json:"used"`
	Ratio float64 `json:"ratio"`
}

// HostStats is one sample of the machine running the server.
type HostStats struct {
	CPUPercent float64 `json:"cpu_percent"`
	Memory     Usage   `json:"memory"`
	Disk       Usage   `json:"disk"`
	Load1      float64 `json:"load1"`
	Load5      float64 `json:"load5"`
	Load15     float64 `json:"load15"`
	Uptime     uint64  `json:"uptime_seconds"`
	SampledAt  int64   `json:"sampled_at"`
}

// SystemStatFetcher holds the gopsutil probes so tests can replace them.
type SystemStatFetcher struct {
	CPUPercent    func(interval time.Duration, percpu bool) ([]float64, error)
	VirtualMemory func() (*mem.VirtualMemoryStat, error)
	DiskUsage     func(path string) (*disk.UsageStat, error)
	LoadAvg       func() (*load.AvgStat, error)
	HostUptime    func() (uint64, error)
}

type Monitor struct {
	fetcher  SystemStatFetcher
	diskPath string
	now      func() time.Time
}

// New returns a monitor measuring the disk that holds diskPath ("/" when empty).
func New(diskPath string) *Monitor {
	if diskPath == "" {
		diskPath = "/"
	}
	return &Monitor{
		fetcher: SystemStatFetcher{
			CPUPercent:    cpu.Percent,
			VirtualMemory: mem.VirtualMemory,
			DiskUsage:     disk.Usage,
			LoadAvg:       load.Avg,
			HostUptime:    host.Uptime,
		},
		diskPath: diskPath,
		now:      time.Now,
	}
}

// SetFetcher sets a custom fetcher for testing.
func (m *Monitor) SetFetcher(fetcher SystemStatFetcher) {
	m.fetcher = fetcher
}

// Collect samples every probe; failing probes leave their fields zero.
func (m *Monitor) Collect() HostStats {
	stat := HostStats{SampledAt: m.now().Unix()}

	if percents, err := m.fetcher.CPUPercent(0, false); err == nil && len(percents) > 0 {
		stat.CPUPercent = percents[0]
	}
	if v, err := m.fetcher.VirtualMemory(); err == nil && v != nil {
		stat.Memory = usage(v.Total, v.Used)
	}
	if d, err := m.fetcher.DiskUsage(m.diskPath); err == nil && d != nil {
		stat.Disk = usage(d.Total, d.Used)
	}
	if l, err := m.fetcher.LoadAvg(); err == nil && l != nil {
		stat.Load1 = l.Load1
		stat.Load5 = l.Load5
		stat.Load15 = l.Load15
	}
	if u, err := m.fetcher.HostUptime(); err == nil {
		stat.Uptime = u
	}
	return stat
}

func usage(total, used uint64) Usage {
	u := Usage{Total: total, Used: used}
	if total > 0 {
		u.Ratio = float64(used) / float64(total)
	}
	return u
}
