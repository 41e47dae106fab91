package fwmetrics

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shirou/gopsutil/process"
)

// ProcessStats samples the runtime's own process via gopsutil — an
// indirect dependency of the teacher (pulled in transitively through
// its simulation engine's monitoring package) promoted here to a direct
// one, since nothing else in this module's domain stack needed CPU/RSS
// sampling before now.
type ProcessStats struct {
	proc   *process.Process
	cpu    prometheus.Gauge
	memRSS prometheus.Gauge
}

// NewProcessStats creates a ProcessStats for the current process and
// registers its gauges against reg.
func NewProcessStats(reg prometheus.Registerer) (*ProcessStats, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	factory := promauto.With(reg)
	return &ProcessStats{
		proc: proc,
		cpu: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "corefw",
			Name:      "process_cpu_percent",
			Help:      "CPU usage percent of the runtime process, last sampled.",
		}),
		memRSS: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "corefw",
			Name:      "process_memory_rss_bytes",
			Help:      "Resident set size of the runtime process, last sampled.",
		}),
	}, nil
}

// Sample updates the CPU and memory gauges from a fresh gopsutil read.
func (p *ProcessStats) Sample() error {
	cpuPct, err := p.proc.CPUPercent()
	if err != nil {
		return err
	}
	mem, err := p.proc.MemoryInfo()
	if err != nil {
		return err
	}
	p.cpu.Set(cpuPct)
	p.memRSS.Set(float64(mem.RSS))
	return nil
}
