// Package sysinfo exposes host introspection to the assistant: static
// system information, live usage percentages, a bounded file search, and
// allowlisted command execution.
package sysinfo

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// Info describes the static properties of the host.
type Info struct {
	OS              string `json:"os"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	KernelVersion   string `json:"kernel_version"`
	Hostname        string `json:"hostname"`
	Arch            string `json:"arch"`
	CPUModel        string `json:"cpu_model"`
	CPUCores        int    `json:"cpu_cores"`
	TotalMemory     uint64 `json:"total_memory_bytes"`
	UptimeSeconds   uint64 `json:"uptime_seconds"`
}

// Usage reports live resource consumption as percentages.
type Usage struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsed    uint64  `json:"memory_used_bytes"`
	DiskPercent   float64 `json:"disk_percent"`
	DiskFree      uint64  `json:"disk_free_bytes"`
}

// cpuSampleInterval is how long cpu.Percent samples before reporting.
const cpuSampleInterval = 200 * time.Millisecond

// Service answers system introspection queries.
type Service struct {
	logger   *slog.Logger
	diskPath string
}

// NewService creates a Service. diskPath is the mount point whose usage is
// reported (defaults to "/").
func NewService(logger *slog.Logger, diskPath string) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if diskPath == "" {
		diskPath = "/"
	}
	return &Service{logger: logger, diskPath: diskPath}
}

// Info returns static host information.
func (s *Service) Info(ctx context.Context) (Info, error) {
	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		return Info{}, fmt.Errorf("sysinfo: host info: %w", err)
	}

	info := Info{
		OS:              hi.OS,
		Platform:        hi.Platform,
		PlatformVersion: hi.PlatformVersion,
		KernelVersion:   hi.KernelVersion,
		Hostname:        hi.Hostname,
		Arch:            runtime.GOARCH,
		UptimeSeconds:   hi.Uptime,
	}

	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		info.CPUModel = cpus[0].ModelName
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		info.CPUCores = n
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.TotalMemory = vm.Total
	}

	return info, nil
}

// Usage returns live CPU, memory, and disk usage. The CPU figure is sampled
// over a short interval, so this call blocks briefly.
func (s *Service) Usage(ctx context.Context) (Usage, error) {
	var u Usage

	pcts, err := cpu.PercentWithContext(ctx, cpuSampleInterval, false)
	if err != nil {
		return Usage{}, fmt.Errorf("sysinfo: cpu usage: %w", err)
	}
	if len(pcts) > 0 {
		u.CPUPercent = pcts[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Usage{}, fmt.Errorf("sysinfo: memory usage: %w", err)
	}
	u.MemoryPercent = vm.UsedPercent
	u.MemoryUsed = vm.Used

	du, err := disk.UsageWithContext(ctx, s.diskPath)
	if err != nil {
		return Usage{}, fmt.Errorf("sysinfo: disk usage for %s: %w", s.diskPath, err)
	}
	u.DiskPercent = du.UsedPercent
	u.DiskFree = du.Free

	return u, nil
}
