package crawlers

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/utils"
)

// MemoryPressure 内存压力等级
type MemoryPressure string

const (
	PressureNormal    MemoryPressure = "normal"
	PressureWarning   MemoryPressure = "warning"
	PressureCritical  MemoryPressure = "critical"
	PressureEmergency MemoryPressure = "emergency"
)

// ResourceMonitorConfig 资源监控配置
type ResourceMonitorConfig struct {
	// BrowserMemory 一个Chrome实例大约需要的内存(字节)
	BrowserMemory uint64

	// CPULoadThreshold CPU负载阈值(%), >=200 表示不检查
	CPULoadThreshold int
}

// MemoryStatus 内存状态
type MemoryStatus struct {
	TotalMemory     uint64
	AvailableMemory uint64
	CPUUsage        float64
	Pressure        MemoryPressure
}

// ResourceMonitor 浏览器启动前的系统资源检查
type ResourceMonitor struct {
	config ResourceMonitorConfig

	// 测试中替换
	virtualMemory func() (*mem.VirtualMemoryStat, error)
	cpuPercent    func(time.Duration, bool) ([]float64, error)
}

// NewResourceMonitor 创建资源监控器
func NewResourceMonitor(config ResourceMonitorConfig) *ResourceMonitor {
	if config.BrowserMemory == 0 {
		config.BrowserMemory = 500 * 1024 * 1024
	}
	if config.CPULoadThreshold == 0 {
		config.CPULoadThreshold = 90
	}
	return &ResourceMonitor{
		config:        config,
		virtualMemory: mem.VirtualMemory,
		cpuPercent:    cpu.Percent,
	}
}

// Snapshot 采样当前内存和CPU
func (rm *ResourceMonitor) Snapshot() (MemoryStatus, error) {
	vm, err := rm.virtualMemory()
	if err != nil {
		return MemoryStatus{}, fmt.Errorf("获取系统内存失败: %w", err)
	}

	status := MemoryStatus{
		TotalMemory:     vm.Total,
		AvailableMemory: vm.Available,
		Pressure:        rm.pressure(vm.Available),
	}

	if rm.config.CPULoadThreshold < 200 {
		if percentages, err := rm.cpuPercent(100*time.Millisecond, false); err == nil && len(percentages) > 0 {
			status.CPUUsage = percentages[0]
		}
	}
	return status, nil
}

// pressure 以浏览器所需内存为基准分级
func (rm *ResourceMonitor) pressure(available uint64) MemoryPressure {
	need := rm.config.BrowserMemory
	switch {
	case available < need/2:
		return PressureEmergency
	case available < need:
		return PressureCritical
	case available < need*2:
		return PressureWarning
	default:
		return PressureNormal
	}
}

// CheckBeforeLaunch 启动浏览器前检查,资源紧张时只记录警告
func (rm *ResourceMonitor) CheckBeforeLaunch() MemoryStatus {
	status, err := rm.Snapshot()
	if err != nil {
		utils.Warnf("%v", err)
		return status
	}

	availableMB := status.AvailableMemory / (1024 * 1024)
	utils.Debugf("系统内存: 总计 %.2f GB, 可用 %d MB, CPU %.1f%%",
		float64(status.TotalMemory)/(1024*1024*1024), availableMB, status.CPUUsage)

	switch status.Pressure {
	case PressureEmergency, PressureCritical:
		utils.Warnf("⚠️  可用内存严重不足(当前%dMB),浏览器可能启动失败或频繁崩溃", availableMB)
	case PressureWarning:
		utils.Warnf("可用内存偏低(当前%dMB)", availableMB)
	}
	if rm.config.CPULoadThreshold < 200 && status.CPUUsage > float64(rm.config.CPULoadThreshold) {
		utils.Warnf("CPU负载过高(当前%.1f%%),页面加载可能超时", status.CPUUsage)
	}
	return status
}
