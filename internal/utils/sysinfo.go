package utils

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemStatus 系统资源快照
// 用于健康检查接口,反映服务进程所在主机的资源状况
type SystemStatus struct {
	TotalMemory       uint64  `json:"total_memory"`        // 系统总内存(字节)
	UsedMemoryPercent float64 `json:"used_memory_percent"` // 内存使用率(%)
	CPUPercent        float64 `json:"cpu_percent"`         // CPU使用率(%)
	Goroutines        int     `json:"goroutines"`          // 当前goroutine数量
	MemoryPressure    string  `json:"memory_pressure"`     // 内存压力等级
}

// CollectSystemStatus 采集当前系统资源状态
// 采集失败时对应字段归零,不向调用方返回错误
func CollectSystemStatus() SystemStatus {
	status := SystemStatus{
		Goroutines: runtime.NumGoroutine(),
	}

	// 内存状态
	vmStat, err := mem.VirtualMemory()
	if err != nil {
		Warnf("获取系统内存失败: %v", err)
	} else {
		status.TotalMemory = vmStat.Total
		status.UsedMemoryPercent = vmStat.UsedPercent
	}

	// CPU使用率 (100毫秒采样间隔,避免阻塞过久)
	// perCPU=false 返回所有CPU的平均使用率
	percentages, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		Warnf("获取CPU使用率失败: %v", err)
	} else if len(percentages) > 0 {
		status.CPUPercent = percentages[0]
	}

	// 判断内存压力等级
	status.MemoryPressure = classifyMemoryPressure(status.UsedMemoryPercent)

	return status
}

// classifyMemoryPressure 按内存使用率划分压力等级
func classifyMemoryPressure(usedPercent float64) string {
	switch {
	case usedPercent >= 95:
		return "emergency"
	case usedPercent >= 90:
		return "critical"
	case usedPercent >= 80:
		return "warning"
	default:
		return "normal"
	}
}
