// AngelaMos | 2026
// dto.go

package admin

import (
	"time"

	"github.com/shyam-international/exportsite/internal/core"
)

type DashboardResponse struct {
	Users      UserTotals    `json:"users"`
	Contacts   ContactTotals `json:"contacts"`
	Products   Total         `json:"products"`
	Feedback   Total         `json:"feedback"`
	SystemInfo SystemInfo    `json:"systemInfo"`
}

type UserTotals struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

type ContactTotals struct {
	Total int `json:"total"`
	New   int `json:"new"`
}

type Total struct {
	Total int `json:"total"`
}

type SystemInfo struct {
	Uptime    int64     `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

type SystemStatsResponse struct {
	System   SystemInfo     `json:"system"`
	Users    map[string]int `json:"users"`
	Contacts map[string]int `json:"contacts"`
	Database DatabaseStatus `json:"database"`
	Redis    RedisStatus    `json:"redis"`
	Runtime  RuntimeStats   `json:"runtime"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type RedisStatsResponse struct {
	Pool   *RedisPoolStats       `json:"pool,omitempty"`
	Server *core.RedisServerInfo `json:"server,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"maxOpenConnections"`
	OpenConnections    int    `json:"openConnections"`
	InUse              int    `json:"inUse"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"waitCount"`
	WaitDuration       string `json:"waitDuration"`
	MaxIdleClosed      int64  `json:"maxIdleClosed"`
	MaxIdleTimeClosed  int64  `json:"maxIdleTimeClosed"`
	MaxLifetimeClosed  int64  `json:"maxLifetimeClosed"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"totalConns"`
	IdleConns  uint32 `json:"idleConns"`
	StaleConns uint32 `json:"staleConns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
	NumCPU       int    `json:"numCpu"`
	MemAlloc     uint64 `json:"memAllocBytes"`
	MemSys       uint64 `json:"memSysBytes"`
	HeapInuse    uint64 `json:"heapInuseBytes"`
	NumGC        uint32 `json:"numGc"`
}
