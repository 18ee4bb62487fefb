package services

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"classquest_go/config"
	"classquest_go/database"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusCritical = "critical"

	depUp       = "up"
	depDown     = "down"
	depDisabled = "disabled"
)

// HealthService checks the database and Redis and assembles the report served
// by the health endpoint. MySQL down is critical; Redis down only degrades
// when the notification queue depends on it.
type HealthService struct {
	serviceName string
	version     string
	startTime   time.Time
	timeout     time.Duration
}

type HealthReport struct {
	Status        string             `json:"status"`
	Service       string             `json:"service"`
	Version       string             `json:"version"`
	Environment   string             `json:"environment"`
	Time          time.Time          `json:"time"`
	UptimeSeconds float64            `json:"uptime_seconds"`
	UptimeHuman   string             `json:"uptime_human"`
	Dependencies  []DependencyStatus `json:"dependencies"`
	Goroutines    int                `json:"goroutines"`
	Memory        MemoryMetrics      `json:"memory"`
	Database      *DatabaseStats     `json:"database,omitempty"`
	GoVersion     string             `json:"go_version"`
}

type DependencyStatus struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type MemoryMetrics struct {
	AllocBytes     uint64 `json:"alloc_bytes"`
	SysBytes       uint64 `json:"sys_bytes"`
	HeapAllocBytes uint64 `json:"heap_alloc_bytes"`
	HeapObjects    uint64 `json:"heap_objects"`
}

type DatabaseStats struct {
	OpenConnections    int   `json:"open_connections"`
	InUse              int   `json:"in_use"`
	Idle               int   `json:"idle"`
	WaitCount          int64 `json:"wait_count"`
	WaitDurationMs     int64 `json:"wait_duration_ms"`
	MaxOpenConnections int   `json:"max_open_connections"`
}

func NewHealthService(serviceName, version string) *HealthService {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = "ClassQuest API"
	}
	if strings.TrimSpace(version) == "" {
		version = "1.0.0"
	}
	return &HealthService{
		serviceName: serviceName,
		version:     version,
		startTime:   time.Now(),
		timeout:     1500 * time.Millisecond,
	}
}

// GetHealthReport collects the current health information.
func (s *HealthService) GetHealthReport() HealthReport {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	report := HealthReport{
		Status:      statusOK,
		Service:     s.serviceName,
		Version:     s.version,
		Environment: currentEnvironment(),
		Time:        time.Now().UTC(),
		Goroutines:  runtime.NumGoroutine(),
		GoVersion:   runtime.Version(),
	}

	uptime := time.Since(s.startTime)
	if uptime < 0 {
		uptime = 0
	}
	report.UptimeSeconds = uptime.Seconds()
	report.UptimeHuman = humanizeDuration(uptime)

	dbDep, dbStats, dbStatus := s.checkDatabase(ctx)
	redisDep, redisStatus := s.checkRedis(ctx)
	report.Dependencies = []DependencyStatus{dbDep, redisDep}
	report.Database = dbStats
	report.Status = combineStatus(combineStatus(report.Status, dbStatus), redisStatus)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	report.Memory = MemoryMetrics{
		AllocBytes:     mem.Alloc,
		SysBytes:       mem.Sys,
		HeapAllocBytes: mem.HeapAlloc,
		HeapObjects:    mem.HeapObjects,
	}

	return report
}

// HTTPStatusForOverall maps a health status to an HTTP status code.
func (s *HealthService) HTTPStatusForOverall(status string) int {
	if status == statusCritical {
		return 503
	}
	return 200
}

func (s *HealthService) checkDatabase(ctx context.Context) (DependencyStatus, *DatabaseStats, string) {
	dep := DependencyStatus{Name: "mysql"}

	if database.DB == nil {
		dep.Status = depDown
		dep.Error = "database connection not initialised"
		return dep, nil, statusCritical
	}

	sqlDB, err := database.DB.DB()
	if err != nil {
		dep.Status = depDown
		dep.Error = fmt.Sprintf("sql DB handle error: %v", err)
		return dep, nil, statusCritical
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	start := time.Now()
	err = sqlDB.PingContext(pingCtx)
	cancel()
	dep.LatencyMs = time.Since(start).Milliseconds()

	if err != nil {
		dep.Status = depDown
		dep.Error = err.Error()
		return dep, nil, statusCritical
	}

	dep.Status = depUp
	stats := sqlDB.Stats()
	return dep, &DatabaseStats{
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDurationMs:     stats.WaitDuration.Milliseconds(),
		MaxOpenConnections: stats.MaxOpenConnections,
	}, statusOK
}

func (s *HealthService) checkRedis(ctx context.Context) (DependencyStatus, string) {
	dep := DependencyStatus{Name: "redis"}
	required := config.AppConfig != nil && config.AppConfig.UseRedisNotifications

	client := database.GetRedisClient()
	if client == nil {
		if required {
			dep.Status = depDown
			dep.Error = "redis client not initialised"
			return dep, statusDegraded
		}
		dep.Status = depDisabled
		return dep, statusOK
	}

	pingCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	start := time.Now()
	err := client.Ping(pingCtx).Err()
	cancel()
	dep.LatencyMs = time.Since(start).Milliseconds()

	if err != nil {
		dep.Status = depDown
		dep.Error = err.Error()
		if required {
			return dep, statusDegraded
		}
		return dep, statusOK
	}

	dep.Status = depUp
	return dep, statusOK
}

func currentEnvironment() string {
	if config.AppConfig == nil {
		return "unknown"
	}
	env := strings.TrimSpace(config.AppConfig.AppEnv)
	if env == "" {
		return "unknown"
	}
	return env
}

func combineStatus(current, candidate string) string {
	order := map[string]int{
		statusOK:       0,
		statusDegraded: 1,
		statusCritical: 2,
	}

	if _, ok := order[current]; !ok {
		current = statusOK
	}
	if v, ok := order[candidate]; ok && v > order[current] {
		return candidate
	}
	return current
}

func humanizeDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}

	d = d.Round(time.Second)
	days := d / (24 * time.Hour)
	d %= 24 * time.Hour
	hours := d / time.Hour
	d %= time.Hour
	minutes := d / time.Minute
	seconds := d % time.Minute / time.Second

	parts := []string{}
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, " ")
}
