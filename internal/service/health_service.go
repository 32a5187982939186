package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	statusUp        = "up"
	statusDown      = "down"
)

// Pinger is anything that can prove the store answers queries.
type Pinger interface {
	Ping(ctx context.Context) error
}

type DatabaseCheck struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"responseTime"`
	Message      string `json:"message"`
}

type APICheck struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"responseTime"`
}

type HealthReport struct {
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Checks    struct {
		Database DatabaseCheck `json:"database"`
		API      APICheck      `json:"api"`
	} `json:"checks"`
}

func (r *HealthReport) Healthy() bool {
	return r.Status == StatusHealthy
}

type HealthService interface {
	Check(ctx context.Context) *HealthReport
}

type healthService struct {
	db      Pinger
	timeout time.Duration
	debug   bool
	log     *zap.Logger
}

func NewHealthService(db Pinger, timeout time.Duration, debug bool, log *zap.Logger) HealthService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &healthService{db: db, timeout: timeout, debug: debug, log: log}
}

// Check pings the store; response times are in milliseconds.
func (s *healthService) Check(ctx context.Context) *HealthReport {
	start := time.Now()
	report := &HealthReport{Timestamp: start.UTC()}

	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	dbStart := time.Now()
	if err := s.db.Ping(pingCtx); err != nil {
		s.log.Warn("health check: database down", zap.Error(err))
		message := "Database connection failed"
		if s.debug {
			message = err.Error()
		}
		report.Checks.Database = DatabaseCheck{Status: statusDown, Message: message}
	} else {
		report.Checks.Database = DatabaseCheck{
			Status:       statusUp,
			ResponseTime: time.Since(dbStart).Milliseconds(),
			Message:      "Database connection successful",
		}
	}

	report.Checks.API = APICheck{Status: statusUp, ResponseTime: time.Since(start).Milliseconds()}

	report.Status = StatusHealthy
	if report.Checks.Database.Status != statusUp || report.Checks.API.Status != statusUp {
		report.Status = StatusUnhealthy
	}
	return report
}
