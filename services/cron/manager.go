package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/services"
	"github.com/sahilchouksey/scholarhub/utils/logger"
	"gorm.io/gorm"
)

const (
	statusRunning   = "running"
	statusCompleted = "completed"
	statusFailed    = "failed"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron  *cron.Cron
	db    *gorm.DB
	admin *services.AdminService
	log   *logger.Logger
}

// NewCronManager creates a new cron manager. admin may be nil, in which case
// the stats warm-up job is not scheduled.
func NewCronManager(db *gorm.DB, admin *services.AdminService, log *logger.Logger) *CronManager {
	if log == nil {
		log = logger.Nop()
	}
	return &CronManager{
		cron:  cron.New(cron.WithSeconds()),
		db:    db,
		admin: admin,
		log:   log.With("component", "cron"),
	}
}

// Start registers the jobs and starts the scheduler
func (m *CronManager) Start() error {
	m.log.Info("starting cron jobs")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()
	m.log.Info("cron jobs started", "jobs", len(m.cron.Entries()))
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (m *CronManager) Stop() {
	m.log.Info("stopping cron jobs")
	<-m.cron.Stop().Done()
	m.log.Info("cron jobs stopped")
}

type job struct {
	spec    string
	name    string
	timeout time.Duration
	fn      func(context.Context) (string, error)
}

func (m *CronManager) registerJobs() error {
	jobs := []job{
		// Hourly: drop expired blacklist rows
		{"0 0 * * * *", "cleanup_revoked_tokens", 5 * time.Minute, m.CleanupRevokedTokens},
		// Daily at 2 AM: drafts behind long-rejected uploads and old job logs
		{"0 0 2 * * *", "cleanup_old_data", 10 * time.Minute, m.CleanupOldData},
	}
	if m.admin != nil {
		// Every 30s, matching the stats cache TTL
		jobs = append(jobs, job{"*/30 * * * * *", "warm_admin_stats", 20 * time.Second, m.WarmAdminStats})
	}

	for _, j := range jobs {
		if _, err := m.cron.AddFunc(j.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
			defer cancel()
			m.run(ctx, j.name, j.fn)
		}); err != nil {
			return err
		}
	}

	m.log.Info("all cron jobs registered")
	return nil
}

// run executes fn and records its outcome in cron_job_logs
func (m *CronManager) run(ctx context.Context, jobName string, fn func(context.Context) (string, error)) {
	started := time.Now()
	entry := model.CronJobLog{
		JobName:   jobName,
		Status:    statusRunning,
		StartedAt: started,
	}
	if err := m.db.WithContext(ctx).Create(&entry).Error; err != nil {
		m.log.Warn("failed to record cron job start", "job", jobName, "error", err)
	}

	message, err := fn(ctx)
	finished := time.Now()

	updates := map[string]interface{}{
		"completed_at": finished,
		"duration_ms":  finished.Sub(started).Milliseconds(),
	}
	if err != nil {
		m.log.Error("cron job failed", "job", jobName, "error", err)
		updates["status"] = statusFailed
		updates["error_msg"] = err.Error()
	} else {
		m.log.Info("cron job completed", "job", jobName, "message", message)
		updates["status"] = statusCompleted
		updates["message"] = message
	}

	if entry.ID != 0 {
		if dbErr := m.db.Model(&model.CronJobLog{}).Where("id = ?", entry.ID).Updates(updates).Error; dbErr != nil {
			m.log.Warn("failed to record cron job result", "job", jobName, "error", dbErr)
		}
	}
}
