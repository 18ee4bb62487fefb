package services

import (
	"time"

	"classquest_go/services/notifications"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReportScheduler runs the recurring report jobs: a mid-week nudge and an
// end-of-week reminder for students who have not submitted their weekly
// report yet.
type ReportScheduler struct {
	reports *ReportService
	cron    *cron.Cron
}

func NewReportScheduler() *ReportScheduler {
	return &ReportScheduler{
		reports: NewReportService(),
		cron:    cron.New(),
	}
}

// Start registers the cron entries and starts the scheduler in its own
// goroutine. Returns the cron instance so main can Stop() it on shutdown.
func (rs *ReportScheduler) Start() *cron.Cron {
	// Thursday 09:00: nudge students who have not submitted yet
	if _, err := rs.cron.AddFunc("0 9 * * 4", func() {
		rs.RemindMissing("Your weekly report is due Sunday. Submit it to earn points.")
	}); err != nil {
		logrus.WithError(err).Error("Failed to register mid-week report reminder")
	}

	// Sunday 18:00: last call before the week closes
	if _, err := rs.cron.AddFunc("0 18 * * 0", func() {
		rs.RemindMissing("Last call: submit your weekly report before the week ends.")
	}); err != nil {
		logrus.WithError(err).Error("Failed to register end-of-week report reminder")
	}

	rs.cron.Start()
	logrus.Info("Report scheduler started")
	return rs.cron
}

// RemindMissing notifies every active student without a report for the
// current week.
func (rs *ReportScheduler) RemindMissing(message string) {
	students, err := rs.reports.MissingForWeek(time.Now())
	if err != nil {
		logrus.WithError(err).Error("Failed to look up missing weekly reports")
		return
	}
	if len(students) == 0 {
		return
	}

	userIDs := make([]uint, 0, len(students))
	for _, s := range students {
		userIDs = append(userIDs, s.ID)
	}

	svc := notifications.NewService()
	n := notifications.Queued("Weekly report reminder", message, "warning", "normal", "line")
	if err := svc.EnqueueOrCreate(userIDs, n); err != nil {
		logrus.WithError(err).Error("Failed to enqueue weekly report reminders")
		return
	}

	logrus.WithField("students", len(userIDs)).Info("Weekly report reminders sent")
}
