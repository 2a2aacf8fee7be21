package services

import (
	"fmt"
	"time"

	"linguadesk_go/config"
	"linguadesk_go/database"
	"linguadesk_go/models"
	"linguadesk_go/services/metrics"
	"linguadesk_go/services/websocket"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// AlertScheduler recomputes the dashboard alert counts every morning and
// fans the digest out to staff notifications, the websocket hub and LINE.
type AlertScheduler struct {
	metrics *metrics.Service
	line    *LineMessagingService
	wsHub   *websocket.Hub
	cron    *cron.Cron
}

func NewAlertScheduler() *AlertScheduler {
	return &AlertScheduler{
		metrics: metrics.NewService(),
		line:    NewLineMessagingService(),
		cron:    cron.New(),
	}
}

// SetWebSocketHub wires the hub for digest broadcasts.
func (as *AlertScheduler) SetWebSocketHub(hub *websocket.Hub) {
	as.wsHub = hub
}

// Start schedules the daily digest at 08:00 local time.
func (as *AlertScheduler) Start() {
	if _, err := as.cron.AddFunc("0 8 * * *", as.RunDailyDigest); err != nil {
		logrus.WithError(err).Error("Failed to schedule daily alert digest")
		return
	}
	as.cron.Start()
	logrus.Info("Alert digest scheduler started (daily at 08:00)")
}

// Stop halts the scheduler.
func (as *AlertScheduler) Stop() {
	if as.cron != nil {
		as.cron.Stop()
	}
}

// RunDailyDigest computes today's alert counts and distributes them.
func (as *AlertScheduler) RunDailyDigest() {
	counts, err := as.metrics.Alerts(time.Now())
	if err != nil {
		logrus.WithError(err).Error("Failed to compute alert counts for daily digest")
		return
	}

	message := fmt.Sprintf(
		"Daily overview: %d overdue payment(s), %d student(s) low on sessions, %d missing attendance today.",
		counts.OverduePayments, counts.LowSessions, counts.MissingAttendance)

	as.notifyStaff(counts, message)

	if as.wsHub != nil {
		as.wsHub.Broadcast(websocket.Message{Type: "alert_digest", Data: counts})
	}

	if config.AppConfig.LineDigestRecipient != "" {
		if err := as.line.PushText(config.AppConfig.LineDigestRecipient, message); err != nil {
			logrus.WithError(err).Warn("Failed to push daily digest to LINE")
		}
	}
}

// notifyStaff writes one in-app notification per active staff account.
func (as *AlertScheduler) notifyStaff(counts *metrics.AlertCounts, message string) {
	var users []models.User
	if err := database.DB.Where("status = ?", "active").Find(&users).Error; err != nil {
		logrus.WithError(err).Error("Failed to load staff accounts for digest")
		return
	}

	level := "info"
	if counts.OverduePayments > 0 {
		level = "warning"
	}

	for _, u := range users {
		notification := models.Notification{
			UserID:  u.ID,
			Title:   "Daily alert digest",
			Message: message,
			Type:    level,
		}
		if err := database.DB.Create(&notification).Error; err != nil {
			logrus.WithError(err).WithField("user_id", u.ID).Warn("Failed to create digest notification")
		}
	}
}
