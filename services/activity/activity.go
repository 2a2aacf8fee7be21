package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"linguadesk_go/config"
	"linguadesk_go/database"
	"linguadesk_go/models"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Append writes one audit-trail entry. It is best-effort by design: a failed
// log write is reported via logrus but never fails the primary operation.
// When the Redis queue is enabled the entry is parked there and flushed to the
// database by the archive maintenance job; otherwise it is written directly.
func Append(action, entityType string, entityID *uint, oldValue, newValue interface{}) {
	entry := models.ActivityLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValue:   marshalValue(oldValue),
		NewValue:   marshalValue(newValue),
	}

	if config.AppConfig != nil && config.AppConfig.UseRedisLogQueue {
		if err := queueEntry(entry); err == nil {
			return
		} else {
			logrus.WithError(err).Warn("Failed to queue activity log, saving directly to database")
		}
	}

	if database.DB == nil {
		logrus.Error("database.DB is nil; cannot save activity log")
		return
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action":      action,
			"entity_type": entityType,
		}).Error("Failed to save activity log")
	}
}

func marshalValue(v interface{}) models.JSON {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).Warn("Failed to marshal activity log value")
		return nil
	}
	return data
}

// queueEntry parks the entry in Redis with a 24-hour TTL plus a sorted-set
// index so the flush job can drain entries in order.
func queueEntry(entry models.ActivityLog) error {
	client := database.GetRedisClient()
	if client == nil {
		return fmt.Errorf("redis client is nil")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %v", err)
	}

	ctx := context.Background()
	key := fmt.Sprintf("activity:%s:%d", entry.EntityType, time.Now().UnixNano())
	if err := client.Set(ctx, key, data, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to cache log entry: %v", err)
	}

	if err := client.ZAdd(ctx, "activity:queue", &redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: key,
	}).Err(); err != nil {
		logrus.WithError(err).Error("Failed to add activity log to processing queue")
	}
	return nil
}
