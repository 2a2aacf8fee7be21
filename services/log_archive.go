package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"linguadesk_go/config"
	"linguadesk_go/database"
	"linguadesk_go/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// archiveRetention is how long activity logs stay in the hot table before
// being moved into an S3 archive.
const archiveRetention = 90 * 24 * time.Hour

// LogArchiveService drains the Redis activity queue into the database and
// moves old activity logs into zipped S3 archives. The audit trail itself is
// append-only; archiving relocates rows, it never loses them.
type LogArchiveService struct {
	redisClient *redis.Client
	awsConfig   aws.Config
	cron        *cron.Cron
}

// NewLogArchiveService creates a new service instance
func NewLogArchiveService() *LogArchiveService {
	cfg, err := awscfg.LoadDefaultConfig(context.Background(),
		awscfg.WithRegion(config.AppConfig.AWSRegion))
	if err != nil {
		logrus.WithError(err).Warn("Failed to load AWS config; S3 archive operations will fail until configured")
	}

	return &LogArchiveService{
		redisClient: database.GetRedisClient(),
		awsConfig:   cfg,
		cron:        cron.New(),
	}
}

// StartMaintenanceScheduler flushes the queue hourly and archives old logs
// nightly at 03:00.
func (las *LogArchiveService) StartMaintenanceScheduler() {
	if _, err := las.cron.AddFunc("@hourly", func() {
		if err := las.FlushQueuedLogs(); err != nil {
			logrus.WithError(err).Debug("Activity log queue flush skipped")
		}
	}); err != nil {
		logrus.WithError(err).Error("Failed to schedule activity log flush")
	}

	if _, err := las.cron.AddFunc("0 3 * * *", func() {
		if err := las.ArchiveOldLogs(); err != nil {
			logrus.WithError(err).Error("Activity log archive run failed")
		}
	}); err != nil {
		logrus.WithError(err).Error("Failed to schedule activity log archiving")
	}

	las.cron.Start()
	logrus.Info("Activity log maintenance scheduler started")
}

// FlushQueuedLogs moves queued activity entries from Redis into the database.
func (las *LogArchiveService) FlushQueuedLogs() error {
	if las.redisClient == nil {
		return fmt.Errorf("redis client not available")
	}

	ctx := context.Background()
	keys, err := las.redisClient.ZRangeByScore(ctx, "activity:queue", &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%d", time.Now().Unix()),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to read activity queue: %v", err)
	}
	if len(keys) == 0 {
		return nil
	}

	flushed := 0
	for _, key := range keys {
		data, err := las.redisClient.Get(ctx, key).Result()
		if err != nil {
			// Entry expired before flush; drop the queue marker.
			las.redisClient.ZRem(ctx, "activity:queue", key)
			continue
		}

		var entry models.ActivityLog
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("Dropping malformed queued activity log")
			las.redisClient.ZRem(ctx, "activity:queue", key)
			continue
		}
		entry.ID = 0

		if err := database.DB.Create(&entry).Error; err != nil {
			logrus.WithError(err).Warn("Failed to flush queued activity log")
			continue
		}
		las.redisClient.Del(ctx, key)
		las.redisClient.ZRem(ctx, "activity:queue", key)
		flushed++
	}

	if flushed > 0 {
		logrus.Infof("Flushed %d queued activity logs to database", flushed)
	}
	return nil
}

// ArchiveOldLogs zips activity logs past retention, uploads the archive to S3
// and removes the archived rows from the hot table.
func (las *LogArchiveService) ArchiveOldLogs() error {
	cutoff := time.Now().Add(-archiveRetention)

	var logs []models.ActivityLog
	if err := database.DB.Where("created_at < ?", cutoff).
		Order("created_at ASC").Find(&logs).Error; err != nil {
		return fmt.Errorf("failed to load logs for archiving: %v", err)
	}
	if len(logs) == 0 {
		return nil
	}

	startDate := logs[0].CreatedAt
	endDate := logs[len(logs)-1].CreatedAt
	fileName := fmt.Sprintf("activity-logs_%s_%s.zip",
		startDate.Format("20060102"), endDate.Format("20060102"))
	s3Key := fmt.Sprintf("activity-archives/%d/%s", startDate.Year(), fileName)

	archive := models.LogArchive{
		FileName:    fileName,
		S3Key:       s3Key,
		StartDate:   startDate,
		EndDate:     endDate,
		RecordCount: len(logs),
		Status:      "pending",
	}
	if err := database.DB.Create(&archive).Error; err != nil {
		return fmt.Errorf("failed to create archive record: %v", err)
	}

	data, err := buildZipArchive(fileName, logs)
	if err != nil {
		las.markArchiveFailed(&archive, err)
		return err
	}

	client := s3.NewFromConfig(las.awsConfig)
	_, err = client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(config.AppConfig.S3BucketName),
		Key:         aws.String(s3Key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		las.markArchiveFailed(&archive, err)
		return fmt.Errorf("failed to upload archive to S3: %v", err)
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("created_at < ?", cutoff).
			Delete(&models.ActivityLog{}).Error; err != nil {
			return err
		}
		return tx.Model(&archive).Updates(map[string]interface{}{
			"status":    "completed",
			"file_size": int64(len(data)),
		}).Error
	})
	if err != nil {
		las.markArchiveFailed(&archive, err)
		return err
	}

	logrus.Infof("Archived %d activity logs to s3://%s/%s",
		len(logs), config.AppConfig.S3BucketName, s3Key)
	return nil
}

func (las *LogArchiveService) markArchiveFailed(archive *models.LogArchive, cause error) {
	if err := database.DB.Model(archive).Updates(map[string]interface{}{
		"status": "failed",
		"error":  cause.Error(),
	}).Error; err != nil {
		logrus.WithError(err).Error("Failed to mark archive as failed")
	}
}

func buildZipArchive(fileName string, logs []models.ActivityLog) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entry, err := zw.Create(fileName[:len(fileName)-len(".zip")] + ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to create zip entry: %v", err)
	}

	enc := json.NewEncoder(entry)
	for _, l := range logs {
		if err := enc.Encode(l); err != nil {
			return nil, fmt.Errorf("failed to encode log %d: %v", l.ID, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize zip: %v", err)
	}
	return buf.Bytes(), nil
}
