package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"classquest_go/database"
	"classquest_go/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const logQueueKey = "logs:queue"

// LogArchiveService moves activity logs through their lifecycle: Redis cache
// to database, then old database rows into zipped JSON archives on S3.
type LogArchiveService struct {
	redisClient *redis.Client
	awsConfig   aws.Config
}

// ArchivedLog is the flattened row written into archive files. User fields
// are denormalized so archives stay readable after accounts are deleted.
type ArchivedLog struct {
	ID         uint           `json:"id"`
	UserID     uint           `json:"user_id"`
	Username   string         `json:"username,omitempty"`
	UserRole   string         `json:"user_role,omitempty"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID uint           `json:"resource_id"`
	Details    map[string]any `json:"details,omitempty"`
	IPAddress  string         `json:"ip_address"`
	CreatedAt  time.Time      `json:"created_at"`
}

func NewLogArchiveService() *LogArchiveService {
	cfg, err := awscfg.LoadDefaultConfig(context.Background(), awscfg.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		logrus.WithError(err).Warn("Failed to load AWS config; S3 operations will fail until configured")
	}

	return &LogArchiveService{
		redisClient: database.GetRedisClient(),
		awsConfig:   cfg,
	}
}

// FlushCachedLogsToDatabase persists Redis-cached activity logs older than a
// day into the database and drops them from the cache.
func (las *LogArchiveService) FlushCachedLogsToDatabase() error {
	if las.redisClient == nil {
		return fmt.Errorf("redis client not available")
	}

	ctx := context.Background()
	cutoff := time.Now().Add(-24 * time.Hour)

	keys, err := las.redisClient.ZRangeByScore(ctx, logQueueKey, &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%d", cutoff.Unix()),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to get expired logs: %v", err)
	}

	flushed, failed := 0, 0
	for _, key := range keys {
		data, err := las.redisClient.Get(ctx, key).Result()
		if err != nil {
			if err != redis.Nil {
				logrus.WithError(err).Errorf("Failed to read cached log %s", key)
				failed++
			}
			continue
		}

		var entry models.ActivityLog
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			logrus.WithError(err).Errorf("Malformed cached log %s", key)
			failed++
			continue
		}

		if err := database.DB.Create(&entry).Error; err != nil {
			logrus.WithError(err).Error("Failed to persist cached log")
			failed++
			continue
		}

		pipe := las.redisClient.Pipeline()
		pipe.Del(ctx, key)
		pipe.ZRem(ctx, logQueueKey, key)
		if _, err := pipe.Exec(ctx); err != nil {
			logrus.WithError(err).Errorf("Failed to evict cached log %s", key)
		}
		flushed++
	}

	if flushed > 0 || failed > 0 {
		logrus.Infof("Flushed %d cached logs to database, %d errors", flushed, failed)
	}
	return nil
}

// ArchiveOldLogs zips activity logs older than daysOld, uploads the archive
// to S3, deletes the archived rows, and records archive metadata.
func (las *LogArchiveService) ArchiveOldLogs(daysOld int) error {
	if daysOld < 7 {
		return fmt.Errorf("minimum archive age is 7 days")
	}

	cutoff := time.Now().AddDate(0, 0, -daysOld)

	const batchSize = 1000
	var rows []ArchivedLog
	for offset := 0; ; offset += batchSize {
		var logs []models.ActivityLog
		err := database.DB.
			Preload("User").
			Where("created_at < ?", cutoff).
			Order("created_at ASC").
			Limit(batchSize).
			Offset(offset).
			Find(&logs).Error
		if err != nil {
			return fmt.Errorf("failed to fetch logs for archiving: %v", err)
		}
		if len(logs) == 0 {
			break
		}

		for _, l := range logs {
			row := ArchivedLog{
				ID:         l.ID,
				UserID:     l.UserID,
				Action:     l.Action,
				Resource:   l.Resource,
				ResourceID: l.ResourceID,
				IPAddress:  l.IPAddress,
				CreatedAt:  l.CreatedAt,
			}
			if len(l.Details) > 0 {
				var details map[string]any
				if err := json.Unmarshal(l.Details, &details); err == nil {
					row.Details = details
				}
			}
			if l.User.ID > 0 {
				row.Username = l.User.Username
				row.UserRole = l.User.Role
			}
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil
	}
	logrus.Infof("Archiving %d activity logs older than %s", len(rows), cutoff.Format("2006-01-02"))

	fileName := fmt.Sprintf("activity_logs_%s.zip", cutoff.Format("2006-01-02"))
	archive, err := buildLogArchive(rows, fileName)
	if err != nil {
		return fmt.Errorf("failed to build archive: %v", err)
	}

	s3Key := fmt.Sprintf("logs/archived/%d/%02d/%s", cutoff.Year(), cutoff.Month(), fileName)
	if err := las.uploadToS3(s3Key, archive); err != nil {
		return fmt.Errorf("failed to upload archive to S3: %v", err)
	}

	result := database.DB.Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete archived logs: %v", result.Error)
	}
	logrus.Infof("Archived %s to S3 and deleted %d rows", s3Key, result.RowsAffected)

	meta := models.LogArchive{
		FileName:    fileName,
		S3Key:       s3Key,
		StartDate:   rows[0].CreatedAt,
		EndDate:     cutoff,
		RecordCount: len(rows),
		FileSize:    int64(archive.Len()),
		Status:      "completed",
	}
	if err := database.DB.Create(&meta).Error; err != nil {
		logrus.WithError(err).Error("Failed to save archive metadata")
	}

	return nil
}

// buildLogArchive packs the rows into a zip with the log dump and a small
// metadata file.
func buildLogArchive(rows []ArchivedLog, fileName string) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	logsFile, err := zw.Create("activity_logs.json")
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(logsFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{
		"record_count": len(rows),
		"logs":         rows,
	}); err != nil {
		return nil, err
	}

	metaFile, err := zw.Create("metadata.json")
	if err != nil {
		return nil, err
	}
	if err := json.NewEncoder(metaFile).Encode(map[string]any{
		"file_name":    fileName,
		"created_at":   time.Now().UTC(),
		"record_count": len(rows),
		"date_range": map[string]any{
			"start": rows[0].CreatedAt,
			"end":   rows[len(rows)-1].CreatedAt,
		},
	}); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf, nil
}

func (las *LogArchiveService) uploadToS3(key string, data *bytes.Buffer) error {
	if las.awsConfig.Region == "" {
		return fmt.Errorf("AWS not configured")
	}

	client := s3.NewFromConfig(las.awsConfig)
	bucket := os.Getenv("S3_BUCKET_NAME")

	_, err := client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(data.Bytes()),
		ContentType: aws.String("application/zip"),
	})
	return err
}

func (las *LogArchiveService) downloadFromS3(key string) (io.ReadCloser, error) {
	if las.awsConfig.Region == "" {
		return nil, fmt.Errorf("AWS not configured")
	}

	client := s3.NewFromConfig(las.awsConfig)
	bucket := os.Getenv("S3_BUCKET_NAME")

	out, err := client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// GetArchivedLogs lists archive metadata, newest first.
func (las *LogArchiveService) GetArchivedLogs() ([]models.LogArchive, error) {
	var archives []models.LogArchive
	if err := database.DB.Order("created_at DESC").Find(&archives).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve archived logs: %v", err)
	}
	return archives, nil
}

// DownloadArchivedLogs streams one archive from S3 along with its filename.
func (las *LogArchiveService) DownloadArchivedLogs(archiveID uint) (io.ReadCloser, string, error) {
	var archive models.LogArchive
	if err := database.DB.First(&archive, archiveID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", fmt.Errorf("archive not found")
		}
		return nil, "", fmt.Errorf("failed to retrieve archive: %v", err)
	}

	reader, err := las.downloadFromS3(archive.S3Key)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download archive from S3: %v", err)
	}
	return reader, archive.FileName, nil
}

// StartLogMaintenanceScheduler runs flush and archive once at startup and
// then hourly.
func (las *LogArchiveService) StartLogMaintenanceScheduler() {
	go func() {
		run := func() {
			if err := las.FlushCachedLogsToDatabase(); err != nil {
				logrus.WithError(err).Warn("FlushCachedLogsToDatabase failed")
			}
			if err := las.ArchiveOldLogs(30); err != nil {
				logrus.WithError(err).Warn("ArchiveOldLogs failed")
			}
		}

		run()
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			run()
		}
	}()
}
