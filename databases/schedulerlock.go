package databases

// go generate: mockery --name SchedulerLockDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lexflow/legal-case-api/models"
)

const schedulerLockName = "schedulerlocks"

// SchedulerLockDatabase provides a coarse distributed lock so cron jobs
// run on a single instance at a time.
type SchedulerLockDatabase interface {
	TryAcquireLock(ctx context.Context, jobName, instanceID string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, jobName, instanceID string) error
}

type schedulerLockDatabase struct {
	db DatabaseHelper
}

// NewSchedulerLockDatabase initializes a new instance of scheduler lock database with the provided db connection
func NewSchedulerLockDatabase(db DatabaseHelper) SchedulerLockDatabase {
	return &schedulerLockDatabase{
		db: db,
	}
}

// TryAcquireLock inserts the lock document if absent or expired.
// Returns false when another live holder owns the lock.
func (s *schedulerLockDatabase) TryAcquireLock(ctx context.Context, jobName, instanceID string, ttl time.Duration) (bool, error) {
	now := time.Now()

	existing := &models.SchedulerLock{}
	err := s.db.Collection(schedulerLockName).FindOne(ctx, bson.M{"_id": jobName}).Decode(existing)
	if err == nil && existing.ExpiresAt.Time().After(now) && existing.InstanceID != instanceID {
		return false, nil
	}

	_, err = s.db.Collection(schedulerLockName).UpdateOne(ctx,
		bson.M{"_id": jobName},
		bson.M{"$set": bson.M{
			"instanceID": instanceID,
			"acquiredAt": primitive.NewDateTimeFromTime(now),
			"expiresAt":  primitive.NewDateTimeFromTime(now.Add(ttl)),
		}},
		upsertOptions(),
	)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *schedulerLockDatabase) ReleaseLock(ctx context.Context, jobName, instanceID string) error {
	return s.db.Collection(schedulerLockName).DeleteOne(ctx, bson.M{
		"_id":        jobName,
		"instanceID": instanceID,
	})
}
