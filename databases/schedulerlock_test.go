package databases_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lexflow/legal-case-api/databases"
	"github.com/lexflow/legal-case-api/databases/mocks"
	"github.com/lexflow/legal-case-api/models"
)

func TestNewSchedulerLockDatabase(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	dbHelper = &mocks.DatabaseHelper{}

	lockDB := databases.NewSchedulerLockDatabase(dbHelper)

	assert.NotEmpty(t, lockDB)
}

func TestSchedulerLockTryAcquireLockFree(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelper databases.SingleResultHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelper = &mocks.SingleResultHelper{}

	srHelper.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(mongo.ErrNoDocuments)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"_id": "hearing_reminder_job"}).
		Return(srHelper)

	collectionHelper.(*mocks.CollectionHelper).
		On("UpdateOne", context.Background(), bson.M{"_id": "hearing_reminder_job"}, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{UpsertedCount: 1}, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "schedulerlocks").
		Return(collectionHelper)

	lockDB := databases.NewSchedulerLockDatabase(dbHelper)

	acquired, err := lockDB.TryAcquireLock(context.Background(), "hearing_reminder_job", "instance-a", 10*time.Minute)
	assert.NoError(t, err)
	assert.True(t, acquired)
}

func TestSchedulerLockTryAcquireLockHeldByOther(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelper databases.SingleResultHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelper = &mocks.SingleResultHelper{}

	srHelper.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			arg := args.Get(0).(*models.SchedulerLock)
			arg.ID = "hearing_reminder_job"
			arg.InstanceID = "instance-b"
			arg.ExpiresAt = primitive.NewDateTimeFromTime(time.Now().Add(5 * time.Minute))
		})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"_id": "hearing_reminder_job"}).
		Return(srHelper)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "schedulerlocks").
		Return(collectionHelper)

	lockDB := databases.NewSchedulerLockDatabase(dbHelper)

	acquired, err := lockDB.TryAcquireLock(context.Background(), "hearing_reminder_job", "instance-a", 10*time.Minute)
	assert.NoError(t, err)
	assert.False(t, acquired)

	collectionHelper.(*mocks.CollectionHelper).AssertNotCalled(t, "UpdateOne",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSchedulerLockTryAcquireLockExpired(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelper databases.SingleResultHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelper = &mocks.SingleResultHelper{}

	// stale lock from a dead instance, acquisition steals it
	srHelper.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			arg := args.Get(0).(*models.SchedulerLock)
			arg.ID = "room_reconcile_job"
			arg.InstanceID = "instance-b"
			arg.ExpiresAt = primitive.NewDateTimeFromTime(time.Now().Add(-time.Hour))
		})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"_id": "room_reconcile_job"}).
		Return(srHelper)

	collectionHelper.(*mocks.CollectionHelper).
		On("UpdateOne", context.Background(), bson.M{"_id": "room_reconcile_job"}, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{ModifiedCount: 1}, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "schedulerlocks").
		Return(collectionHelper)

	lockDB := databases.NewSchedulerLockDatabase(dbHelper)

	acquired, err := lockDB.TryAcquireLock(context.Background(), "room_reconcile_job", "instance-a", 10*time.Minute)
	assert.NoError(t, err)
	assert.True(t, acquired)
}

func TestSchedulerLockReleaseLock(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).
		On("DeleteOne", context.Background(), bson.M{"_id": "hearing_reminder_job", "instanceID": "instance-a"}).
		Return(nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "schedulerlocks").
		Return(collectionHelper)

	lockDB := databases.NewSchedulerLockDatabase(dbHelper)

	err := lockDB.ReleaseLock(context.Background(), "hearing_reminder_job", "instance-a")
	assert.NoError(t, err)
}
