package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lexflow/legal-case-api/databases"
	"github.com/lexflow/legal-case-api/databases/mocks"
	"github.com/lexflow/legal-case-api/models"
)

func TestNewHearingDatabase(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	dbHelper = &mocks.DatabaseHelper{}

	hearingDB := databases.NewHearingDatabase(dbHelper)

	assert.NotEmpty(t, hearingDB)
}

func TestHearingDatabaseFindOne(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperCorrect databases.SingleResultHelper
	var srHelperErr databases.SingleResultHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}
	srHelperErr = &mocks.SingleResultHelper{}

	mockedID := primitive.NewObjectID()

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			arg := args.Get(0).(**models.Hearing)
			(*arg).ID = mockedID
			(*arg).Details.Status = models.HearingStateOpen
		})

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": false}).
		Return(srHelperCorrect)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": true}).
		Return(srHelperErr)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "hearings").
		Return(collectionHelper)

	hearingDB := databases.NewHearingDatabase(dbHelper)

	hearing, err := hearingDB.FindOne(context.Background(), bson.M{"error": false})
	assert.Equal(t, &models.Hearing{ID: mockedID, Details: models.HearingDetails{Status: models.HearingStateOpen}}, hearing)
	assert.NoError(t, err)

	hearing, err = hearingDB.FindOne(context.Background(), bson.M{"error": true})
	assert.Nil(t, hearing)
	assert.EqualError(t, err, "mocked-error")
}

func TestHearingDatabaseFindConflicting(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var cursorHelperCorrect databases.CursorHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	cursorHelperCorrect = &mocks.CursorHelper{}

	roomID := primitive.NewObjectID().Hex()

	// terminal states never block a slot, the store must exclude them
	expectedFilter := bson.M{
		"hearing.roomID": roomID,
		"hearing.date":   "2026-09-15",
		"hearing.status": bson.M{"$nin": models.HearingTerminalStates},
	}

	cursorHelperCorrect.(*mocks.CursorHelper).
		On("All", context.Background(), mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			arg := args.Get(1).(*[]models.Hearing)
			*arg = []models.Hearing{
				{Details: models.HearingDetails{RoomID: roomID, Date: "2026-09-15", Time: "10:00", Status: models.HearingStateApproved}},
			}
		})
	cursorHelperCorrect.(*mocks.CursorHelper).
		On("Close", context.Background()).
		Return(nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), expectedFilter).
		Return(cursorHelperCorrect, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "hearings").
		Return(collectionHelper)

	hearingDB := databases.NewHearingDatabase(dbHelper)

	hearings, err := hearingDB.FindConflicting(context.Background(), roomID, "2026-09-15")
	assert.NoError(t, err)
	assert.Len(t, hearings, 1)
	assert.Equal(t, "10:00", hearings[0].Details.Time)
}

func TestHearingDatabaseFindConflictingError(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), mock.Anything).
		Return(nil, errors.New("mocked-error"))

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "hearings").
		Return(collectionHelper)

	hearingDB := databases.NewHearingDatabase(dbHelper)

	hearings, err := hearingDB.FindConflicting(context.Background(), "room-1", "2026-09-15")
	assert.Nil(t, hearings)
	assert.EqualError(t, err, "mocked-error")
}
