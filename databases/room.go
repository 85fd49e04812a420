package databases

// go generate: mockery --name RoomDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lexflow/legal-case-api/models"
)

const roomName = "rooms"

// RoomDatabase contains the methods to use with the room database
type RoomDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Room, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Room, error)
	FindAvailable(ctx context.Context) ([]models.Room, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error
	SetAvailability(ctx context.Context, roomID string, available bool) error
}

type roomDatabase struct {
	db DatabaseHelper
}

// NewRoomDatabase initializes a new instance of room database with the provided db connection
func NewRoomDatabase(db DatabaseHelper) RoomDatabase {
	return &roomDatabase{
		db: db,
	}
}

func (rd *roomDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Room, error) {
	room := &models.Room{}
	err := rd.db.Collection(roomName).FindOne(ctx, filter, opts...).Decode(&room)
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (rd *roomDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Room, error) {
	var rooms []models.Room
	curr, err := rd.db.Collection(roomName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &rooms)
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (rd *roomDatabase) FindAvailable(ctx context.Context) ([]models.Room, error) {
	return rd.Find(ctx, bson.M{"room.available": true})
}

func (rd *roomDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return rd.db.Collection(roomName).CountDocuments(ctx, filter, opts...)
}

func (rd *roomDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := rd.db.Collection(roomName).InsertOne(ctx, document, opts...)
	return res, err
}

func (rd *roomDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := rd.db.Collection(roomName).UpdateOne(ctx, filter, update, opts...)
	return err
}

// SetAvailability flips the derived availability flag for a room. The
// flag is a convenience cache; callers route releases through hearing
// state changes, never by writing the room directly.
func (rd *roomDatabase) SetAvailability(ctx context.Context, roomID string, available bool) error {
	oid, err := objectIDFromHex(roomID)
	if err != nil {
		return err
	}
	return rd.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"room.available": available}},
	)
}
