package databases

// go generate: mockery --name NotificationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lexflow/legal-case-api/models"
)

const notificationName = "notifications"

// NotificationDatabase contains the methods to use with the notification database
type NotificationDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Notification, error)
	FindByUser(ctx context.Context, userID string, limit, page int) ([]models.Notification, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error
	MarkRead(ctx context.Context, notificationID string) error
}

type notificationDatabase struct {
	db DatabaseHelper
}

// NewNotificationDatabase initializes a new instance of notification database with the provided db connection
func NewNotificationDatabase(db DatabaseHelper) NotificationDatabase {
	return &notificationDatabase{
		db: db,
	}
}

func (n *notificationDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Notification, error) {
	var notifications []models.Notification
	curr, err := n.db.Collection(notificationName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &notifications)
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// FindByUser returns a user's notification feed, newest first.
func (n *notificationDatabase) FindByUser(ctx context.Context, userID string, limit, page int) ([]models.Notification, error) {
	opts := newMongoPaginate(limit, page).getPaginatedOpts()
	opts.Sort = bson.M{"notification.createdAt": -1}
	return n.Find(ctx, bson.M{"notification.userID": userID}, opts)
}

func (n *notificationDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := n.db.Collection(notificationName).InsertOne(ctx, document, opts...)
	return res, err
}

func (n *notificationDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := n.db.Collection(notificationName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (n *notificationDatabase) MarkRead(ctx context.Context, notificationID string) error {
	oid, err := objectIDFromHex(notificationID)
	if err != nil {
		return err
	}
	return n.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"notification.read": true}},
	)
}
