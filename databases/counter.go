package databases

// go generate: mockery --name CounterDatabase

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lexflow/legal-case-api/models"
)

const counterName = "counters"

// CounterDatabase hands out sequence numbers. NextCaseNumber is an
// atomic increment-and-get scoped by year, so concurrent case
// creations never observe the same sequence value.
type CounterDatabase interface {
	NextCaseNumber(ctx context.Context, year int) (string, error)
}

type counterDatabase struct {
	db DatabaseHelper
}

// NewCounterDatabase initializes a new instance of counter database with the provided db connection
func NewCounterDatabase(db DatabaseHelper) CounterDatabase {
	return &counterDatabase{
		db: db,
	}
}

// NextCaseNumber bumps the year's counter with an $inc upsert and
// formats the docket number as C-<year>-<seq>, sequence zero-padded to
// three digits.
func (c *counterDatabase) NextCaseNumber(ctx context.Context, year int) (string, error) {
	counterID := fmt.Sprintf("case-%d", year)

	after := options.After
	opts := &options.FindOneAndUpdateOptions{
		ReturnDocument: &after,
	}
	opts.SetUpsert(true)

	var counter models.Counter
	err := c.db.Collection(counterName).FindOneAndUpdate(ctx,
		bson.M{"_id": counterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("C-%d-%03d", year, counter.Seq), nil
}
