package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps one collection per table. Append order is _id order.
type MongoStore struct {
	db           *mongo.Database
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewMongoStore(db *mongo.Database, readTimeout, writeTimeout time.Duration) *MongoStore {
	return &MongoStore{
		db:           db,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// withTimeout keeps the caller's deadline when it is tighter than the store timeout.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

var appendOrder = bson.D{{Key: "_id", Value: 1}}

func (s *MongoStore) FetchTable(ctx context.Context, table string) ([]Row, error) {
	return s.find(ctx, table, bson.M{})
}

func (s *MongoStore) FindAll(ctx context.Context, table, column string, value any) ([]Row, error) {
	return s.find(ctx, table, bson.M{column: value})
}

func (s *MongoStore) find(ctx context.Context, table string, filter bson.M) ([]Row, error) {
	if !knownTable(table) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()

	cursor, err := s.db.Collection(table).Find(ctx, filter, options.Find().SetSort(appendOrder))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", table, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", table, err)
	}

	rows := make([]Row, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, Project(table, fromDocument(doc)))
	}
	return rows, nil
}

func (s *MongoStore) FindBy(ctx context.Context, table, column string, value any) (Row, error) {
	if !knownTable(table) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()

	var doc bson.M
	err := s.db.Collection(table).
		FindOne(ctx, bson.M{column: value}, options.FindOne().SetSort(appendOrder)).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find in %s: %w", table, err)
	}
	return Project(table, fromDocument(doc)), nil
}

func (s *MongoStore) Insert(ctx context.Context, table string, row Row) error {
	if !knownTable(table) {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	if _, err := s.db.Collection(table).InsertOne(ctx, toDocument(row)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, table, keyColumn string, key any, changes Row) error {
	if !knownTable(table) {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	result, err := s.db.Collection(table).UpdateOne(ctx,
		bson.M{keyColumn: key},
		bson.M{"$set": toDocument(changes)},
	)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, table, column string, value any) (int64, error) {
	if !knownTable(table) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	result, err := s.db.Collection(table).DeleteMany(ctx, bson.M{column: value})
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return result.DeletedCount, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, s.readTimeout)
	defer cancel()
	return s.db.Client().Ping(ctx, nil)
}

func toDocument(row Row) bson.M {
	doc := make(bson.M, len(row))
	for k, v := range row {
		if t, ok := v.(time.Time); ok {
			doc[k] = t.UTC()
			continue
		}
		doc[k] = v
	}
	return doc
}

func fromDocument(doc bson.M) Row {
	row := make(Row, len(doc))
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		switch val := v.(type) {
		case primitive.DateTime:
			row[k] = val.Time().UTC()
		case primitive.A:
			row[k] = []any(val)
		default:
			row[k] = val
		}
	}
	return row
}
