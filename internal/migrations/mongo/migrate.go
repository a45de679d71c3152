package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"k9harmony/internal/migrations/mongo/validators"
	"k9harmony/internal/store"
	"k9harmony/pkg/logger"
)

// Collection is the desired shape of one store table.
type Collection struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

var (
	TrainersIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "active", Value: 1}}},
	}

	ReservationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "trainer_id", Value: 1},
			{Key: "start_time", Value: 1},
			{Key: "end_time", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "customer_id", Value: 1},
			{Key: "start_time", Value: -1},
		}},
	}

	SlotLocksIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "trainer_id", Value: 1}, {Key: "slot_key", Value: 1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
	}

	AuditLogsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "entity_id", Value: 1},
			{Key: "entity_type", Value: 1},
			{Key: "created_at", Value: -1},
		}},
	}

	TransactionLogIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "idempotency_token", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "started_at", Value: -1}}},
	}
)

// Collections returns every table with its unique keys first, then its lookup indexes.
func Collections() []Collection {
	defs := []Collection{
		{Name: store.TableTrainers, Indexes: TrainersIndexes, Validator: validators.TrainerValidator},
		{Name: store.TableReservations, Indexes: ReservationsIndexes, Validator: validators.ReservationValidator},
		{Name: store.TableSlotLocks, Indexes: SlotLocksIndexes, Validator: validators.SlotLockValidator},
		{Name: store.TableAuditLogs, Indexes: AuditLogsIndexes, Validator: validators.AuditLogValidator},
		{Name: store.TableTransactionLog, Indexes: TransactionLogIndexes, Validator: validators.TransactionLogValidator},
	}
	for i := range defs {
		defs[i].Indexes = append(uniqueIndexes(defs[i].Name), defs[i].Indexes...)
	}
	return defs
}

// uniqueIndexes mirrors the store's uniqueness rules: the primary key always, and secondary
// unique columns only when non-empty.
func uniqueIndexes(table string) []mongo.IndexModel {
	models := []mongo.IndexModel{{
		Keys:    bson.D{{Key: store.PrimaryKey(table), Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_" + store.PrimaryKey(table)),
	}}
	for _, col := range store.Unique[table] {
		models = append(models, mongo.IndexModel{
			Keys: bson.D{{Key: col, Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_" + col).
				SetPartialFilterExpression(bson.M{col: bson.M{"$gt": ""}}),
		})
	}
	return models
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	coll := db.Collection(name)
	created, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", created)
	return nil
}
