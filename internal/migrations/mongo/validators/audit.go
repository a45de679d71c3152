package validators

import "go.mongodb.org/mongo-driver/bson"

var AuditLogValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"log_id", "entity_type", "entity_id", "action", "actor_type", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"log_id":      bson.M{"bsonType": "string"},
			"entity_type": bson.M{"bsonType": "string"},
			"entity_id":   bson.M{"bsonType": "string"},
			"action":      bson.M{"enum": []string{"CREATE", "UPDATE", "DELETE"}},
			"actor_type":  bson.M{"enum": []string{"CUSTOMER", "TRAINER", "SYSTEM"}},
			"created_at":  bson.M{"bsonType": "date"},
		},
	},
}

var TransactionLogValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"transaction_id", "operation", "status", "started_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"transaction_id": bson.M{"bsonType": "string"},
			"operation":      bson.M{"bsonType": "string"},
			"status":         bson.M{"enum": []string{"COMMITTED", "FAILED"}},
			"started_at":     bson.M{"bsonType": "date"},
			"ended_at":       bson.M{"bsonType": "date"},
		},
	},
}
