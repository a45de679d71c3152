package validators

import "go.mongodb.org/mongo-driver/bson"

var SlotLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"lock_id", "trainer_id", "slot_key", "holder", "expires_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"lock_id":     bson.M{"bsonType": "string"},
			"trainer_id":  bson.M{"bsonType": "string"},
			"slot_key":    bson.M{"bsonType": "string"},
			"slot_start":  bson.M{"bsonType": "date"},
			"slot_end":    bson.M{"bsonType": "date"},
			"holder":      bson.M{"bsonType": "string", "minLength": 1},
			"acquired_at": bson.M{"bsonType": "date"},
			"expires_at":  bson.M{"bsonType": "date"},
		},
	},
}
