package validators

import "go.mongodb.org/mongo-driver/bson"

var TrainerValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"trainer_id", "trainer_code", "lesson_duration_min"},
		"additionalProperties": true,
		"properties": bson.M{
			"trainer_id":   bson.M{"bsonType": "string", "minLength": 1},
			"trainer_code": bson.M{"bsonType": "string", "minLength": 1, "maxLength": 32},
			"trainer_name": bson.M{"bsonType": "string", "maxLength": 100},
			"active":       bson.M{"bsonType": "bool"},
			"time_zone":    bson.M{"bsonType": "string"},
			"working_hours": bson.M{
				"bsonType": "string",
			},
			"lesson_duration_min": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  15,
				"maximum":  480,
			},
			"buffer_min": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
