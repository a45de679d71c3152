package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"reservation_id",
			"customer_id",
			"trainer_id",
			"start_time",
			"end_time",
			"status",
			"payment_status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"reservation_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"reservation_code": bson.M{
				"bsonType":  "string",
				"maxLength": 32,
			},

			"customer_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"trainer_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"start_time": bson.M{"bsonType": "date"},
			"end_time":   bson.M{"bsonType": "date"},

			"status": bson.M{
				"enum": []string{"pending_payment", "confirmed", "cancelled", "expired"},
			},

			"payment_status": bson.M{
				"enum": []string{"unpaid", "captured", "refunded", "refund_failed"},
			},

			"amount": bson.M{
				"bsonType": []string{"long", "int"},
				"minimum":  0,
			},

			"memo": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
