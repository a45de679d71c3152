package store

const (
	TableTrainers       = "trainers"
	TableReservations   = "reservations"
	TableSlotLocks      = "slot_locks"
	TableAuditLogs      = "audit_logs"
	TableTransactionLog = "transaction_log"
)

// Headers is the column schema of every table, in header order.
var Headers = map[string][]string{
	TableTrainers: {
		"trainer_id", "trainer_code", "trainer_name", "active", "time_zone",
		"working_hours", "lesson_duration_min", "slot_interval_min", "buffer_min",
		"max_advance_days", "multi_animal_multiplier", "max_lesson_duration_min",
		"closed_dates", "holidays", "holiday_hours", "updated_at",
	},
	TableReservations: {
		"reservation_id", "reservation_code", "customer_id", "animal_id", "trainer_id",
		"trainer_code", "start_time", "end_time", "status", "payment_status",
		"payment_reference", "amount", "currency", "multi_animal", "receipt_requested",
		"memo", "idempotency_token", "lock_id", "created_at", "updated_at",
	},
	TableSlotLocks: {
		"lock_id", "trainer_id", "slot_key", "slot_start", "slot_end", "holder",
		"acquired_at", "expires_at",
	},
	TableAuditLogs: {
		"log_id", "entity_type", "entity_id", "action", "actor_type", "actor_id",
		"old_values", "new_values", "changed_fields", "is_gdpr_relevant", "created_at",
	},
	TableTransactionLog: {
		"transaction_id", "operation", "idempotency_token", "customer_id", "status",
		"final_state", "failure_code", "rollback_status", "steps", "started_at",
		"ended_at", "duration_ms",
	},
}

// PrimaryKey is the first header column of table.
func PrimaryKey(table string) string {
	if headers := Headers[table]; len(headers) > 0 {
		return headers[0]
	}
	return ""
}

// Unique lists secondary columns that must not repeat within a table. Empty values are exempt.
var Unique = map[string][]string{
	TableTrainers:     {"trainer_code"},
	TableReservations: {"reservation_code", "idempotency_token"},
}

// Project keeps only header columns and fills absent ones with an empty string.
func Project(table string, row Row) Row {
	headers, ok := Headers[table]
	if !ok {
		return row
	}
	out := make(Row, len(headers))
	for _, col := range headers {
		if v, ok := row[col]; ok && v != nil {
			out[col] = v
		} else {
			out[col] = ""
		}
	}
	return out
}

func knownTable(table string) bool {
	_, ok := Headers[table]
	return ok
}
