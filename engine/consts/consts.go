package consts

// Wire limits
const (
	// SHORT_STRING_MAX_LENGTH is the largest byte length a signed 8-bit length prefix can carry
	SHORT_STRING_MAX_LENGTH = 127
	// PACKED_LENGTH_ESCAPE marks a packed length that continues in the next 3 bytes
	PACKED_LENGTH_ESCAPE = 0xFF
	// PACKED_LENGTH_MAX is the largest length representable as a packed length
	PACKED_LENGTH_MAX = 1<<24 - 1
)

// Persistence limits
const (
	// SCHEMA_STRING_MAX_LENGTH is the declared column width of string fields
	SCHEMA_STRING_MAX_LENGTH = 50
	// SQL_TABLE_PREFIX prefixes every generated entity table
	SQL_TABLE_PREFIX = "tbl_"
	// SQL_COLUMN_PREFIX prefixes every generated property column
	SQL_COLUMN_PREFIX = "sm_"
	// SQL_PARENT_ID_COLUMN links sub-table rows to their owning record
	SQL_PARENT_ID_COLUMN = "parentID"
)

// Tunable Options
const (
	// STORAGE_QUEUE_WARN_STEP is how often (in queued operations) a long storage queue is reported
	STORAGE_QUEUE_WARN_STEP = 100
)

// Debug Options
const (
	// DEBUG_SAVE_LOAD prints save & load debug logs
	DEBUG_SAVE_LOAD = false
	// DEBUG_CODEC prints encode & decode debug logs
	DEBUG_CODEC = false
)
