package backend

// Type names a record store implementation.
type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
	SheetsBackend Type = "sheets"
)

func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend, SheetsBackend:
		return true
	}
	return false
}

// Config holds everything the factory needs for any backend type.
type Config struct {
	Type Type

	// memory
	DataDirectory string

	// sqlite
	SQLiteDBPath string

	// sqlite sync pipeline (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}
