package constants

import "fmt"

type FSType int

const (
	FS_INT32 FSType = iota + 1 // int32
	FS_INT64                   // int64
	FS_FLOAT
	FS_DOUBLE
	FS_STRING
	FS_BOOLEAN
	FS_TIMESTAMP
)

// FSTypeFromName maps a catalog value_type string to its FSType.
func FSTypeFromName(name string) (FSType, error) {
	switch name {
	case "int", "int32":
		return FS_INT32, nil
	case "int64", "bigint":
		return FS_INT64, nil
	case "float":
		return FS_FLOAT, nil
	case "double", "float64":
		return FS_DOUBLE, nil
	case "string":
		return FS_STRING, nil
	case "bool", "boolean":
		return FS_BOOLEAN, nil
	case "timestamp":
		return FS_TIMESTAMP, nil
	default:
		return 0, fmt.Errorf("unknown value_type %q", name)
	}
}

func (t FSType) String() string {
	switch t {
	case FS_INT32:
		return "int32"
	case FS_INT64:
		return "int64"
	case FS_FLOAT:
		return "float"
	case FS_DOUBLE:
		return "double"
	case FS_STRING:
		return "string"
	case FS_BOOLEAN:
		return "boolean"
	case FS_TIMESTAMP:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Offline store driver names, selected once at construction from configuration.
const (
	Offline_Driver_SQLite   = "sqlite"
	Offline_Driver_Postgres = "postgres"
	Offline_Driver_MySQL    = "mysql"
)

// Online store backend names.
const (
	Online_Backend_Redis  = "redis"
	Online_Backend_Memory = "memory"
)
