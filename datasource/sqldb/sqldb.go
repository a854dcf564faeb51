// Package sqldb manages the process-wide SQL connections backing the
// historical (offline) store. Instances are registered once at startup and
// shared by every request; *sql.DB handles its own pooling and is safe for
// concurrent use.
package sqldb

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/datalane/featurestore-go/constants"
)

type SQLStore struct {
	Name   string
	Driver string
	DSN    string
	DB     *sql.DB
}

var sqlStoreInstances sync.Map

func driverName(driver string) (string, error) {
	switch driver {
	case constants.Offline_Driver_SQLite:
		return "sqlite", nil
	case constants.Offline_Driver_Postgres:
		return "postgres", nil
	case constants.Offline_Driver_MySQL:
		return "mysql", nil
	default:
		return "", fmt.Errorf("unknown offline driver %q", driver)
	}
}

func (s *SQLStore) Init() error {
	name, err := driverName(s.Driver)
	if err != nil {
		return err
	}
	db, err := sql.Open(name, s.DSN)
	if err != nil {
		return err
	}

	db.SetConnMaxLifetime(60 * time.Minute)
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(50)
	if s.Driver == constants.Offline_Driver_SQLite {
		// The sqlite driver serializes writers; extra connections only queue.
		db.SetMaxOpenConns(1)
	}

	s.DB = db
	return db.Ping()
}

// RegisterSQLStore opens and registers a named SQL store. Registering an
// existing name is a no-op.
func RegisterSQLStore(name, driver, dsn string) error {
	if _, ok := sqlStoreInstances.Load(name); ok {
		return nil
	}
	s := &SQLStore{
		Name:   name,
		Driver: driver,
		DSN:    dsn,
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("register sql store %s: %w", name, err)
	}
	sqlStoreInstances.Store(name, s)
	return nil
}

// RegisterSQLStoreDB registers an already-open database handle, used by tests
// and embedders that manage the connection themselves.
func RegisterSQLStoreDB(name, driver string, db *sql.DB) {
	sqlStoreInstances.Store(name, &SQLStore{Name: name, Driver: driver, DB: db})
}

func GetSQLStore(name string) (*SQLStore, error) {
	value, ok := sqlStoreInstances.Load(name)
	if !ok {
		return nil, fmt.Errorf("sql store not found, name:%s", name)
	}
	s, ok := value.(*SQLStore)
	if !ok {
		return nil, fmt.Errorf("sql store not found, name:%s", name)
	}
	return s, nil
}

func RemoveSQLStore(name string) {
	value, ok := sqlStoreInstances.Load(name)
	if !ok {
		return
	}
	if s, ok := value.(*SQLStore); ok && s.DB != nil {
		s.DB.Close()
	}
	sqlStoreInstances.Delete(name)
}
