package driver

import (
	"database/sql"
	"database/sql/driver"
	"github.com/emberdb/ember/server"
)

const dbName = "ember"

// Register the driver when this package is imported.
func init() {
	sql.Register(dbName, &EmberDriver{})
}

// EmberDriver implements database/sql/driver.Driver.
var _ driver.Driver = (*EmberDriver)(nil)

type EmberDriver struct{}

// Open is the entry point. The directory is the path to the DB directory.
func (d *EmberDriver) Open(directory string) (driver.Conn, error) {
	db, err := server.NewEngine(directory)
	if err != nil {
		return nil, err
	}
	return &EmberConn{
		db: db,
		// We do not open a transaction here. We'll open a new one for each statement (auto-commit).
	}, nil
}
