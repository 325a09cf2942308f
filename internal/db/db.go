// internal/db/db.go
package db

import (
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Connect opens and pings the Postgres database.
func Connect(databaseURL string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database connection")
	}

	if err := conn.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	logrus.Info("connected to database")
	return conn, nil
}
