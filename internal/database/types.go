package database

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a row addressed by id doesn't exist
var ErrNotFound = errors.New("not found")

// timeNow is swapped in tests
var timeNow = func() time.Time { return time.Now().UTC() }

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
