package database

import "errors"

var (
	// ErrNotFound is returned when no stored report matches a query.
	ErrNotFound = errors.New("report not found")

	// ErrNotEnoughHistory is returned by Compare when fewer than two runs
	// are stored for a domain.
	ErrNotEnoughHistory = errors.New("at least two stored runs are needed to compare")

	// ErrDatabaseMissing is returned by Open when the database does not
	// exist and creation is disabled.
	ErrDatabaseMissing = errors.New("history database not found")
)
