package store

import "errors"

// Sentinel errors returned by backend methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrNotAuthenticated is returned by mutating remote operations when
	// no user is resolved. Reads never return it: they degrade to empty
	// results instead.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrQuotaExceeded is returned by the local key-value store when a
	// write does not fit the configured capacity, and by the local
	// backend when a write still fails after history eviction.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Low-level database operation errors. These are returned (or wrapped) by
// backend methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
