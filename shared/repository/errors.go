package repository

import (
	"errors"

	"github.com/lib/pq"
)

// PqErrorCode returns the Postgres SQLSTATE carried by err, or an empty string.
func PqErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	return ""
}

// PqConstraint returns the constraint name reported by Postgres for err.
func PqConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}

	return ""
}

func IsPqError(err error, code string) bool {
	return code != "" && PqErrorCode(err) == code
}
