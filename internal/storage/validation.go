package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// Validation errors.
var (
	ErrNilContext  = errors.New("context cannot be nil")
	ErrEmptyString = errors.New("string parameter cannot be empty")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// rowID converts an entity id to the integer key used by the database.
// Ids that cannot be keys cannot exist, so they are reported as not found.
func rowID(kind string, id model.ID) (int64, error) {
	n, err := id.Int64()
	if err != nil {
		return 0, notFound(kind, id)
	}
	return n, nil
}

// nullableRowID is rowID for optional references; the zero ID maps to NULL.
func nullableRowID(kind string, id model.ID) (any, error) {
	if id.IsZero() {
		return nil, nil
	}
	return rowID(kind, id)
}

// rejectf reports a request the store refuses to apply.
func rejectf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrRemoteRejected, fmt.Sprintf(format, args...))
}

// notFound reports a missing entity as a rejection that also matches common.ErrNotFound.
func notFound(kind string, id model.ID) error {
	return fmt.Errorf("%w: %w", common.ErrRemoteRejected, common.NotFoundError(kind, id))
}

func idFromRow(n int64) model.ID {
	return model.MustParseID(n)
}
