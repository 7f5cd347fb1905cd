package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/twx/internal/shared"
)

// scanner is satisfied by [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// notFound converts [sql.ErrNoRows] into [shared.ErrCacheMiss] and wraps everything else.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", shared.ErrCacheMiss, what)
	}
	return fmt.Errorf("failed to scan %s: %w", what, err)
}
