package sqlite

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rpggio/grantflow/internal/repository"
)

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// mapWriteError translates constraint failures into repository errors.
func mapWriteError(err error, op string) error {
	switch {
	case isUniqueViolation(err):
		return repository.ErrConflict
	case isForeignKeyViolation(err):
		return repository.ErrForeignKeyViolation
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}

// u64 stores a uint64 as decimal TEXT; SQLite integers are signed 64-bit.
type u64 uint64

func (v u64) Value() (driver.Value, error) {
	return strconv.FormatUint(uint64(v), 10), nil
}

func (v *u64) Scan(src any) error {
	var text string
	switch s := src.(type) {
	case string:
		text = s
	case []byte:
		text = string(s)
	case int64:
		if s < 0 {
			return fmt.Errorf("negative amount %d", s)
		}
		*v = u64(s)
		return nil
	case nil:
		return errors.New("null amount")
	default:
		return fmt.Errorf("unsupported amount type %T", src)
	}
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", text, err)
	}
	*v = u64(n)
	return nil
}
