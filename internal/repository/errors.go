// Package repository defines the data access layer and the error values
// shared across repositories.  Driver errors never leave this package raw:
// unique and foreign-key violations from MySQL or SQLite are translated into
// the sentinels below so handlers can map them to client errors.
package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write would violate a uniqueness rule,
// such as a second rating by the same user for the same recipe.
var ErrConflict = errors.New("conflict")

// ErrUsernameTaken and ErrEmailTaken refine ErrConflict for registration.
var (
	ErrUsernameTaken = fmt.Errorf("username already taken: %w", ErrConflict)
	ErrEmailTaken    = fmt.Errorf("email already taken: %w", ErrConflict)
)

// ErrUnknownCategory means a recipe referenced a category that does not
// exist.  It is a validation failure, not a server fault.
var ErrUnknownCategory = errors.New("unknown category")

// ErrCategoryInUse is returned when deleting a category that recipes still
// reference.
var ErrCategoryInUse = errors.New("category in use")

const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

func isUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlRowIsReferenced || me.Number == mysqlNoReferencedRow
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// violates reports whether err is a unique violation on the given index.
// MySQL names the index after "for key" (the duplicate value comes first
// and may contain anything); SQLite names the table.column pair instead.
func violates(err error, index, column string) bool {
	if !isUniqueViolation(err) {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		i := strings.LastIndex(me.Message, "for key")
		return i >= 0 && strings.Contains(me.Message[i:], index)
	}
	return strings.Contains(err.Error(), column)
}

// clock stamps timestamps in UTC at the microsecond precision MySQL keeps.
type clock func() time.Time

func (c clock) now() time.Time {
	t := time.Now()
	if c != nil {
		t = c()
	}
	return t.UTC().Truncate(time.Microsecond)
}
