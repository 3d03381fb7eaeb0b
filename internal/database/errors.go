package database

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// MySQL server error numbers.
const (
	mysqlDuplicateEntry  = 1062 // ER_DUP_ENTRY
	mysqlLockWaitTimeout = 1205 // ER_LOCK_WAIT_TIMEOUT
	mysqlLockDeadlock    = 1213 // ER_LOCK_DEADLOCK
)

// IsUniqueViolation reports whether err is a primary key or unique index
// violation from either supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// IsLockContention reports whether err means the statement lost a lock to
// a concurrent transaction: an InnoDB deadlock or lock wait timeout, or a
// busy or locked SQLite database.  The transaction is dead either way and
// the caller should treat the write as lost to the other one.
func IsLockContention(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlLockDeadlock || me.Number == mysqlLockWaitTimeout
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}
