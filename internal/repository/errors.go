// Package repository contains data access logic separated from HTTP
// handlers. Each repository wraps a *sql.DB and speaks MySQL.
//
// Sentinel values defined here let higher layers distinguish failure
// scenarios without inspecting driver errors. Lookups that find nothing
// return sql.ErrNoRows unchanged, as database/sql does.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrEmailExists is returned when inserting a user whose email is
// already taken. Handlers should translate this into an HTTP 400.
var ErrEmailExists = errors.New("email already exists")

// ErrUnknownUser is returned when a comment references a user id that
// does not exist (foreign key violation).
var ErrUnknownUser = errors.New("unknown user")

// MySQL server error numbers the repositories react to.
const (
	mysqlDuplicateEntry  = 1062
	mysqlNoReferencedRow = 1452
)

func isMySQLError(err error, number uint16) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == number
}
