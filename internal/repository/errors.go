package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateBusinessID = errors.New("restaurant with this CNPJ already exists")
	ErrDuplicateUsername   = errors.New("username already registered")
	ErrDuplicateEmail      = errors.New("email already registered")
)

const mysqlDuplicateEntry = 1062

// duplicateKey reports whether err is a unique-index violation and, if so,
// the error message that names the offending index.
func duplicateKey(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return me.Message, true
	}
	// sqlite reports "UNIQUE constraint failed: table.column"
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return msg, true
	}
	return "", false
}

// duplicateIndex extracts the index or column named in a duplicate-key message.
func duplicateIndex(msg string) string {
	for _, marker := range []string{"for key ", "constraint failed: "} {
		if i := strings.LastIndex(msg, marker); i >= 0 {
			return strings.Trim(msg[i+len(marker):], "'` ")
		}
	}
	return ""
}
