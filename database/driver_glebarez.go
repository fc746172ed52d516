//go:build sqlite_glebarez

package database

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// GetDialect opens path with the pure Go sqlite port.
func GetDialect(path string) gorm.Dialector {
	return sqlite.Open(path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
}
