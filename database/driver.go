//go:build !sqlite_glebarez

package database

import (
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"gorm.io/gorm"
)

// GetDialect opens path with the wasm-embedded sqlite build.
func GetDialect(path string) gorm.Dialector {
	return gormlite.Open("file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
}
