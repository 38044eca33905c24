//go:build !no_sqlite && cgo

package db

import "gorm.io/driver/sqlite"

// cgo 可用时使用 mattn/go-sqlite3.
func init() { register("sqlite", sqlite.Open) }
