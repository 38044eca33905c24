//go:build !no_sqlite && !cgo

package db

import "github.com/glebarez/sqlite"

// 无 cgo 时退回纯 Go 的 modernc 实现.
func init() { register("sqlite", sqlite.Open) }
