//go:build !no_mysql

package db

import "gorm.io/driver/mysql"

func init() { register("mysql", mysql.Open) }
