//go:build !no_postgres

package db

import "gorm.io/driver/postgres"

func init() { register("postgres", postgres.Open) }
