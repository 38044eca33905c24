package model

import "gorm.io/gorm"

// All 返回需要迁移的全部模型，顺序即建表顺序.
func All() []any {
	return []any{
		&User{},
		&Archive{},
		&Decision{},
		&Tag{},
		&DecisionTag{},
	}
}

// Migrate 自动迁移表结构.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
