// Package model 定义持久化的数据库模型.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Source 判决来源.
type Source string

const (
	SourceJudilibre Source = "judilibre"
	SourceArchive   Source = "archive"
)

// Valid 判断来源是否为已知取值.
func (s Source) Valid() bool {
	return s == SourceJudilibre || s == SourceArchive
}

// Decision 判决记录，来自上游导入或档案上传的镜像.
type Decision struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`
	// 上游编号，非空时唯一，导入幂等依赖该索引
	ExternalID   *string    `gorm:"size:128;uniqueIndex"  json:"external_id"`
	Title        string     `gorm:"size:512;not null"     json:"title"`
	Content      string     `gorm:"type:text"             json:"content"`
	Date         *time.Time `gorm:"type:date;index"       json:"date"`
	Jurisdiction string     `gorm:"size:255;index"        json:"jurisdiction"`
	CaseType     string     `gorm:"size:255;index"        json:"case_type"`
	Source       Source     `gorm:"size:16;not null;index" json:"source"`
	Public       bool       `gorm:"not null"              json:"public"`
	PDFLink      *string    `gorm:"size:1024"             json:"pdf_link"`
	// source=archive 时指向对应档案，一对一
	ArchiveID  *string    `gorm:"type:varchar(36);uniqueIndex" json:"archive_id"`
	Archive    *Archive   `gorm:"foreignKey:ArchiveID;constraint:OnDelete:RESTRICT" json:"-"`
	ImportedAt *time.Time `gorm:"index"                        json:"imported_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// BeforeCreate 生成缺省的 UUID 主键.
func (d *Decision) BeforeCreate(_ *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	return nil
}

// Tag 关键词标签，label 区分大小写且唯一，创建后不删除.
type Tag struct {
	ID        uint      `gorm:"primaryKey"                    json:"id"`
	Label     string    `gorm:"size:255;not null;uniqueIndex" json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// DecisionTag 判决与标签的多对多关联.
type DecisionTag struct {
	DecisionID string    `gorm:"type:varchar(36);primaryKey"`
	TagID      uint      `gorm:"primaryKey;index"`
	Decision   *Decision `gorm:"foreignKey:DecisionID;constraint:OnDelete:CASCADE"`
	Tag        *Tag      `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE"`
}
