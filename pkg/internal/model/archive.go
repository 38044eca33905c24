package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Archive 用户上传的 PDF 档案及其元数据.
type Archive struct {
	ID           string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title        string     `gorm:"size:512;not null"           json:"title"`
	Content      string     `gorm:"type:text"                   json:"content"`
	Date         *time.Time `gorm:"type:date;index"             json:"date"`
	Jurisdiction string     `gorm:"size:255;index"              json:"jurisdiction"`
	CaseType     string     `gorm:"size:255;index"              json:"case_type"`
	Location     string     `gorm:"size:255"                    json:"location"`
	UserID       string     `gorm:"type:varchar(36);index"      json:"user_id"`
	// FilePath 相对上传根目录的路径
	FilePath  string    `gorm:"size:1024;not null" json:"file_path"`
	FileName  string    `gorm:"size:512"           json:"file_name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate 生成缺省的 UUID 主键.
func (a *Archive) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	return nil
}
