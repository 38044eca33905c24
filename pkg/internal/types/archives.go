package types

import "time"

// CreateArchiveForm 档案上传的表单字段，文件字段名为 file.
type CreateArchiveForm struct {
	Title        string `form:"title"        rule:"required,max=512"`
	Content      string `form:"content"`
	Date         string `form:"date"         rule:"omitempty,ymd"`
	Jurisdiction string `form:"jurisdiction" rule:"max=255"`
	CaseType     string `form:"case_type"    rule:"max=255"`
	Location     string `form:"location"     rule:"max=255"`
}

// Archive 档案视图，链接由 id 推导.
type Archive struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Date         *string   `json:"date"`
	Jurisdiction string    `json:"jurisdiction"`
	CaseType     string    `json:"case_type"`
	Location     string    `json:"location"`
	UserID       string    `json:"user_id"`
	FileName     string    `json:"file_name"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
	DecisionID   string    `json:"decision_id,omitempty"`
	IsPDF        bool      `json:"is_pdf"`
	FileURL      string    `json:"file_url"`
	DownloadURL  string    `json:"download_url"`
}
