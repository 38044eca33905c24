// Package types 定义 HTTP 接口的请求与响应结构.
package types

import "time"

// DateLayout 日期字段统一使用 YYYY-MM-DD.
const DateLayout = "2006-01-02"

// Decision 判决视图，Keywords 按字母序且永不为 null.
type Decision struct {
	ID           string     `json:"id"`
	ExternalID   *string    `json:"external_id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Date         *string    `json:"date"`
	Jurisdiction string     `json:"jurisdiction"`
	CaseType     string     `json:"case_type"`
	Source       string     `json:"source"`
	Public       bool       `json:"public"`
	PDFLink      *string    `json:"pdf_link"`
	ArchiveID    *string    `json:"archive_id"`
	ImportedAt   *time.Time `json:"imported_at"`
	CreatedAt    time.Time  `json:"created_at"`
	Keywords     []string   `json:"keywords"`
}

// DecisionListResponse 判决分页列表.
type DecisionListResponse struct {
	Results    []Decision `json:"results"`
	TotalCount int64      `json:"totalCount"`
}

// UpdateKeywordsRequest 替换判决关键词，keywords 必须是字符串数组.
type UpdateKeywordsRequest struct {
	Keywords []string `json:"keywords" rule:"required,dive,max=255"`
}

// LastImport 最近一次导入的统计.
type LastImport struct {
	Count int64      `json:"count"`
	Date  *time.Time `json:"date"`
}

// DecisionStatsResponse 判决统计.
type DecisionStatsResponse struct {
	Total      int64      `json:"total"`
	Archive    int64      `json:"archive"`
	Judilibre  int64      `json:"judilibre"`
	LastImport LastImport `json:"lastImport"`
}
