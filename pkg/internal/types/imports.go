package types

import "time"

// ImportRequest 从上游导入判决，日期为 YYYY-MM-DD 且 min 不晚于 max.
type ImportRequest struct {
	DateDecisionMin string `json:"dateDecisionMin" rule:"required,ymd"`
	DateDecisionMax string `json:"dateDecisionMax" rule:"required,ymd"`
	Jurisdiction    string `json:"jurisdiction"    rule:"max=64"`
	CaseType        string `json:"caseType"        rule:"max=64"`
	Query           string `json:"query"           rule:"max=512"`
}

// ImportStatus 单条记录的导入结果.
type ImportStatus string

const (
	ImportInserted ImportStatus = "inserted"
	ImportSkipped  ImportStatus = "skipped"
	ImportFailed   ImportStatus = "failed"
)

// ImportResultItem 单条上游记录及其导入结果.
type ImportResultItem struct {
	ExternalID   string       `json:"external_id"`
	Title        string       `json:"title"`
	Date         *string      `json:"date"`
	Jurisdiction string       `json:"jurisdiction"`
	CaseType     string       `json:"case_type"`
	Status       ImportStatus `json:"status"`
	Error        string       `json:"error,omitempty"`
}

// ImportResponse 一次导入运行的结果.
type ImportResponse struct {
	Imported  int                `json:"imported"`
	Fetched   int                `json:"fetched"`
	Skipped   int                `json:"skipped"`
	Failed    int                `json:"failed"`
	Timestamp time.Time          `json:"timestamp"`
	Results   []ImportResultItem `json:"results"`
}
