package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪 ID，取自请求的 span.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// -------------------------- 判决领域 --------------------------

// ImportCriteria 导入运行使用的检索条件.
type ImportCriteria struct {
	DateMin      string `json:"date_min"`
	DateMax      string `json:"date_max"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	CaseType     string `json:"case_type,omitempty"`
	Query        string `json:"query,omitempty"`
}

// DecisionImportedPayload 一次导入运行的汇总.
type DecisionImportedPayload struct {
	RunAt       time.Time      `json:"run_at"`
	Trigger     string         `json:"trigger"` // api / scheduler / cli
	Criteria    ImportCriteria `json:"criteria"`
	Fetched     int            `json:"fetched"`
	Imported    int            `json:"imported"`
	Skipped     int            `json:"skipped"`
	Failed      int            `json:"failed"`
	ExternalIDs []string       `json:"external_ids,omitempty"` // 本次新增的判决
}

// KeywordsUpdatedPayload 判决关键词替换.
type KeywordsUpdatedPayload struct {
	DecisionID string   `json:"decision_id"`
	ExternalID string   `json:"external_id,omitempty"`
	Keywords   []string `json:"keywords"`
}

// -------------------------- 档案领域 --------------------------

// ArchiveCreatedPayload 档案创建完成.
type ArchiveCreatedPayload struct {
	ArchiveID  string `json:"archive_id"`
	DecisionID string `json:"decision_id"`
	UserID     string `json:"user_id,omitempty"`
	Title      string `json:"title"`
	FilePath   string `json:"file_path"`
	Size       int64  `json:"size"`
}
