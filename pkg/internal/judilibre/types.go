// Package judilibre 对接 PISTE 平台上的 Judilibre 判决检索接口.
//
// Client 通过 OAuth2 client credentials 获取令牌后检索判决，
// Fixture 在离线或演示环境下提供同样的契约.
package judilibre

import (
	"context"
	"strings"
	"time"
)

// Source 上游判决来源.
type Source interface {
	// Authenticate 获取访问令牌.
	Authenticate(ctx context.Context) (string, error)
	// Search 按条件检索一页判决.
	Search(ctx context.Context, token string, c Criteria) (*Page, error)
}

// Criteria 检索条件，DateMin/DateMax 为 YYYY-MM-DD.
type Criteria struct {
	DateMin      string
	DateMax      string
	Jurisdiction string
	CaseType     string
	Query        string
	// Page 从 0 开始
	Page int
}

// Page 一页检索结果.
type Page struct {
	Results []RawDecision
	Total   int
}

// RawDecision 上游返回的判决条目，只保留用到的字段.
type RawDecision struct {
	ID           string `json:"id"`
	Jurisdiction string `json:"jurisdiction"`
	Chamber      string `json:"chamber"`
	Number       string `json:"number"`
	DecisionDate string `json:"decision_date"`
	Type         string `json:"type"`
	Solution     string `json:"solution"`
	Summary      string `json:"summary"`
	Text         string `json:"text"`
	Title        string `json:"title"`
}

// Record 归一化后的判决.
type Record struct {
	ExternalID   string
	Title        string
	Content      string
	Date         *time.Time
	Jurisdiction string
	CaseType     string
}

const untitled = "Décision sans titre"

var jurisdictionLabels = map[string]string{
	"cc":   "Cour de cassation",
	"ca":   "Cour d'appel",
	"tj":   "Tribunal judiciaire",
	"tcom": "Tribunal de commerce",
}

var typeLabels = map[string]string{
	"arret":      "Arrêt",
	"ordonnance": "Ordonnance",
	"qpc":        "QPC",
	"avis":       "Avis",
	"saisie":     "Saisie pour avis",
	"other":      "Autre",
}

// Normalize 把上游条目转换为本系统的判决字段，缺失的标题与正文使用占位值.
func Normalize(r RawDecision) Record {
	rec := Record{
		ExternalID:   strings.TrimSpace(r.ID),
		Title:        strings.TrimSpace(r.Title),
		Content:      r.Text,
		Jurisdiction: label(jurisdictionLabels, r.Jurisdiction),
		CaseType:     label(typeLabels, r.Type),
	}

	if rec.Title == "" {
		if n := strings.TrimSpace(r.Number); n != "" {
			rec.Title = "Décision n° " + n
		} else {
			rec.Title = untitled
		}
	}

	if strings.TrimSpace(rec.Content) == "" {
		rec.Content = r.Summary
	}

	if d := strings.TrimSpace(r.DecisionDate); len(d) >= len("2006-01-02") {
		if t, err := time.ParseInLocation("2006-01-02", d[:10], time.UTC); err == nil {
			rec.Date = &t
		}
	}

	return rec
}

func label(labels map[string]string, code string) string {
	code = strings.TrimSpace(code)
	if l, ok := labels[strings.ToLower(code)]; ok {
		return l
	}

	return code
}
