// Package query 把列表请求参数转换为参数化的 SQL 片段.
//
// 过滤值一律以占位符绑定；排序列与方向只能来自白名单，
// 因为 SQL 标识符无法参数化，白名单就是防注入的手段.
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yeisme/sociojustice/pkg/apperr"
	"github.com/yeisme/sociojustice/pkg/internal/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 10

	// DateLayout 日期参数格式.
	DateLayout = "2006-01-02"

	// likeEscape LIKE 转义字符，'!' 在各数据库的字符串字面量中都没有特殊含义.
	likeEscape = "!"
)

// SortField 可排序字段.
type SortField string

const (
	SortByDate         SortField = "date"
	SortByJurisdiction SortField = "jurisdiction"
	SortByCaseType     SortField = "case_type"
)

// sortColumns 排序白名单：请求值 -> 列名.
var sortColumns = map[SortField]string{
	SortByDate:         "decisions.date",
	SortByJurisdiction: "decisions.jurisdiction",
	SortByCaseType:     "decisions.case_type",
}

// Order 排序方向.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// DecisionFilter 判决过滤条件，零值表示不过滤.
type DecisionFilter struct {
	Date         *time.Time
	StartDate    *time.Time
	EndDate      *time.Time
	Jurisdiction string
	CaseType     string
	Keyword      string
	Sources      []model.Source
}

// DecisionQuery 校验后的列表请求.
type DecisionQuery struct {
	DecisionFilter

	Page   int
	Limit  int
	SortBy SortField
	Order  Order
}

// Offset 返回 (page-1)*limit.
func (q *DecisionQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ParseDecisionQuery 解析并校验查询字符串，任何非法参数都返回 BadRequest.
func ParseDecisionQuery(values url.Values) (*DecisionQuery, error) {
	q := &DecisionQuery{
		Page:   DefaultPage,
		Limit:  DefaultLimit,
		SortBy: SortByDate,
		Order:  OrderDesc,
	}

	var err error

	if q.Page, err = parseInt(values, "page", DefaultPage, 1, 0); err != nil {
		return nil, err
	}

	if q.Limit, err = parseInt(values, "limit", DefaultLimit, 1, MaxLimit); err != nil {
		return nil, err
	}

	// 偏移量必须能用 int 表示.
	if q.Page > math.MaxInt/q.Limit {
		return nil, apperr.BadRequest("page is too large")
	}

	if v := strings.TrimSpace(values.Get("sortBy")); v != "" {
		q.SortBy = SortField(v)
		if _, ok := sortColumns[q.SortBy]; !ok {
			return nil, apperr.BadRequest("sortBy must be one of date, jurisdiction, case_type")
		}
	}

	if v := strings.TrimSpace(values.Get("order")); v != "" {
		q.Order = Order(strings.ToLower(v))
		if q.Order != OrderAsc && q.Order != OrderDesc {
			return nil, apperr.BadRequest("order must be asc or desc")
		}
	}

	if q.Date, err = parseDate(values, "date"); err != nil {
		return nil, err
	}

	if q.StartDate, err = parseDate(values, "start_date"); err != nil {
		return nil, err
	}

	if q.EndDate, err = parseDate(values, "end_date"); err != nil {
		return nil, err
	}

	q.Jurisdiction = strings.TrimSpace(values.Get("juridiction"))
	q.CaseType = strings.TrimSpace(values.Get("type_affaire"))
	q.Keyword = strings.TrimSpace(values.Get("keyword"))

	if q.Sources, err = parseSources(values); err != nil {
		return nil, err
	}

	return q, nil
}

// parseInt 解析整数参数，max 为 0 表示无上限.
func parseInt(values url.Values, key string, def, minVal, maxVal int) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < minVal || (maxVal > 0 && n > maxVal) {
		if maxVal > 0 {
			return 0, apperr.BadRequest(key + " must be an integer between " +
				strconv.Itoa(minVal) + " and " + strconv.Itoa(maxVal))
		}

		return 0, apperr.BadRequest(key + " must be an integer >= " + strconv.Itoa(minVal))
	}

	return n, nil
}

// ParseDate 解析 YYYY-MM-DD，返回 UTC 零点.
func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
}

func parseDate(values url.Values, key string) (*time.Time, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}

	t, err := ParseDate(raw)
	if err != nil {
		return nil, apperr.BadRequest(key + " must be a date formatted YYYY-MM-DD")
	}

	return &t, nil
}

// parseSources 接受 source=a&source=b、source=a,b 以及 source[]=a 三种写法.
func parseSources(values url.Values) ([]model.Source, error) {
	raw := append(append([]string{}, values["source"]...), values["source[]"]...)

	var (
		out  []model.Source
		seen = map[model.Source]bool{}
	)

	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			s := model.Source(strings.ToLower(strings.TrimSpace(part)))
			if s == "" || seen[s] {
				continue
			}

			if !s.Valid() {
				return nil, apperr.BadRequest("source must be judilibre or archive")
			}

			seen[s] = true
			out = append(out, s)
		}
	}

	return out, nil
}

// Predicate 一个 WHERE 条件及其绑定参数.
type Predicate struct {
	SQL  string
	Args []any
}

// Builder 按固定顺序累积过滤条件，COUNT 与分页查询共用同一组条件.
type Builder struct {
	preds   []Predicate
	sortCol string
	order   Order
	limit   int
	offset  int
}

// NewDecisionBuilder 按 date、start_date、end_date、juridiction、type_affaire、keyword、source
// 的顺序追加条件.
func NewDecisionBuilder(q *DecisionQuery) *Builder {
	b := &Builder{
		sortCol: sortColumns[SortByDate],
		order:   OrderDesc,
		limit:   DefaultLimit,
	}

	if col, ok := sortColumns[q.SortBy]; ok {
		b.sortCol = col
	}

	if q.Order == OrderAsc {
		b.order = OrderAsc
	}

	if q.Limit > 0 {
		b.limit = q.Limit
	}

	if q.Page > 1 {
		b.offset = q.Offset()
	}

	f := q.DecisionFilter
	if f.Date != nil {
		b.add("decisions.date = ?", *f.Date)
	}

	if f.StartDate != nil {
		b.add("decisions.date >= ?", *f.StartDate)
	}

	if f.EndDate != nil {
		b.add("decisions.date <= ?", *f.EndDate)
	}

	if f.Jurisdiction != "" {
		b.add("LOWER(decisions.jurisdiction) LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(f.Jurisdiction))
	}

	if f.CaseType != "" {
		b.add("LOWER(decisions.case_type) LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(f.CaseType))
	}

	if f.Keyword != "" {
		b.add("EXISTS (SELECT 1 FROM decision_tags dt JOIN tags t ON t.id = dt.tag_id "+
			"WHERE dt.decision_id = decisions.id AND LOWER(t.label) LIKE ? ESCAPE '"+likeEscape+"')",
			containsPattern(f.Keyword))
	}

	if len(f.Sources) > 0 {
		sources := make([]string, 0, len(f.Sources))
		for _, s := range f.Sources {
			sources = append(sources, string(s))
		}

		b.add("decisions.source IN ?", sources)
	}

	return b
}

func (b *Builder) add(sql string, args ...any) {
	b.preds = append(b.preds, Predicate{SQL: sql, Args: args})
}

// Predicates 返回条件列表的副本.
func (b *Builder) Predicates() []Predicate {
	return append([]Predicate(nil), b.preds...)
}

// Where 拼接 WHERE 片段（不含 WHERE 关键字）及参数，无条件时返回空串.
func (b *Builder) Where() (string, []any) {
	if len(b.preds) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(b.preds))

	var args []any

	for _, p := range b.preds {
		parts = append(parts, p.SQL)
		args = append(args, p.Args...)
	}

	return strings.Join(parts, " AND "), args
}

// OrderBy 返回白名单内的排序子句，id 作为次序键保证分页稳定.
func (b *Builder) OrderBy() string {
	return b.sortCol + " " + strings.ToUpper(string(b.order)) + ", decisions.id ASC"
}

// Limit 每页条数.
func (b *Builder) Limit() int {
	return b.limit
}

// Offset 跳过的条数.
func (b *Builder) Offset() int {
	return b.offset
}

// containsPattern 构造大小写不敏感的包含匹配模式，转义 LIKE 通配符.
func containsPattern(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
