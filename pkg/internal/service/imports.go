package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yeisme/sociojustice/pkg/apperr"
	"github.com/yeisme/sociojustice/pkg/configs"
	ctxPkg "github.com/yeisme/sociojustice/pkg/context"
	"github.com/yeisme/sociojustice/pkg/internal/judilibre"
	"github.com/yeisme/sociojustice/pkg/internal/model"
	"github.com/yeisme/sociojustice/pkg/internal/query"
	"github.com/yeisme/sociojustice/pkg/internal/repository"
	"github.com/yeisme/sociojustice/pkg/internal/types"
	nlog "github.com/yeisme/sociojustice/pkg/log"
	"github.com/yeisme/sociojustice/pkg/metrics"
	"github.com/yeisme/sociojustice/pkg/queue"
	"github.com/yeisme/sociojustice/pkg/tracing"
)

// 导入触发来源，记录在事件中.
const (
	TriggerAPI       = "api"
	TriggerScheduler = "scheduler"
	TriggerCLI       = "cli"
)

// ImportService 从上游拉取判决并幂等写入.
type ImportService struct {
	decisions repository.DecisionRepository
	source    judilibre.Source
	events    *queue.Events
	maxPages  int
	now       func() time.Time
}

// ImportOption 配置 ImportService.
type ImportOption func(*ImportService)

// WithMaxPages 每次导入最多拉取的页数，小于 1 时按 1 处理.
func WithMaxPages(n int) ImportOption {
	return func(s *ImportService) { s.maxPages = max(n, 1) }
}

// WithClock 替换时间来源.
func WithClock(now func() time.Time) ImportOption {
	return func(s *ImportService) { s.now = now }
}

// NewImportService 从 context 获取依赖实例.
func NewImportService(ctx context.Context) *ImportService {
	mgr := managerFrom(ctx)

	return NewImportServiceWith(
		mgr.Repositories().Decisions,
		ctxPkg.GetUpstream(ctx),
		eventsFrom(mgr),
		WithMaxPages(configs.GetConfig().Judilibre.MaxPages),
	)
}

// NewImportServiceWith 直接注入依赖，events 可为 nil.
func NewImportServiceWith(decisions repository.DecisionRepository, source judilibre.Source, events *queue.Events, opts ...ImportOption) *ImportService {
	s := &ImportService{decisions: decisions, source: source, events: events, maxPages: 1, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Import 执行一次导入：认证、逐页检索、逐条写入.
// 每页写完再请求下一页；同一次运行的记录共用一个导入时间戳.
func (s *ImportService) Import(ctx context.Context, req *types.ImportRequest, trigger string) (*types.ImportResponse, error) {
	criteria, err := importCriteria(req)
	if err != nil {
		return nil, err
	}

	if s.source == nil {
		return nil, apperr.Internal("upstream source not configured", nil)
	}

	ctx, span := tracing.StartSpan(ctx, "decisions.import")
	defer span.End()

	l := ctxPkg.WithTraceContext(ctx, nlog.Component("import").With().Str("trigger", trigger).Logger())

	token, err := s.source.Authenticate(ctx)
	if err != nil {
		tracing.Fail(span, err)
		return nil, upstreamErr(err, apperr.KindUpstreamAuth, "upstream authentication failed")
	}

	runAt := s.now().UTC().Truncate(time.Microsecond)
	resp := &types.ImportResponse{Timestamp: runAt, Results: make([]types.ImportResultItem, 0)}
	inserted := make([]string, 0)

	for page := 0; page < s.maxPages; page++ {
		criteria.Page = page

		p, err := s.source.Search(ctx, token, criteria)
		if err != nil {
			l.Warn().Err(err).Int("page", page).Int("fetched", resp.Fetched).Msg("upstream search failed")
			tracing.Fail(span, err)
			return nil, upstreamErr(err, apperr.KindUpstreamRequest, "upstream search failed")
		}

		for _, raw := range p.Results {
			if err := ctx.Err(); err != nil {
				return nil, apperr.Internal("import cancelled", err)
			}

			item := s.writeOne(ctx, judilibre.Normalize(raw), runAt)
			resp.Results = append(resp.Results, item)
			resp.Fetched++

			switch item.Status {
			case types.ImportInserted:
				resp.Imported++
				inserted = append(inserted, item.ExternalID)
			case types.ImportSkipped:
				resp.Skipped++
			case types.ImportFailed:
				resp.Failed++
			}

			metrics.ImportRecords.WithLabelValues(string(item.Status)).Inc()
		}

		if len(p.Results) == 0 || (p.Total > 0 && resp.Fetched >= p.Total) {
			break
		}
	}

	span.SetAttributes(
		attribute.String("import.trigger", trigger),
		attribute.Int("import.fetched", resp.Fetched),
		attribute.Int("import.imported", resp.Imported),
	)

	l.Info().
		Int("fetched", resp.Fetched).
		Int("imported", resp.Imported).
		Int("skipped", resp.Skipped).
		Int("failed", resp.Failed).
		Time("run_at", runAt).
		Msg("import finished")

	s.events.DecisionImported(ctx, queue.DecisionImportedPayload{
		RunAt:   runAt,
		Trigger: trigger,
		Criteria: queue.ImportCriteria{
			DateMin:      criteria.DateMin,
			DateMax:      criteria.DateMax,
			Jurisdiction: criteria.Jurisdiction,
			CaseType:     criteria.CaseType,
			Query:        criteria.Query,
		},
		Fetched:     resp.Fetched,
		Imported:    resp.Imported,
		Skipped:     resp.Skipped,
		Failed:      resp.Failed,
		ExternalIDs: inserted,
	})

	return resp, nil
}

// writeOne 写入单条记录，失败只影响该条.
func (s *ImportService) writeOne(ctx context.Context, rec judilibre.Record, runAt time.Time) types.ImportResultItem {
	item := types.ImportResultItem{
		ExternalID:   rec.ExternalID,
		Title:        rec.Title,
		Date:         formatDate(rec.Date),
		Jurisdiction: rec.Jurisdiction,
		CaseType:     rec.CaseType,
	}

	if rec.ExternalID == "" {
		item.Status = types.ImportFailed
		item.Error = "missing external id"

		return item
	}

	externalID := rec.ExternalID
	importedAt := runAt
	d := &model.Decision{
		ExternalID:   &externalID,
		Title:        rec.Title,
		Content:      rec.Content,
		Date:         rec.Date,
		Jurisdiction: rec.Jurisdiction,
		CaseType:     rec.CaseType,
		Source:       model.SourceJudilibre,
		Public:       true,
		ImportedAt:   &importedAt,
	}

	outcome, err := s.decisions.TryInsert(ctx, d)

	switch {
	case err != nil:
		item.Status = types.ImportFailed
		item.Error = err.Error()
	case outcome == repository.Inserted:
		item.Status = types.ImportInserted
	default:
		item.Status = types.ImportSkipped
	}

	return item
}

// importCriteria 校验日期窗口并转换为上游检索条件.
func importCriteria(req *types.ImportRequest) (judilibre.Criteria, error) {
	if req == nil {
		return judilibre.Criteria{}, apperr.BadRequest("missing import request")
	}

	minDate, err := query.ParseDate(req.DateDecisionMin)
	if err != nil {
		return judilibre.Criteria{}, apperr.BadRequest("dateDecisionMin must be YYYY-MM-DD")
	}

	maxDate, err := query.ParseDate(req.DateDecisionMax)
	if err != nil {
		return judilibre.Criteria{}, apperr.BadRequest("dateDecisionMax must be YYYY-MM-DD")
	}

	if maxDate.Before(minDate) {
		return judilibre.Criteria{}, apperr.BadRequest("dateDecisionMin must not be after dateDecisionMax")
	}

	return judilibre.Criteria{
		DateMin:      req.DateDecisionMin,
		DateMax:      req.DateDecisionMax,
		Jurisdiction: req.Jurisdiction,
		CaseType:     req.CaseType,
		Query:        req.Query,
	}, nil
}

// upstreamErr 保留已分类的 apperr，其余按给定类型包装.
func upstreamErr(err error, kind apperr.Kind, msg string) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}

	return apperr.New(kind, msg, err)
}
