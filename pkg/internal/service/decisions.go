package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/yeisme/sociojustice/pkg/apperr"
	"github.com/yeisme/sociojustice/pkg/internal/query"
	"github.com/yeisme/sociojustice/pkg/internal/repository"
	"github.com/yeisme/sociojustice/pkg/internal/types"
	"github.com/yeisme/sociojustice/pkg/queue"
)

// DecisionService 判决检索、关键词与统计.
type DecisionService struct {
	decisions repository.DecisionRepository
	tags      repository.TagRepository
	events    *queue.Events
}

// NewDecisionService 从 context 获取依赖实例.
func NewDecisionService(ctx context.Context) *DecisionService {
	mgr := managerFrom(ctx)
	repos := mgr.Repositories()

	return NewDecisionServiceWith(repos.Decisions, repos.Tags, eventsFrom(mgr))
}

// NewDecisionServiceWith 直接注入仓储，events 可为 nil.
func NewDecisionServiceWith(decisions repository.DecisionRepository, tags repository.TagRepository, events *queue.Events) *DecisionService {
	return &DecisionService{decisions: decisions, tags: tags, events: events}
}

// List 解析查询参数并返回一页判决与匹配总数.
func (s *DecisionService) List(ctx context.Context, values url.Values) (*types.DecisionListResponse, error) {
	q, err := query.ParseDecisionQuery(values)
	if err != nil {
		return nil, err
	}

	rows, total, err := s.decisions.List(ctx, query.NewDecisionBuilder(q))
	if err != nil {
		return nil, apperr.Internal("failed to list decisions", err)
	}

	resp := &types.DecisionListResponse{Results: make([]types.Decision, 0, len(rows)), TotalCount: total}
	for i := range rows {
		resp.Results = append(resp.Results, toDecision(&rows[i]))
	}

	return resp, nil
}

// Get 按内部 id 或上游编号读取判决.
func (s *DecisionService) Get(ctx context.Context, id string) (*types.Decision, error) {
	rec, err := s.decisions.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, notFoundOr(err, "decision not found", "failed to load decision")
	}

	d := toDecision(rec)

	return &d, nil
}

// UpdateKeywords 整体替换判决的关键词并返回更新后的判决.
func (s *DecisionService) UpdateKeywords(ctx context.Context, id string, keywords []string) (*types.Decision, error) {
	if keywords == nil {
		return nil, apperr.BadRequest("keywords must be an array of strings")
	}

	rec, err := s.decisions.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, notFoundOr(err, "decision not found", "failed to load decision")
	}

	labels := NormalizeKeywords(keywords)
	if err := s.tags.ReplaceForDecision(ctx, rec.ID, labels); err != nil {
		return nil, notFoundOr(err, "decision not found", "failed to update keywords")
	}

	updated, err := s.decisions.FindByID(ctx, rec.ID)
	if err != nil {
		return nil, notFoundOr(err, "decision not found", "failed to reload decision")
	}

	d := toDecision(updated)

	payload := queue.KeywordsUpdatedPayload{DecisionID: d.ID, Keywords: d.Keywords}
	if d.ExternalID != nil {
		payload.ExternalID = *d.ExternalID
	}

	s.events.KeywordsUpdated(ctx, payload)

	return &d, nil
}

// NormalizeKeywords 去除首尾空白与空值，保序去重（区分大小写）.
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))

	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}

		if _, dup := seen[k]; dup {
			continue
		}

		seen[k] = struct{}{}
		out = append(out, k)
	}

	return out
}

// Stats 判决总数、按来源计数与最近一次导入.
func (s *DecisionService) Stats(ctx context.Context) (*types.DecisionStatsResponse, error) {
	st, err := s.decisions.Stats(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to compute stats", err)
	}

	return &types.DecisionStatsResponse{
		Total:     st.Total,
		Archive:   st.Archive,
		Judilibre: st.Judilibre,
		LastImport: types.LastImport{
			Count: st.LastImportCount,
			Date:  st.LastImportDate,
		},
	}, nil
}

// Jurisdictions 去重排序后的非空管辖法院.
func (s *DecisionService) Jurisdictions(ctx context.Context) ([]string, error) {
	vals, err := s.decisions.DistinctJurisdictions(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list jurisdictions", err)
	}

	return nonNil(vals), nil
}

// CaseTypes 去重排序后的非空案件类型.
func (s *DecisionService) CaseTypes(ctx context.Context) ([]string, error) {
	vals, err := s.decisions.DistinctCaseTypes(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list case types", err)
	}

	return nonNil(vals), nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}

	return v
}
