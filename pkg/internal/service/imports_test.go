package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/sociojustice/pkg/apperr"
	"github.com/yeisme/sociojustice/pkg/internal/judilibre"
	"github.com/yeisme/sociojustice/pkg/internal/model"
	"github.com/yeisme/sociojustice/pkg/internal/repository"
	"github.com/yeisme/sociojustice/pkg/internal/service"
	"github.com/yeisme/sociojustice/pkg/internal/testutil"
	"github.com/yeisme/sociojustice/pkg/internal/types"
)

func window() *types.ImportRequest {
	return &types.ImportRequest{DateDecisionMin: "2020-01-01", DateDecisionMax: "2020-12-31"}
}

func TestImportIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	src := judilibre.NewFixtureFromResults(
		judilibre.RawDecision{ID: "A", Jurisdiction: "cc", Type: "arret", DecisionDate: "2020-03-01", Title: "A"},
		judilibre.RawDecision{ID: "B", Jurisdiction: "ca", DecisionDate: "2020-04-01", Number: "19-1"},
		judilibre.RawDecision{ID: "C", Summary: "résumé"},
	)

	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	svc := service.NewImportServiceWith(repository.NewDecisionRepository(db), src, nil,
		service.WithMaxPages(5), service.WithClock(func() time.Time { return fixed }))

	first, err := svc.Import(context.Background(), window(), service.TriggerAPI)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Fetched)
	assert.Equal(t, 3, first.Imported)
	assert.Zero(t, first.Skipped)
	assert.Equal(t, fixed, first.Timestamp)
	require.Len(t, first.Results, 3)
	assert.Equal(t, "Cour de cassation", first.Results[0].Jurisdiction)
	assert.Equal(t, "Décision n° 19-1", first.Results[1].Title)

	second, err := svc.Import(context.Background(), window(), service.TriggerAPI)
	require.NoError(t, err)
	assert.Equal(t, 3, second.Fetched)
	assert.Zero(t, second.Imported)
	assert.Equal(t, 3, second.Skipped)

	var rows []model.Decision
	require.NoError(t, db.Order("external_id").Find(&rows).Error)
	require.Len(t, rows, 3)

	for _, r := range rows {
		assert.Equal(t, model.SourceJudilibre, r.Source)
		assert.True(t, r.Public)
		require.NotNil(t, r.ImportedAt)
		assert.True(t, fixed.Equal(*r.ImportedAt))
	}
}

func TestImportMarksMissingExternalIDFailed(t *testing.T) {
	db := testutil.NewDB(t)
	src := judilibre.NewFixtureFromResults(
		judilibre.RawDecision{ID: "X"},
		judilibre.RawDecision{ID: "  "},
	)
	svc := service.NewImportServiceWith(repository.NewDecisionRepository(db), src, nil)

	resp, err := svc.Import(context.Background(), window(), service.TriggerCLI)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Fetched)
	assert.Equal(t, 1, resp.Imported)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, types.ImportFailed, resp.Results[1].Status)
}

func TestImportRejectsBadWindow(t *testing.T) {
	svc := service.NewImportServiceWith(nil, judilibre.NewFixtureFromResults(), nil)

	cases := []*types.ImportRequest{
		nil,
		{DateDecisionMin: "2020-13-01", DateDecisionMax: "2020-12-31"},
		{DateDecisionMin: "2020-01-01", DateDecisionMax: ""},
		{DateDecisionMin: "2021-01-01", DateDecisionMax: "2020-01-01"},
	}

	for _, req := range cases {
		_, err := svc.Import(context.Background(), req, service.TriggerAPI)
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	}
}

type failingSource struct {
	authErr   error
	searchErr error
}

func (f failingSource) Authenticate(context.Context) (string, error) {
	if f.authErr != nil {
		return "", f.authErr
	}

	return "t", nil
}

func (f failingSource) Search(context.Context, string, judilibre.Criteria) (*judilibre.Page, error) {
	return nil, f.searchErr
}

func TestImportUpstreamFailures(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewDecisionRepository(db)

	_, err := service.NewImportServiceWith(repo, failingSource{authErr: errors.New("401")}, nil).
		Import(context.Background(), window(), service.TriggerAPI)
	assert.Equal(t, apperr.KindUpstreamAuth, apperr.KindOf(err))

	_, err = service.NewImportServiceWith(repo, failingSource{searchErr: errors.New("boom")}, nil).
		Import(context.Background(), window(), service.TriggerAPI)
	assert.Equal(t, apperr.KindUpstreamRequest, apperr.KindOf(err))

	var n int64
	require.NoError(t, db.Model(&model.Decision{}).Count(&n).Error)
	assert.Zero(t, n)
}
