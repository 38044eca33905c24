package judilibre_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/sociojustice/pkg/apperr"
	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/judilibre"
	"github.com/yeisme/sociojustice/pkg/internal/storage/kv"
)

type upstream struct {
	tokenCalls  atomic.Int32
	searchCalls atomic.Int32
	lastQuery   atomic.Value
	tokenBody   string
	searchCode  int
	searchBody  string
}

func (u *upstream) server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		u.tokenCalls.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "id", r.PostForm.Get("client_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(u.tokenBody))
	})
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		u.searchCalls.Add(1)
		u.lastQuery.Store(r.URL.Query())
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.WriteHeader(u.searchCode)
		_, _ = w.Write([]byte(u.searchBody))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func newClient(srv *httptest.Server, opts ...judilibre.Option) *judilibre.Client {
	cfg := configs.Defaults().Judilibre
	cfg.BaseURL = srv.URL + "/v1/"
	cfg.TokenURL = srv.URL + "/oauth/token"
	cfg.ClientID = "id"
	cfg.ClientSecret = "secret"
	cfg.Timeout = 5 * time.Second

	return judilibre.NewClient(cfg, opts...)
}

func TestAuthenticateAndSearch(t *testing.T) {
	u := &upstream{
		tokenBody:  `{"access_token":"tok-1","token_type":"Bearer","expires_in":3600}`,
		searchCode: http.StatusOK,
		searchBody: `{"total":2,"results":[{"id":"A","jurisdiction":"cc","number":"20-10.000","decision_date":"2020-05-06","type":"arret","text":"texte"},{"id":"B","summary":"résumé"}]}`,
	}
	srv := u.server(t)
	c := newClient(srv)
	ctx := context.Background()

	token, err := c.Authenticate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	page, err := c.Search(ctx, token, judilibre.Criteria{
		DateMin: "2020-01-01", DateMax: "2020-12-31", Jurisdiction: "cc", CaseType: "arret",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Results, 2)

	q := u.lastQuery.Load().(url.Values)
	assert.Equal(t, "*", q.Get("query"))
	assert.Equal(t, "2020-01-01", q.Get("date_start"))
	assert.Equal(t, "2020-12-31", q.Get("date_end"))
	assert.Equal(t, "cc", q.Get("jurisdiction"))
	assert.Equal(t, "arret", q.Get("type"))
	assert.Equal(t, "50", q.Get("page_size"))

	rec := judilibre.Normalize(page.Results[0])
	assert.Equal(t, "A", rec.ExternalID)
	assert.Equal(t, "Décision n° 20-10.000", rec.Title)
	assert.Equal(t, "texte", rec.Content)
	assert.Equal(t, "Cour de cassation", rec.Jurisdiction)
	assert.Equal(t, "Arrêt", rec.CaseType)
	require.NotNil(t, rec.Date)
	assert.Equal(t, "2020-05-06", rec.Date.Format("2006-01-02"))

	rec = judilibre.Normalize(page.Results[1])
	assert.Equal(t, "Décision sans titre", rec.Title)
	assert.Equal(t, "résumé", rec.Content)
	assert.Nil(t, rec.Date)
}

func TestSearchAcceptsBareArray(t *testing.T) {
	u := &upstream{
		tokenBody:  `{"access_token":"tok-1"}`,
		searchCode: http.StatusOK,
		searchBody: `[{"id":"A"},{"id":"B"},{"id":"C"}]`,
	}
	c := newClient(u.server(t))

	page, err := c.Search(context.Background(), "tok-1", judilibre.Criteria{DateMin: "2020-01-01", DateMax: "2020-01-31", Query: "bail"})
	require.NoError(t, err)
	assert.Len(t, page.Results, 3)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, "bail", u.lastQuery.Load().(url.Values).Get("query"))
}

func TestSearchNon2xxIsUpstreamRequestError(t *testing.T) {
	u := &upstream{
		tokenBody:  `{"access_token":"tok-1"}`,
		searchCode: http.StatusBadGateway,
		searchBody: `{"message":"gateway down"}`,
	}
	c := newClient(u.server(t))

	_, err := c.Search(context.Background(), "tok-1", judilibre.Criteria{DateMin: "2020-01-01", DateMax: "2020-01-31"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstreamRequest, apperr.KindOf(err))

	var se *judilibre.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Contains(t, se.Body, "gateway down")
}

func TestAuthenticateMissingAccessToken(t *testing.T) {
	u := &upstream{tokenBody: `{"token_type":"Bearer"}`}
	c := newClient(u.server(t))

	_, err := c.Authenticate(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstreamAuth, apperr.KindOf(err))
}

func TestAuthenticateFreshTokenByDefault(t *testing.T) {
	u := &upstream{tokenBody: `{"access_token":"tok-1","expires_in":3600}`}
	c := newClient(u.server(t))

	for range 2 {
		_, err := c.Authenticate(context.Background())
		require.NoError(t, err)
	}

	assert.EqualValues(t, 2, u.tokenCalls.Load())
}

func TestAuthenticateWithTokenStore(t *testing.T) {
	u := &upstream{tokenBody: `{"access_token":"tok-1","expires_in":3600}`}

	store := kv.NewMemory()

	c := newClient(u.server(t), judilibre.WithTokenStore(judilibre.NewKVTokenStore(store, time.Hour)))

	for range 3 {
		token, err := c.Authenticate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-1", token)
	}

	assert.EqualValues(t, 1, u.tokenCalls.Load())
}

func TestFixtureSource(t *testing.T) {
	f, err := judilibre.NewFixture("")
	require.NoError(t, err)

	token, err := f.Authenticate(context.Background())
	require.NoError(t, err)

	page, err := f.Search(context.Background(), token, judilibre.Criteria{})
	require.NoError(t, err)
	assert.Len(t, page.Results, 3)

	next, err := f.Search(context.Background(), token, judilibre.Criteria{Page: 1})
	require.NoError(t, err)
	assert.Empty(t, next.Results)
}

func TestCircuitBreakerOpensOnConsecutive5xx(t *testing.T) {
	u := &upstream{tokenBody: `{"access_token":"tok-1"}`, searchCode: http.StatusServiceUnavailable}
	c := newClient(u.server(t), judilibre.WithCircuitBreaker(configs.BreakerConfig{
		Enabled:             true,
		ConsecutiveFailures: 2,
		OpenTimeout:         time.Minute,
		HalfOpenRequests:    1,
	}))

	cr := judilibre.Criteria{DateMin: "2020-01-01", DateMax: "2020-01-31"}

	for range 3 {
		_, err := c.Search(context.Background(), "tok-1", cr)
		assert.Equal(t, apperr.KindUpstreamRequest, apperr.KindOf(err))
	}

	assert.EqualValues(t, 2, u.searchCalls.Load())
}

func TestCircuitBreakerIgnores4xx(t *testing.T) {
	u := &upstream{tokenBody: `{"access_token":"tok-1"}`, searchCode: http.StatusBadRequest}
	c := newClient(u.server(t), judilibre.WithCircuitBreaker(configs.BreakerConfig{
		Enabled:             true,
		ConsecutiveFailures: 1,
		OpenTimeout:         time.Minute,
		HalfOpenRequests:    1,
	}))

	for range 3 {
		_, err := c.Search(context.Background(), "tok-1", judilibre.Criteria{DateMin: "2020-01-01", DateMax: "2020-01-31"})
		require.Error(t, err)
	}

	assert.EqualValues(t, 3, u.searchCalls.Load())
}
