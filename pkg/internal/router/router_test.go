package router_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/auth"
	"github.com/yeisme/sociojustice/pkg/internal/judilibre"
	"github.com/yeisme/sociojustice/pkg/internal/router"
	"github.com/yeisme/sociojustice/pkg/internal/storage"
	"github.com/yeisme/sociojustice/pkg/internal/storage/db"
	"github.com/yeisme/sociojustice/pkg/internal/storage/files"
	"github.com/yeisme/sociojustice/pkg/internal/testutil"
	"github.com/yeisme/sociojustice/pkg/internal/types"
)

const samplePDF = "%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n"

func newServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := configs.GetConfig()
	*cfg = configs.Defaults()
	cfg.Auth.Enabled = false

	store, err := files.NewLocal(t.TempDir())
	require.NoError(t, err)

	mgr := &storage.Manager{DB: db.Wrap(testutil.NewDB(t)), Files: store}
	src := judilibre.NewFixtureFromResults(
		judilibre.RawDecision{ID: "A", Jurisdiction: "cc", Type: "arret", DecisionDate: "2020-03-01", Title: "Bail"},
		judilibre.RawDecision{ID: "B", Jurisdiction: "ca", DecisionDate: "2020-04-01", Number: "19-1"},
	)

	e := gin.New()
	router.Register(e, router.Deps{Config: cfg, Manager: mgr, Upstream: src, Tokens: auth.NewManager(cfg.Auth)})

	return e
}

func call(e http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

func TestImportListAndKeywords(t *testing.T) {
	e := newServer(t)

	w := call(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(e, http.MethodGet, "/health/files", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"backend":"local"`)

	w = call(e, http.MethodPost, "/api/decisions/import", `{"dateDecisionMin":"2020-01-01","dateDecisionMax":"2020-12-31"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	imp := decode[types.ImportResponse](t, w)
	assert.Equal(t, 2, imp.Fetched)
	assert.Equal(t, 2, imp.Imported)

	w = call(e, http.MethodGet, "/api/decisions?source=judilibre&sortBy=date&order=asc", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	list := decode[types.DecisionListResponse](t, w)
	assert.EqualValues(t, 2, list.TotalCount)
	require.Len(t, list.Results, 2)
	require.NotNil(t, list.Results[0].ExternalID)
	assert.Equal(t, "A", *list.Results[0].ExternalID)

	// keyword 只匹配标签，不匹配标题.
	w = call(e, http.MethodGet, "/api/decisions?keyword=Bail", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode[types.DecisionListResponse](t, w).TotalCount)

	w = call(e, http.MethodPut, "/api/decisions/A/keywords", `{"keywords":[" bail ","bail","congé"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	d := decode[types.Decision](t, w)
	assert.ElementsMatch(t, []string{"bail", "congé"}, d.Keywords)

	w = call(e, http.MethodGet, "/api/decisions?keyword=cong", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[types.DecisionListResponse](t, w).TotalCount)

	w = call(e, http.MethodGet, "/api/decisions/juridictions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Cour d'appel", "Cour de cassation"}, decode[[]string](t, w))
}

func TestErrorResponses(t *testing.T) {
	e := newServer(t)

	w := call(e, http.MethodGet, "/api/decisions/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, decode[types.ErrorResponse](t, w).Status)

	w = call(e, http.MethodGet, "/api/decisions?source=gazette", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(e, http.MethodGet, "/api/decisions?page=922337203685477582&limit=10", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(e, http.MethodPost, "/api/decisions/import", `{"dateDecisionMin":"2020-13-01","dateDecisionMax":"2020-12-31"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(e, http.MethodPut, "/api/decisions/A/keywords", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(e, http.MethodPost, "/api/decisions/import", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[types.ErrorResponse](t, w).Error, "request body is required")
}

func TestArchiveUploadAndDownload(t *testing.T) {
	e := newServer(t)

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Jugement TJ Lyon"))
	require.NoError(t, mw.WriteField("date", "2023-10-02"))
	fw, err := mw.CreateFormFile("file", "jugement.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte(samplePDF))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/archives", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	a := decode[types.Archive](t, w)
	assert.NotEmpty(t, a.DecisionID)

	w = call(e, http.MethodGet, a.DownloadURL, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, samplePDF, w.Body.String())

	w = call(e, http.MethodGet, a.FileURL, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "inline")

	w = call(e, http.MethodGet, "/api/decisions/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[types.DecisionStatsResponse](t, w)
	assert.EqualValues(t, 1, st.Total)
	assert.EqualValues(t, 1, st.Archive)

	w = call(e, http.MethodPost, "/api/archives", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
