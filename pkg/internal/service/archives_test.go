package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/sociojustice/pkg/apperr"
	"github.com/yeisme/sociojustice/pkg/internal/model"
	"github.com/yeisme/sociojustice/pkg/internal/repository"
	"github.com/yeisme/sociojustice/pkg/internal/service"
	"github.com/yeisme/sociojustice/pkg/internal/storage/files"
	"github.com/yeisme/sociojustice/pkg/internal/testutil"
	"github.com/yeisme/sociojustice/pkg/internal/types"
)

const samplePDF = "%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n"

func pdfUpload(body string) *service.Upload {
	return &service.Upload{FileName: "jugement.pdf", Size: int64(len(body)), Body: strings.NewReader(body)}
}

func fixedName(rel string) service.ArchiveOption {
	return service.WithFileNamer(func(time.Time) string { return rel })
}

func TestArchiveCreateAndOpen(t *testing.T) {
	db := testutil.NewDB(t)
	store, err := files.NewLocal(t.TempDir())
	require.NoError(t, err)

	svc := service.NewArchiveServiceWith(repository.NewArchiveRepository(db), store, nil, fixedName("2024/01/a.pdf"))
	ctx := context.Background()

	form := &types.CreateArchiveForm{Title: " Jugement TJ Lyon ", Date: "2023-10-02", Jurisdiction: "Tribunal judiciaire"}
	a, err := svc.Create(ctx, "user-1", form, pdfUpload(samplePDF))
	require.NoError(t, err)
	assert.Equal(t, "Jugement TJ Lyon", a.Title)
	assert.NotEmpty(t, a.DecisionID)
	require.NotNil(t, a.Date)
	assert.Equal(t, "2023-10-02", *a.Date)
	assert.Equal(t, "/api/archives/"+a.ID+"/file", a.FileURL)
	assert.Equal(t, a.FileURL+"?download=1", a.DownloadURL)

	var mirror model.Decision
	require.NoError(t, db.Where("id = ?", a.DecisionID).Take(&mirror).Error)
	assert.Equal(t, model.SourceArchive, mirror.Source)
	require.NotNil(t, mirror.ArchiveID)
	assert.Equal(t, a.ID, *mirror.ArchiveID)

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.DecisionID, got.DecisionID)

	f, err := svc.Open(ctx, a.ID)
	require.NoError(t, err)

	defer f.Body.Close()

	b, err := io.ReadAll(f.Body)
	require.NoError(t, err)
	assert.Equal(t, samplePDF, string(b))
	assert.Equal(t, "jugement.pdf", f.FileName)

	_, err = svc.Get(ctx, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestArchiveCreateValidation(t *testing.T) {
	db := testutil.NewDB(t)
	store, err := files.NewLocal(t.TempDir())
	require.NoError(t, err)

	svc := service.NewArchiveServiceWith(repository.NewArchiveRepository(db), store, nil, service.WithMaxBytes(64))
	ctx := context.Background()
	form := &types.CreateArchiveForm{Title: "t"}

	_, err = svc.Create(ctx, "", form, pdfUpload(samplePDF))
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = svc.Create(ctx, "u", &types.CreateArchiveForm{Title: "  "}, pdfUpload(samplePDF))
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	_, err = svc.Create(ctx, "u", form, nil)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	_, err = svc.Create(ctx, "u", form, pdfUpload("plain text, not a pdf"))
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	_, err = svc.Create(ctx, "u", form, pdfUpload(samplePDF+strings.Repeat("x", 64)))
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	_, err = svc.Create(ctx, "u", &types.CreateArchiveForm{Title: "t", Date: "02/10/2023"}, pdfUpload(samplePDF))
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	var n int64
	require.NoError(t, db.Model(&model.Archive{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestArchiveCreateOutsideRoot(t *testing.T) {
	db := testutil.NewDB(t)
	store, err := files.NewLocal(t.TempDir())
	require.NoError(t, err)

	svc := service.NewArchiveServiceWith(repository.NewArchiveRepository(db), store, nil, fixedName("../x.pdf"))

	_, err = svc.Create(context.Background(), "u", &types.CreateArchiveForm{Title: "t"}, pdfUpload(samplePDF))
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	var archives, decisions int64
	require.NoError(t, db.Model(&model.Archive{}).Count(&archives).Error)
	require.NoError(t, db.Model(&model.Decision{}).Count(&decisions).Error)
	assert.Zero(t, archives)
	assert.Zero(t, decisions)
}

type brokenArchives struct {
	repository.ArchiveRepository
}

func (brokenArchives) CreateWithDecision(context.Context, *model.Archive, *model.Decision) error {
	return errors.New("insert failed")
}

func TestArchiveCreateRemovesOrphanFile(t *testing.T) {
	store, err := files.NewLocal(t.TempDir())
	require.NoError(t, err)

	svc := service.NewArchiveServiceWith(brokenArchives{}, store, nil, fixedName("2024/02/b.pdf"))

	_, err = svc.Create(context.Background(), "u", &types.CreateArchiveForm{Title: "t"}, pdfUpload(samplePDF))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))

	_, _, err = store.Open(context.Background(), "2024/02/b.pdf")
	assert.ErrorIs(t, err, files.ErrNotFound)
}

func TestArchiveOpenRejectsStoredPathOutsideRoot(t *testing.T) {
	db := testutil.NewDB(t)
	store, err := files.NewLocal(t.TempDir())
	require.NoError(t, err)

	a := &model.Archive{Title: "t", FilePath: "../../etc/passwd", UserID: "u"}
	require.NoError(t, repository.NewArchiveRepository(db).CreateWithDecision(context.Background(), a, &model.Decision{Title: "t", Public: true}))

	svc := service.NewArchiveServiceWith(repository.NewArchiveRepository(db), store, nil)

	_, err = svc.Open(context.Background(), a.ID)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}
