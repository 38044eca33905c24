package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/sociojustice/pkg/internal/model"
	"github.com/yeisme/sociojustice/pkg/internal/repository"
	"github.com/yeisme/sociojustice/pkg/internal/testutil"
)

func TestCreateWithDecision(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewArchiveRepository(db)
	ctx := context.Background()

	a := &model.Archive{Title: "Jugement", FilePath: "2024/01/x.pdf", UserID: "u1"}
	d := &model.Decision{Title: "Jugement", Public: true}

	require.NoError(t, repo.CreateWithDecision(ctx, a, d))
	require.NotEmpty(t, a.ID)
	require.NotNil(t, d.ArchiveID)
	assert.Equal(t, a.ID, *d.ArchiveID)
	assert.Equal(t, model.SourceArchive, d.Source)

	got, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024/01/x.pdf", got.FilePath)

	mirror, err := repo.MirrorDecisionID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, mirror)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateWithDecisionRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewArchiveRepository(db)
	ctx := context.Background()

	existing := &model.Decision{Title: "occupied", Source: model.SourceJudilibre, Public: true}
	require.NoError(t, db.Create(existing).Error)

	// 镜像判决主键冲突，档案插入必须一并回滚
	a := &model.Archive{Title: "Jugement", FilePath: "2024/01/y.pdf"}
	d := &model.Decision{ID: existing.ID, Title: "Jugement", Public: true}

	require.Error(t, repo.CreateWithDecision(ctx, a, d))

	var archives, decisions int64
	require.NoError(t, db.Model(&model.Archive{}).Count(&archives).Error)
	require.NoError(t, db.Model(&model.Decision{}).Where("source = ?", model.SourceArchive).Count(&decisions).Error)
	assert.Zero(t, archives)
	assert.Zero(t, decisions)
}

func TestUserRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	u := &model.User{Email: "ana@example.org", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, repo.Create(ctx, u))

	err := repo.Create(ctx, &model.User{Email: "ana@example.org", PasswordHash: "y", Role: model.RoleUser})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	approved, err := repo.SetApproved(ctx, "ana@example.org", true)
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, byID.Approved)

	_, err = repo.SetApproved(ctx, "nobody@example.org", true)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
