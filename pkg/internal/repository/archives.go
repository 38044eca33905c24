package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yeisme/sociojustice/pkg/internal/model"
)

// ArchiveRepository 档案仓储.
type ArchiveRepository interface {
	// CreateWithDecision 在同一事务中写入档案及其镜像判决，任一失败全部回滚.
	CreateWithDecision(ctx context.Context, a *model.Archive, d *model.Decision) error
	FindByID(ctx context.Context, id string) (*model.Archive, error)
	// MirrorDecisionID 返回档案对应镜像判决的 id.
	MirrorDecisionID(ctx context.Context, archiveID string) (string, error)
}

type archiveRepo struct {
	db *gorm.DB
}

// NewArchiveRepository 创建基于 GORM 的档案仓储.
func NewArchiveRepository(db *gorm.DB) ArchiveRepository {
	return &archiveRepo{db: db}
}

func (r *archiveRepo) CreateWithDecision(ctx context.Context, a *model.Archive, d *model.Decision) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			return translate(err)
		}

		d.ArchiveID = &a.ID
		d.Source = model.SourceArchive

		if err := tx.Create(d).Error; err != nil {
			return translate(err)
		}

		return nil
	})
}

func (r *archiveRepo) FindByID(ctx context.Context, id string) (*model.Archive, error) {
	var a model.Archive
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&a).Error; err != nil {
		return nil, translate(err)
	}

	return &a, nil
}

func (r *archiveRepo) MirrorDecisionID(ctx context.Context, archiveID string) (string, error) {
	var d model.Decision
	if err := r.db.WithContext(ctx).Select("id").Where("archive_id = ?", archiveID).Take(&d).Error; err != nil {
		return "", translate(err)
	}

	return d.ID, nil
}
