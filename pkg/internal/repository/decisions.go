package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeisme/sociojustice/pkg/internal/model"
	"github.com/yeisme/sociojustice/pkg/internal/query"
)

// DecisionRepository 判决仓储.
type DecisionRepository interface {
	// List 按构造器条件分页查询，同时返回未分页的总数.
	List(ctx context.Context, b *query.Builder) ([]DecisionRecord, int64, error)
	// FindByID 按内部 UUID 或外部编号查找.
	FindByID(ctx context.Context, id string) (*DecisionRecord, error)
	// TryInsert 按 external_id 幂等插入.
	TryInsert(ctx context.Context, d *model.Decision) (InsertOutcome, error)
	Stats(ctx context.Context) (*DecisionStats, error)
	DistinctJurisdictions(ctx context.Context) ([]string, error)
	DistinctCaseTypes(ctx context.Context) ([]string, error)
}

type decisionRepo struct {
	db *gorm.DB
}

// NewDecisionRepository 创建基于 GORM 的判决仓储.
func NewDecisionRepository(db *gorm.DB) DecisionRepository {
	return &decisionRepo{db: db}
}

func (r *decisionRepo) List(ctx context.Context, b *query.Builder) ([]DecisionRecord, int64, error) {
	where, args := b.Where()

	scoped := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&model.Decision{})
		if where != "" {
			tx = tx.Where(where, args...)
		}

		return tx
	}

	var total int64
	if err := scoped().Distinct("decisions.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.Decision
	if err := scoped().
		Order(b.OrderBy()).
		Limit(b.Limit()).
		Offset(b.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	records, err := withKeywords(ctx, r.db, rows)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *decisionRepo) FindByID(ctx context.Context, id string) (*DecisionRecord, error) {
	db := r.db.WithContext(ctx)

	var d model.Decision

	err := gorm.ErrRecordNotFound
	if _, perr := uuid.Parse(id); perr == nil {
		err = db.Where("id = ?", id).Take(&d).Error
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = db.Where("external_id = ?", id).Take(&d).Error
	}

	if err != nil {
		return nil, translate(err)
	}

	records, err := withKeywords(ctx, r.db, []model.Decision{d})
	if err != nil {
		return nil, err
	}

	return &records[0], nil
}

func (r *decisionRepo) TryInsert(ctx context.Context, d *model.Decision) (InsertOutcome, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoNothing: true,
		}).
		Create(d)
	if res.Error != nil {
		return 0, translate(res.Error)
	}

	if res.RowsAffected == 0 {
		return Skipped, nil
	}

	return Inserted, nil
}

func (r *decisionRepo) Stats(ctx context.Context) (*DecisionStats, error) {
	db := r.db.WithContext(ctx)

	var agg struct {
		Total     int64
		Archive   int64
		Judilibre int64
	}

	if err := db.Model(&model.Decision{}).
		Select("COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN source = ? THEN 1 ELSE 0 END), 0) AS archive, "+
			"COALESCE(SUM(CASE WHEN source = ? THEN 1 ELSE 0 END), 0) AS judilibre",
			model.SourceArchive, model.SourceJudilibre).
		Scan(&agg).Error; err != nil {
		return nil, err
	}

	stats := &DecisionStats{Total: agg.Total, Archive: agg.Archive, Judilibre: agg.Judilibre}

	var last model.Decision

	err := db.Select("imported_at").
		Where("imported_at IS NOT NULL").
		Order("imported_at DESC").
		Take(&last).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return stats, nil
	case err != nil:
		return nil, err
	}

	// 同一次导入共用一个时间戳
	if err := db.Model(&model.Decision{}).
		Where("imported_at = ?", *last.ImportedAt).
		Count(&stats.LastImportCount).Error; err != nil {
		return nil, err
	}

	stats.LastImportDate = last.ImportedAt

	return stats, nil
}

func (r *decisionRepo) DistinctJurisdictions(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "jurisdiction")
}

func (r *decisionRepo) DistinctCaseTypes(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "case_type")
}

// distinct 列名只来自本包内部调用.
func (r *decisionRepo) distinct(ctx context.Context, column string) ([]string, error) {
	out := make([]string, 0)

	err := r.db.WithContext(ctx).
		Model(&model.Decision{}).
		Where(column + " IS NOT NULL AND " + column + " <> ''").
		Distinct().
		Order(column).
		Pluck(column, &out).Error
	if err != nil {
		return nil, err
	}

	return out, nil
}
