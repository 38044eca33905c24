package repository

import (
	"context"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeisme/sociojustice/pkg/internal/model"
)

// TagRepository 标签与判决标签关联仓储.
type TagRepository interface {
	// ReplaceForDecision 在一个事务内替换判决的全部标签，判决不存在返回 ErrNotFound.
	ReplaceForDecision(ctx context.Context, decisionID string, labels []string) error
	// LabelsFor 批量读取判决的关键词，按字母序排列.
	LabelsFor(ctx context.Context, decisionIDs []string) (map[string][]string, error)
}

type tagRepo struct {
	db *gorm.DB
}

// NewTagRepository 创建基于 GORM 的标签仓储.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepo{db: db}
}

func (r *tagRepo) ReplaceForDecision(ctx context.Context, decisionID string, labels []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Decision{}).Where("id = ?", decisionID).Count(&n).Error; err != nil {
			return err
		}

		if n == 0 {
			return ErrNotFound
		}

		if err := tx.Where("decision_id = ?", decisionID).Delete(&model.DecisionTag{}).Error; err != nil {
			return err
		}

		for _, label := range labels {
			tag, err := findOrCreateTag(tx, label)
			if err != nil {
				return err
			}

			link := &model.DecisionTag{DecisionID: decisionID, TagID: tag.ID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(link).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// findOrCreateTag 标签按原样精确匹配，并发创建时以已存在的行为准.
func findOrCreateTag(tx *gorm.DB, label string) (*model.Tag, error) {
	tag := &model.Tag{Label: label}

	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "label"}},
		DoNothing: true,
	}).Create(tag)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected > 0 && tag.ID != 0 {
		return tag, nil
	}

	existing := &model.Tag{}
	if err := tx.Where("label = ?", label).Take(existing).Error; err != nil {
		return nil, err
	}

	return existing, nil
}

func (r *tagRepo) LabelsFor(ctx context.Context, decisionIDs []string) (map[string][]string, error) {
	return labelsFor(ctx, r.db, decisionIDs)
}

func labelsFor(ctx context.Context, db *gorm.DB, decisionIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(decisionIDs))
	for _, id := range decisionIDs {
		out[id] = []string{}
	}

	if len(decisionIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		DecisionID string
		Label      string
	}

	err := db.WithContext(ctx).
		Table("decision_tags").
		Select("decision_tags.decision_id AS decision_id, tags.label AS label").
		Joins("JOIN tags ON tags.id = decision_tags.tag_id").
		Where("decision_tags.decision_id IN ?", decisionIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.DecisionID] = append(out[row.DecisionID], row.Label)
	}

	// 不依赖数据库排序规则
	for _, labels := range out {
		sort.Strings(labels)
	}

	return out, nil
}

// withKeywords 为一页判决补齐关键词，避免逐行查询.
func withKeywords(ctx context.Context, db *gorm.DB, rows []model.Decision) ([]DecisionRecord, error) {
	ids := make([]string, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}

	labels, err := labelsFor(ctx, db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]DecisionRecord, 0, len(rows))
	for i := range rows {
		out = append(out, DecisionRecord{Decision: rows[i], Keywords: labels[rows[i].ID]})
	}

	return out, nil
}
