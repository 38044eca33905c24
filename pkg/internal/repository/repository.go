// Package repository 封装对判决、标签、档案、用户表的访问.
//
// 业务层只依赖这里的接口，测试可以替换为内存实现.
package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yeisme/sociojustice/pkg/internal/model"
)

var (
	// ErrNotFound 记录不存在.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate 违反唯一约束.
	ErrDuplicate = errors.New("duplicate record")
)

// InsertOutcome 幂等插入的结果.
type InsertOutcome int

const (
	// Inserted 新写入一行.
	Inserted InsertOutcome = iota + 1
	// Skipped 外部编号已存在，未写入.
	Skipped
)

func (o InsertOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// DecisionRecord 判决及其排序后的关键词，Keywords 永不为 nil.
type DecisionRecord struct {
	model.Decision

	Keywords []string
}

// DecisionStats 判决统计.
type DecisionStats struct {
	Total     int64
	Archive   int64
	Judilibre int64
	// LastImportDate 最近一次导入的时间，从未导入时为 nil
	LastImportDate  *time.Time
	LastImportCount int64
}

// Repositories 聚合全部仓储，便于注入.
type Repositories struct {
	Decisions DecisionRepository
	Tags      TagRepository
	Archives  ArchiveRepository
	Users     UserRepository
}

// NewGorm 基于同一个 *gorm.DB 构造全部仓储.
func NewGorm(db *gorm.DB) *Repositories {
	return &Repositories{
		Decisions: NewDecisionRepository(db),
		Tags:      NewTagRepository(db),
		Archives:  NewArchiveRepository(db),
		Users:     NewUserRepository(db),
	}
}

// translate 把 GORM 错误映射为仓储哨兵错误.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Join(ErrDuplicate, err)
	default:
		return err
	}
}
