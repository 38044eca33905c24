// Package service 实现判决检索、导入、关键词、档案与用户的业务逻辑，不处理 HTTP 细节.
//
// 各服务既可以通过 NewXxxService(ctx) 从 context 中的存储管理器构造，
// 也可以用 NewXxxServiceWith 直接注入仓储，便于测试.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/yeisme/sociojustice/pkg/apperr"
	"github.com/yeisme/sociojustice/pkg/configs"
	ctxPkg "github.com/yeisme/sociojustice/pkg/context"
	"github.com/yeisme/sociojustice/pkg/internal/model"
	"github.com/yeisme/sociojustice/pkg/internal/repository"
	"github.com/yeisme/sociojustice/pkg/internal/storage"
	"github.com/yeisme/sociojustice/pkg/internal/types"
	nlog "github.com/yeisme/sociojustice/pkg/log"
	"github.com/yeisme/sociojustice/pkg/queue"
)

// managerFrom 取出 context 中的存储管理器，未注入属于启动配置错误.
func managerFrom(ctx context.Context) *storage.Manager {
	mgr := ctxPkg.GetManager(ctx)
	if mgr == nil || mgr.DB == nil {
		nlog.Logger().Panic().Msg("storage manager not initialized")
	}

	return mgr
}

// eventsFrom 基于管理器中的 MQ 构造事件发布器.
func eventsFrom(mgr *storage.Manager) *queue.Events {
	return queue.NewEvents(mgr.MQ.Publisher(), configs.GetConfig().Events)
}

// notFoundOr 把仓储的 ErrNotFound 映射为 NotFound，其余为 InternalError.
func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(notFound)
	}

	return apperr.Internal(internal, err)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}

	s := t.UTC().Format(types.DateLayout)

	return &s
}

func toDecision(rec *repository.DecisionRecord) types.Decision {
	kw := rec.Keywords
	if kw == nil {
		kw = []string{}
	}

	return types.Decision{
		ID:           rec.ID,
		ExternalID:   rec.ExternalID,
		Title:        rec.Title,
		Content:      rec.Content,
		Date:         formatDate(rec.Date),
		Jurisdiction: rec.Jurisdiction,
		CaseType:     rec.CaseType,
		Source:       string(rec.Source),
		Public:       rec.Public,
		PDFLink:      rec.PDFLink,
		ArchiveID:    rec.ArchiveID,
		ImportedAt:   rec.ImportedAt,
		CreatedAt:    rec.CreatedAt,
		Keywords:     kw,
	}
}

func toUser(u *model.User) types.User {
	return types.User{
		ID:        u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		Approved:  u.Approved,
		CreatedAt: u.CreatedAt,
	}
}
