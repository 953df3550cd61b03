package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/plastinin/aceinterview/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// tipsFetchTimeout ограничивает общий запрос, который не зависит от отмены вызывающих
const tipsFetchTimeout = 60 * time.Second

// TipsUseCase советы по меткам результата интервью
type TipsUseCase struct {
	source TipsSource
	cache  TipsCache
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewTipsUseCase создаёт новый экземпляр TipsUseCase
func NewTipsUseCase(source TipsSource, cache TipsCache, ttl time.Duration, logger *zap.Logger) *TipsUseCase {
	return &TipsUseCase{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Fetch возвращает советы по метке. Уже полученные советы берутся из кэша,
// одновременные запросы одной метки выполняются одним запросом к сервису.
// Ошибки не кэшируются.
func (uc *TipsUseCase) Fetch(ctx context.Context, label string) (domain.LabelTips, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return domain.LabelTips{}, domain.ErrEmptyLabel
	}

	cached, ok, err := uc.cache.Get(ctx, label)
	if err != nil {
		uc.logger.Warn("Failed to read tips cache", zap.String("label", label), zap.Error(err))
	}
	if ok {
		return cached, nil
	}

	ch := uc.group.DoChan(label, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tipsFetchTimeout)
		defer cancel()

		tips, err := uc.source.Tips(fetchCtx, label)
		if err != nil {
			return nil, err
		}

		if err := uc.cache.Set(fetchCtx, tips, uc.ttl); err != nil {
			uc.logger.Warn("Failed to write tips cache", zap.String("label", label), zap.Error(err))
		}
		return tips, nil
	})

	// Каждый вызывающий ждёт общий запрос только в пределах своего ctx
	select {
	case <-ctx.Done():
		return domain.LabelTips{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			uc.logger.Error("Failed to fetch tips", zap.String("label", label), zap.Error(res.Err))
			return domain.LabelTips{}, res.Err
		}

		uc.logger.Debug("Tips fetched", zap.String("label", label), zap.Bool("shared", res.Shared))
		return res.Val.(domain.LabelTips), nil
	}
}
