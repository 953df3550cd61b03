package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/plastinin/aceinterview/internal/domain"
	"github.com/plastinin/aceinterview/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// HealthUseCase проверка доступности сервисов анализа
type HealthUseCase struct {
	interview HealthChecker
	posture   HealthChecker
	logger    *zap.Logger

	mu   sync.Mutex
	last map[domain.Backend]bool
}

// NewHealthUseCase создаёт новый экземпляр HealthUseCase
func NewHealthUseCase(interview, posture HealthChecker, logger *zap.Logger) *HealthUseCase {
	return &HealthUseCase{
		interview: interview,
		posture:   posture,
		logger:    logger,
		last:      make(map[domain.Backend]bool),
	}
}

// Check опрашивает оба сервиса параллельно. Недоступность одного
// не влияет на результат другого.
func (uc *HealthUseCase) Check(ctx context.Context) domain.BackendsHealth {
	var result domain.BackendsHealth
	var g errgroup.Group

	g.Go(func() error {
		result.Interview = uc.check(ctx, domain.BackendInterview, uc.interview, domain.MsgInterviewUnreachable)
		return nil
	})
	g.Go(func() error {
		result.Posture = uc.check(ctx, domain.BackendPosture, uc.posture, domain.MsgPostureUnreachable)
		return nil
	})
	_ = g.Wait()

	return result
}

func (uc *HealthUseCase) check(ctx context.Context, backend domain.Backend, checker HealthChecker, failMsg string) domain.BackendHealth {
	health, err := checker.Health(ctx)
	if err != nil {
		uc.logger.Debug("Health check failed", zap.String("backend", string(backend)), zap.Error(err))
		uc.record(backend, false)
		return domain.BackendHealth{Backend: backend, Error: failMsg}
	}

	uc.record(backend, true)
	return domain.BackendHealth{Backend: backend, Data: &health}
}

// record обновляет метрику и пишет в лог смену состояния сервиса
func (uc *HealthUseCase) record(backend domain.Backend, up bool) {
	metrics.SetBackendUp(string(backend), up)

	uc.mu.Lock()
	prev, seen := uc.last[backend]
	uc.last[backend] = up
	uc.mu.Unlock()

	if seen && prev == up {
		return
	}
	if up {
		uc.logger.Info("Analysis backend is up", zap.String("backend", string(backend)))
	} else {
		uc.logger.Warn("Analysis backend is down", zap.String("backend", string(backend)))
	}
}

// Monitor проверяет сервисы сразу и затем каждые interval, пока не отменён ctx
func (uc *HealthUseCase) Monitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		checkCtx, cancel := context.WithTimeout(ctx, interval)
		uc.Check(checkCtx)
		cancel()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
