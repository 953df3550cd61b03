package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/plastinin/aceinterview/internal/domain"
	"go.uber.org/zap"
)

// Финальный снимок повторяется: запуск без ретраев, и иначе
// сессия останется в analyzing после завершения анализа.
const (
	finalFlushAttempts = 5
	finalFlushBackoff  = 100 * time.Millisecond
)

// snapshotWriter сохраняет снимки задачи в отдельной горутине.
// Хранится только последний несохранённый снимок: промежуточные значения
// прогресса могут быть пропущены, финальное состояние сохраняется всегда.
type snapshotWriter[R any] struct {
	write  func(ctx context.Context, task domain.AnalysisTask[R]) error
	logger *zap.Logger

	mu      sync.Mutex
	pending *domain.AnalysisTask[R]
	signal  chan struct{}
}

func newSnapshotWriter[R any](write func(ctx context.Context, task domain.AnalysisTask[R]) error, logger *zap.Logger) *snapshotWriter[R] {
	return &snapshotWriter[R]{
		write:  write,
		logger: logger,
		signal: make(chan struct{}, 1),
	}
}

// offer используется как analysis.Observer, не блокируется
func (w *snapshotWriter[R]) offer(task domain.AnalysisTask[R]) {
	w.mu.Lock()
	w.pending = &task
	w.mu.Unlock()

	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// run сохраняет снимки, пока не закроется stop, затем сохраняет последний
// с повторами. Возвращает domain.ErrStaleGeneration сразу, как только запуск устарел.
func (w *snapshotWriter[R]) run(ctx context.Context, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.signal:
			if err := w.flush(ctx); err != nil {
				if errors.Is(err, domain.ErrStaleGeneration) {
					return err
				}
				w.logger.Warn("Failed to save analysis snapshot", zap.Error(err))
			}
		case <-stop:
			return w.flushFinal(ctx)
		}
	}
}

// flushFinal сохраняет последний снимок, даже если ctx уже отменён
func (w *snapshotWriter[R]) flushFinal(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	backoff := finalFlushBackoff

	var err error
	for attempt := 1; attempt <= finalFlushAttempts; attempt++ {
		err = w.flush(ctx)
		if err == nil || errors.Is(err, domain.ErrStaleGeneration) {
			return err
		}
		if attempt == finalFlushAttempts {
			break
		}

		w.logger.Warn("Failed to save final analysis snapshot, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		time.Sleep(backoff)
		backoff *= 2
	}

	w.logger.Error("Final analysis snapshot was not saved", zap.Error(err))
	return err
}

func (w *snapshotWriter[R]) flush(ctx context.Context) error {
	w.mu.Lock()
	task := w.pending
	w.pending = nil
	w.mu.Unlock()

	if task == nil {
		return nil
	}

	if err := w.write(ctx, *task); err != nil {
		// снимок не сохранён, пробуем снова со следующим
		w.mu.Lock()
		if w.pending == nil {
			w.pending = task
		}
		w.mu.Unlock()
		return err
	}
	return nil
}
