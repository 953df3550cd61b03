// Package analysis реализует машину состояний задачи анализа:
// отправка видео в сервис, опрос статуса и хранение наблюдаемого состояния.
package analysis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/plastinin/aceinterview/internal/domain"
	"github.com/plastinin/aceinterview/pkg/metrics"
	"go.uber.org/zap"
)

// ProgressFunc получает прогресс загрузки в процентах
type ProgressFunc func(percent int)

// Backend возможности одного сервиса анализа
type Backend[R any] interface {
	Name() domain.Backend
	Submit(ctx context.Context, upload domain.Upload, progress ProgressFunc) (domain.Submission, error)
	Poll(ctx context.Context, taskID string) (domain.RemoteTaskStatus[R], error)
}

// Observer получает каждое зафиксированное состояние, в порядке изменений.
// Вызывается под блокировкой задачи: методы Task из него вызывать нельзя.
type Observer[R any] func(snapshot domain.AnalysisTask[R])

type Config struct {
	PollInterval time.Duration
	// 0: без ограничения
	PollDeadline time.Duration
}

// Task хранит состояние одного анализа и управляет его запуском.
// Каждый запуск имеет своё поколение: после Reset/Close/Start записи
// от предыдущего запуска отбрасываются.
type Task[R any] struct {
	backend  Backend[R]
	cfg      Config
	observer Observer[R]
	logger   *zap.Logger

	mu         sync.Mutex
	state      domain.AnalysisTask[R]
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewTask создаёт задачу в состоянии idle. observer может быть nil.
func NewTask[R any](backend Backend[R], cfg Config, observer Observer[R], logger *zap.Logger) *Task[R] {
	return &Task[R]{
		backend:  backend,
		cfg:      cfg,
		observer: observer,
		logger:   logger.Named(string(backend.Name())),
		state:    domain.NewAnalysisTask[R](),
	}
}

// Snapshot возвращает копию текущего состояния
func (t *Task[R]) Snapshot() domain.AnalysisTask[R] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Start запускает анализ upload и сразу возвращает управление.
// Предыдущий запуск, если он есть, отменяется.
func (t *Task[R]) Start(ctx context.Context, upload domain.Upload) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.state.Reset()
	_ = t.state.MarkUploading()
	t.notifyLocked()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	gen := t.generation
	go func() {
		defer close(done)
		defer cancel()
		t.run(runCtx, gen, upload)
	}()
}

// Reset отменяет текущий запуск и возвращает задачу в idle
func (t *Task[R]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.state.Reset()
	t.notifyLocked()
}

// Wait ждёт завершения текущего запуска
func (t *Task[R]) Wait() {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Close отменяет запуск без изменения состояния и ждёт остановки горутины
func (t *Task[R]) Close() {
	t.mu.Lock()
	t.stopLocked()
	done := t.done
	t.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (t *Task[R]) stopLocked() {
	t.generation++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

func (t *Task[R]) notifyLocked() {
	if t.observer != nil {
		t.observer(t.state)
	}
}

// update применяет mutate, только если запуск gen всё ещё актуален
func (t *Task[R]) update(gen uint64, mutate func(s *domain.AnalysisTask[R]) (bool, error)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.generation {
		return false
	}

	changed, err := mutate(&t.state)
	if err != nil {
		t.logger.Debug("State update rejected",
			zap.String("state", t.state.State.String()),
			zap.Error(err),
		)
		return false
	}
	if changed {
		t.notifyLocked()
	}
	return true
}

func (t *Task[R]) run(ctx context.Context, gen uint64, upload domain.Upload) {
	backend := string(t.backend.Name())
	started := time.Now()

	t.logger.Info("Uploading video",
		zap.String("file_name", upload.FileName),
		zap.Int64("size", upload.Size),
	)

	sub, err := t.backend.Submit(ctx, upload, func(percent int) {
		t.update(gen, func(s *domain.AnalysisTask[R]) (bool, error) {
			return s.SetUploadProgress(percent)
		})
	})
	if ctx.Err() != nil {
		return
	}

	switch {
	case err != nil:
		metrics.RecordSubmission(backend, "transport_error")
		t.logger.Error("Video upload failed", zap.Error(err))
		t.fail(gen, started, domain.MsgUploadFailed, err.Error())
		return
	case !sub.Accepted:
		metrics.RecordSubmission(backend, "rejected")
		msg := sub.Error
		if msg == "" {
			msg = domain.MsgAnalysisFailed
		}
		t.logger.Warn("Video rejected by analysis service", zap.String("error", sub.Error))
		t.fail(gen, started, msg, sub.Error)
		return
	case sub.TaskID == "":
		metrics.RecordSubmission(backend, "rejected")
		t.fail(gen, started, domain.MsgAnalysisFailed, domain.ErrEmptyTaskID.Error())
		return
	}
	metrics.RecordSubmission(backend, "accepted")

	ok := t.update(gen, func(s *domain.AnalysisTask[R]) (bool, error) {
		return true, s.MarkAnalyzing(sub.TaskID)
	})
	if !ok {
		return
	}

	t.logger.Info("Analysis task accepted", zap.String("task_id", sub.TaskID))
	t.poll(ctx, gen, sub.TaskID, started)
}

// poll опрашивает статус задачи. Следующий запрос планируется только после
// завершения предыдущего, поэтому одновременно выполняется не больше одного.
func (t *Task[R]) poll(ctx context.Context, gen uint64, taskID string, started time.Time) {
	backend := string(t.backend.Name())
	log := t.logger.With(zap.String("task_id", taskID))

	pollCtx := ctx
	if t.cfg.PollDeadline > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, t.cfg.PollDeadline)
		defer cancel()
	}

	timedOut := func() bool {
		return ctx.Err() == nil && errors.Is(pollCtx.Err(), context.DeadlineExceeded)
	}

	wait := time.NewTimer(t.cfg.PollInterval)
	defer wait.Stop()

	for {
		select {
		case <-pollCtx.Done():
			if timedOut() {
				log.Warn("Analysis polling deadline exceeded", zap.Duration("deadline", t.cfg.PollDeadline))
				t.fail(gen, started, domain.MsgAnalysisTimedOut, "")
			}
			return
		case <-wait.C:
		}

		status, err := t.backend.Poll(pollCtx, taskID)
		if pollCtx.Err() != nil {
			if timedOut() {
				log.Warn("Analysis polling deadline exceeded", zap.Duration("deadline", t.cfg.PollDeadline))
				t.fail(gen, started, domain.MsgAnalysisTimedOut, "")
			}
			return
		}

		switch {
		case err != nil:
			metrics.RecordPoll(backend, "transport_error")
			log.Error("Failed to fetch analysis status", zap.Error(err))
			t.fail(gen, started, domain.MsgStatusFetchFailed, err.Error())
			return

		case status.Completed():
			metrics.RecordPoll(backend, string(domain.RemoteStatusCompleted))
			if status.Result == nil {
				log.Error("Analysis completed without result")
				t.fail(gen, started, domain.MsgAnalysisFailed, "completed without result")
				return
			}
			if t.update(gen, func(s *domain.AnalysisTask[R]) (bool, error) {
				return true, s.MarkComplete(*status.Result)
			}) {
				metrics.RecordFinished(backend, string(domain.StateComplete), time.Since(started))
				log.Info("Analysis completed", zap.Float64("processing_time", status.ProcessingTime))
			}
			return

		case status.Failed():
			metrics.RecordPoll(backend, string(domain.RemoteStatusFailed))
			log.Warn("Analysis failed",
				zap.Bool("success", status.Success),
				zap.String("status", status.Status.String()),
				zap.String("error", status.Error),
			)
			t.fail(gen, started, domain.MsgAnalysisFailed, status.Error)
			return
		}

		metrics.RecordPoll(backend, status.Status.String())
		log.Debug("Analysis in progress", zap.String("status", status.Status.String()))
		wait.Reset(t.cfg.PollInterval)
	}
}

func (t *Task[R]) fail(gen uint64, started time.Time, msg, detail string) {
	if t.update(gen, func(s *domain.AnalysisTask[R]) (bool, error) {
		return true, s.MarkFailed(msg, detail)
	}) {
		metrics.RecordFinished(string(t.backend.Name()), string(domain.StateError), time.Since(started))
	}
}
