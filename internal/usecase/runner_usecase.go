package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/plastinin/aceinterview/internal/analysis"
	"github.com/plastinin/aceinterview/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunnerUseCase выполняет анализ сессии обоими сервисами (воркер)
type RunnerUseCase struct {
	sessionRepo  SessionRepository
	videoStorage VideoStorage
	interview    analysis.Backend[domain.InterviewResult]
	posture      analysis.Backend[domain.PostureResult]
	cfg          analysis.Config
	logger       *zap.Logger
}

// NewRunnerUseCase создаёт новый экземпляр RunnerUseCase
func NewRunnerUseCase(
	sessionRepo SessionRepository,
	videoStorage VideoStorage,
	interview analysis.Backend[domain.InterviewResult],
	posture analysis.Backend[domain.PostureResult],
	cfg analysis.Config,
	logger *zap.Logger,
) *RunnerUseCase {
	return &RunnerUseCase{
		sessionRepo:  sessionRepo,
		videoStorage: videoStorage,
		interview:    interview,
		posture:      posture,
		cfg:          cfg,
		logger:       logger,
	}
}

// Run запускает обе задачи на одном видео и ждёт их завершения.
// Задачи независимы: ошибка одной не останавливает другую.
// Если сессия сброшена или удалена, запуск прекращается без ошибки.
func (uc *RunnerUseCase) Run(ctx context.Context, input RunInput) error {
	log := uc.logger.With(
		zap.String("session_id", input.SessionID.String()),
		zap.Int("generation", input.Generation),
	)

	session, err := uc.sessionRepo.GetByID(ctx, input.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			log.Warn("Session not found, skipping analysis run")
			return nil
		}
		return fmt.Errorf("failed to get session: %w", err)
	}

	if session.Generation != input.Generation {
		log.Info("Analysis run superseded, skipping",
			zap.Int("current_generation", session.Generation),
		)
		return nil
	}

	log.Info("Starting analysis run", zap.String("video_key", session.VideoKey))

	// Устаревший запуск останавливает обе задачи, остальные ошибки только свою
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopOnStale := func(err error) error {
		if errors.Is(err, domain.ErrStaleGeneration) {
			cancel()
		}
		return err
	}

	var g errgroup.Group
	g.Go(func() error {
		return stopOnStale(runBackend(runCtx, uc.interview, uc.cfg, uc.opener(session),
			func(ctx context.Context, task domain.AnalysisTask[domain.InterviewResult]) error {
				return uc.sessionRepo.UpdateInterview(ctx, session.ID, session.Generation, task)
			}, log))
	})
	g.Go(func() error {
		return stopOnStale(runBackend(runCtx, uc.posture, uc.cfg, uc.opener(session),
			func(ctx context.Context, task domain.AnalysisTask[domain.PostureResult]) error {
				return uc.sessionRepo.UpdatePosture(ctx, session.ID, session.Generation, task)
			}, log))
	})

	err = g.Wait()
	switch {
	case ctx.Err() != nil:
		log.Info("Analysis run cancelled", zap.Error(ctx.Err()))
		return nil
	case errors.Is(err, domain.ErrStaleGeneration), errors.Is(err, context.Canceled):
		log.Info("Analysis run superseded by reset")
		return nil
	case err != nil:
		log.Error("Analysis run failed", zap.Error(err))
		return err
	}

	log.Info("Analysis run finished")
	return nil
}

// opener каждый сервис читает видео своим потоком
func (uc *RunnerUseCase) opener(session *domain.Session) func(ctx context.Context) (domain.Upload, io.Closer, error) {
	return func(ctx context.Context) (domain.Upload, io.Closer, error) {
		reader, size, err := uc.videoStorage.Download(ctx, session.VideoKey)
		if err != nil {
			return domain.Upload{}, nil, err
		}
		return domain.Upload{
			FileName:    session.FileName,
			ContentType: session.ContentType,
			Size:        size,
			Body:        reader,
		}, reader, nil
	}
}

// runBackend выполняет одну задачу анализа и сохраняет её снимки
func runBackend[R any](
	ctx context.Context,
	backend analysis.Backend[R],
	cfg analysis.Config,
	open func(ctx context.Context) (domain.Upload, io.Closer, error),
	write func(ctx context.Context, task domain.AnalysisTask[R]) error,
	logger *zap.Logger,
) error {
	log := logger.With(zap.String("backend", string(backend.Name())))

	upload, closer, err := open(ctx)
	if err != nil {
		log.Error("Failed to open video", zap.Error(err))
		failed := domain.NewAnalysisTask[R]()
		_ = failed.MarkUploading()
		_ = failed.MarkFailed(domain.MsgUploadFailed, err.Error())
		return write(ctx, failed)
	}
	defer closer.Close()

	writer := newSnapshotWriter(write, log)
	task := analysis.NewTask(backend, cfg, writer.offer, log)

	stop := make(chan struct{})
	writerDone := make(chan error, 1)
	go func() {
		writerDone <- writer.run(ctx, stop)
	}()

	task.Start(ctx, upload)

	taskDone := make(chan struct{})
	go func() {
		task.Wait()
		close(taskDone)
	}()

	select {
	case <-taskDone:
		close(stop)
		return <-writerDone
	case err := <-writerDone:
		task.Close()
		<-taskDone
		return err
	}
}
