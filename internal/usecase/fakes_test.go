package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/plastinin/aceinterview/internal/analysis"
	"github.com/plastinin/aceinterview/internal/domain"
)

// memoryRepo SessionRepository в памяти
type memoryRepo struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]domain.Session
	createErr error

	// failTerminalWrites столько финальных снимков интервью завершатся ошибкой
	failTerminalWrites int
	terminalWrites     int
}

var errTransientDB = errors.New("transient db error")

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{sessions: make(map[uuid.UUID]domain.Session)}
}

func (r *memoryRepo) Create(_ context.Context, s *domain.Session) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (r *memoryRepo) List(_ context.Context, p domain.Pagination) (*domain.SessionListResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*domain.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		s := s
		all = append(all, &s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	start := min(p.Offset(), len(all))
	end := min(start+p.Limit(), len(all))
	return &domain.SessionListResult{Sessions: all[start:end], Total: len(all), Pagination: p}, nil
}

func (r *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *memoryRepo) Reset(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s.ResetAll()
	r.sessions[id] = s
	return &s, nil
}

func (r *memoryRepo) UpdateInterview(_ context.Context, id uuid.UUID, generation int, task domain.AnalysisTask[domain.InterviewResult]) error {
	if task.State.IsTerminal() {
		r.mu.Lock()
		r.terminalWrites++
		fail := r.terminalWrites <= r.failTerminalWrites
		r.mu.Unlock()
		if fail {
			return errTransientDB
		}
	}
	return r.update(id, generation, func(s *domain.Session) { s.Interview = task })
}

func (r *memoryRepo) UpdatePosture(_ context.Context, id uuid.UUID, generation int, task domain.AnalysisTask[domain.PostureResult]) error {
	return r.update(id, generation, func(s *domain.Session) { s.Posture = task })
}

func (r *memoryRepo) update(id uuid.UUID, generation int, apply func(s *domain.Session)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Generation != generation {
		return domain.ErrStaleGeneration
	}
	apply(&s)
	r.sessions[id] = s
	return nil
}

func (r *memoryRepo) get(id uuid.UUID) domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

// memoryStorage VideoStorage в памяти
type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (s *memoryStorage) Upload(_ context.Context, fileName, _ string, reader io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("videos/%s/%s", uuid.NewString(), fileName)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return key, nil
}

func (s *memoryStorage) Download(_ context.Context, key string) (io.ReadCloser, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, 0, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (s *memoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *memoryStorage) put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
}

type queueCall struct {
	SessionID  uuid.UUID
	Generation int
}

// recordingQueue AnalysisQueue, запоминающая вызовы
type recordingQueue struct {
	mu         sync.Mutex
	enqueued   []queueCall
	cancelled  []queueCall
	enqueueErr error
}

func (q *recordingQueue) Enqueue(_ context.Context, id uuid.UUID, generation int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.enqueued = append(q.enqueued, queueCall{id, generation})
	return nil
}

func (q *recordingQueue) Cancel(_ context.Context, id uuid.UUID, generation int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cancelled = append(q.cancelled, queueCall{id, generation})
	return nil
}

// stubBackend analysis.Backend на функциях
type stubBackend[R any] struct {
	name   domain.Backend
	submit func(ctx context.Context, upload domain.Upload) (domain.Submission, error)
	poll   func(ctx context.Context, taskID string) (domain.RemoteTaskStatus[R], error)
}

func (b *stubBackend[R]) Name() domain.Backend { return b.name }

func (b *stubBackend[R]) Submit(ctx context.Context, upload domain.Upload, progress analysis.ProgressFunc) (domain.Submission, error) {
	if _, err := io.Copy(io.Discard, upload.Body); err != nil {
		return domain.Submission{}, err
	}
	progress(100)
	return b.submit(ctx, upload)
}

func (b *stubBackend[R]) Poll(ctx context.Context, taskID string) (domain.RemoteTaskStatus[R], error) {
	return b.poll(ctx, taskID)
}

func accepted(taskID string) func(context.Context, domain.Upload) (domain.Submission, error) {
	return func(context.Context, domain.Upload) (domain.Submission, error) {
		return domain.Submission{Accepted: true, TaskID: taskID}, nil
	}
}

func completedWith[R any](result R) func(context.Context, string) (domain.RemoteTaskStatus[R], error) {
	return func(context.Context, string) (domain.RemoteTaskStatus[R], error) {
		return domain.RemoteTaskStatus[R]{Success: true, Status: domain.RemoteStatusCompleted, Result: &result}, nil
	}
}

// processingUntilCancelled держит задачу в processing до отмены контекста
func processingUntilCancelled[R any](ctx context.Context, _ string) (domain.RemoteTaskStatus[R], error) {
	select {
	case <-ctx.Done():
		return domain.RemoteTaskStatus[R]{}, ctx.Err()
	case <-time.After(time.Millisecond):
		return domain.RemoteTaskStatus[R]{Success: true, Status: domain.RemoteStatusProcessing}, nil
	}
}

type stubHealth struct {
	health domain.ServiceHealth
	err    error

	mu    sync.Mutex
	calls int
}

func (h *stubHealth) Health(context.Context) (domain.ServiceHealth, error) {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()
	return h.health, h.err
}

func (h *stubHealth) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}
