package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plastinin/aceinterview/internal/domain"
)

const sessionColumns = `id, video_key, file_name, content_type, file_size, generation, interview, posture, created_at, updated_at`

// SessionRepository реализация репозитория сессий для PostgreSQL.
// Снимки задач хранятся в JSONB колонках interview и posture.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository создаёт новый экземпляр SessionRepository
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create создаёт новую сессию в БД
func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	query := `INSERT INTO analysis_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.VideoKey,
		s.FileName,
		s.ContentType,
		s.FileSize,
		s.Generation,
		s.Interview,
		s.Posture,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// GetByID возвращает сессию по ID
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM analysis_sessions WHERE id = $1`

	s, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return s, nil
}

// List возвращает сессии, новые первыми
func (r *SessionRepository) List(ctx context.Context, pagination domain.Pagination) (*domain.SessionListResult, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM analysis_sessions`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	query := `SELECT ` + sessionColumns + ` FROM analysis_sessions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*domain.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return &domain.SessionListResult{
		Sessions:   sessions,
		Total:      total,
		Pagination: pagination,
	}, nil
}

// Delete удаляет сессию из БД
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM analysis_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// Reset одним запросом переводит обе задачи в idle и увеличивает поколение
func (r *SessionRepository) Reset(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `UPDATE analysis_sessions
		SET generation = generation + 1, interview = $2, posture = $3, updated_at = $4
		WHERE id = $1
		RETURNING ` + sessionColumns

	s, err := scanSession(r.pool.QueryRow(ctx, query,
		id,
		domain.NewAnalysisTask[domain.InterviewResult](),
		domain.NewAnalysisTask[domain.PostureResult](),
		time.Now(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to reset session: %w", err)
	}

	return s, nil
}

// UpdateInterview сохраняет снимок задачи интервью для поколения generation
func (r *SessionRepository) UpdateInterview(ctx context.Context, id uuid.UUID, generation int, task domain.AnalysisTask[domain.InterviewResult]) error {
	return r.updateTask(ctx, "interview", id, generation, task)
}

// UpdatePosture сохраняет снимок задачи осанки для поколения generation
func (r *SessionRepository) UpdatePosture(ctx context.Context, id uuid.UUID, generation int, task domain.AnalysisTask[domain.PostureResult]) error {
	return r.updateTask(ctx, "posture", id, generation, task)
}

// column берётся только из UpdateInterview/UpdatePosture
func (r *SessionRepository) updateTask(ctx context.Context, column string, id uuid.UUID, generation int, task any) error {
	query := fmt.Sprintf(`UPDATE analysis_sessions
		SET %s = $3, updated_at = $4
		WHERE id = $1 AND generation = $2`, column)

	result, err := r.pool.Exec(ctx, query, id, generation, task, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update %s task: %w", column, err)
	}

	// Сессия сброшена или удалена
	if result.RowsAffected() == 0 {
		return domain.ErrStaleGeneration
	}

	return nil
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	s := &domain.Session{}
	err := row.Scan(
		&s.ID,
		&s.VideoKey,
		&s.FileName,
		&s.ContentType,
		&s.FileSize,
		&s.Generation,
		&s.Interview,
		&s.Posture,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}
