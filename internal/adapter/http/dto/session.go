package dto

import (
	"time"

	"github.com/plastinin/aceinterview/internal/domain"
)

// TaskResponse состояние одной задачи анализа
type TaskResponse[R any] struct {
	TaskID         string    `json:"task_id,omitempty"`
	State          string    `json:"state"`
	UploadProgress int       `json:"upload_progress"`
	Result         *R        `json:"result"`
	Error          string    `json:"error,omitempty"`
	ErrorDetail    string    `json:"error_detail,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func taskFromDomain[R, O any](task domain.AnalysisTask[R], convert func(R) O) TaskResponse[O] {
	resp := TaskResponse[O]{
		TaskID:         task.TaskID,
		State:          task.State.String(),
		UploadProgress: task.UploadProgress,
		Error:          task.Error,
		ErrorDetail:    task.ErrorDetail,
		UpdatedAt:      task.UpdatedAt,
	}
	if task.Result != nil {
		out := convert(*task.Result)
		resp.Result = &out
	}
	return resp
}

// InterviewResultResponse результат интервью и оценки в целых процентах
type InterviewResultResponse struct {
	domain.InterviewResult
	Percentages map[string]int `json:"percentages"`
}

func interviewResultFromDomain(r domain.InterviewResult) InterviewResultResponse {
	return InterviewResultResponse{
		InterviewResult: r,
		Percentages:     r.Classifications.Percentages(),
	}
}

// PostureResultResponse результат осанки. Сервис может завершить задачу
// с результатом status=error, succeeded отличает этот случай.
type PostureResultResponse struct {
	domain.PostureResult
	Succeeded bool `json:"succeeded"`
}

func postureResultFromDomain(r domain.PostureResult) PostureResultResponse {
	return PostureResultResponse{
		PostureResult: r,
		Succeeded:     r.Succeeded(),
	}
}

// SessionResponse ответ с состоянием сессии анализа
type SessionResponse struct {
	ID          string                                `json:"id"`
	FileName    string                                `json:"file_name"`
	ContentType string                                `json:"content_type"`
	FileSize    int64                                 `json:"file_size"`
	Generation  int                                   `json:"generation"`
	Interview   TaskResponse[InterviewResultResponse] `json:"interview"`
	Posture     TaskResponse[PostureResultResponse]   `json:"posture"`
	Active      bool                                  `json:"active"` // Хотя бы одна задача выполняется
	AllComplete bool                                  `json:"all_complete"`
	AnyError    bool                                  `json:"any_error"`
	CreatedAt   time.Time                             `json:"created_at"`
	UpdatedAt   time.Time                             `json:"updated_at"`
}

// SessionFromDomain конвертирует доменную модель в DTO
func SessionFromDomain(s *domain.Session) *SessionResponse {
	return &SessionResponse{
		ID:          s.ID.String(),
		FileName:    s.FileName,
		ContentType: s.ContentType,
		FileSize:    s.FileSize,
		Generation:  s.Generation,
		Interview:   taskFromDomain(s.Interview, interviewResultFromDomain),
		Posture:     taskFromDomain(s.Posture, postureResultFromDomain),
		Active:      s.Active(),
		AllComplete: s.AllComplete(),
		AnyError:    s.AnyError(),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// SessionListResponse ответ со списком сессий
type SessionListResponse struct {
	Sessions   []*SessionResponse `json:"sessions"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

// SessionListFromDomain конвертирует результат списка в DTO
func SessionListFromDomain(result *domain.SessionListResult) *SessionListResponse {
	sessions := make([]*SessionResponse, len(result.Sessions))
	for i, s := range result.Sessions {
		sessions[i] = SessionFromDomain(s)
	}

	return &SessionListResponse{
		Sessions:   sessions,
		Total:      result.Total,
		Page:       result.Pagination.Page,
		PageSize:   result.Pagination.PageSize,
		TotalPages: result.Pagination.TotalPages(result.Total),
	}
}
