package backend

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/plastinin/aceinterview/internal/analysis"
	"github.com/plastinin/aceinterview/internal/config"
	"github.com/plastinin/aceinterview/internal/domain"
	"go.uber.org/zap"
)

// InterviewClient клиент сервиса анализа интервью
type InterviewClient struct {
	client
}

// NewInterviewClient создаёт новый экземпляр InterviewClient
func NewInterviewClient(cfg config.BackendConfig, timeout time.Duration, logger *zap.Logger) *InterviewClient {
	return &InterviewClient{
		client: newClient(cfg.BaseURL, timeout, logger.Named("interview_client")),
	}
}

type interviewSubmitResponse struct {
	Success bool   `json:"success"`
	TaskID  string `json:"task_id"`
	Error   string `json:"error"`
}

type interviewStatusResponse struct {
	Success        bool                    `json:"success"`
	TaskID         string                  `json:"task_id"`
	Status         domain.RemoteStatus     `json:"status"`
	Results        *domain.InterviewResult `json:"results"`
	Error          string                  `json:"error"`
	ProcessingTime float64                 `json:"processing_time"`
}

type interviewTipsResponse struct {
	Success bool     `json:"success"`
	Label   string   `json:"label"`
	Tips    []string `json:"tips"`
	Error   string   `json:"error"`
}

func (c *InterviewClient) Name() domain.Backend {
	return domain.BackendInterview
}

// Submit отправляет видео на анализ
func (c *InterviewClient) Submit(ctx context.Context, upload domain.Upload, progress analysis.ProgressFunc) (domain.Submission, error) {
	var resp interviewSubmitResponse
	if err := c.upload(ctx, "/api/v1/interview/analyze", upload, progress, &resp); err != nil {
		return domain.Submission{}, err
	}

	return domain.Submission{
		Accepted: resp.Success,
		TaskID:   resp.TaskID,
		Error:    resp.Error,
	}, nil
}

// Poll запрашивает статус задачи
func (c *InterviewClient) Poll(ctx context.Context, taskID string) (domain.RemoteTaskStatus[domain.InterviewResult], error) {
	var resp interviewStatusResponse
	if err := c.getJSON(ctx, "/api/v1/interview/task/"+url.PathEscape(taskID), &resp); err != nil {
		return domain.RemoteTaskStatus[domain.InterviewResult]{}, err
	}

	return domain.RemoteTaskStatus[domain.InterviewResult]{
		Success:        resp.Success,
		Status:         resp.Status,
		Result:         resp.Results,
		Error:          resp.Error,
		ProcessingTime: resp.ProcessingTime,
	}, nil
}

// Tips получает советы по метке. Неуспешный ответ сервиса оборачивает
// domain.ErrTipsUnavailable, ошибка запроса оборачивает domain.ErrTipsFetch.
func (c *InterviewClient) Tips(ctx context.Context, label string) (domain.LabelTips, error) {
	var resp interviewTipsResponse
	if err := c.getJSON(ctx, "/api/v1/interview/tips/"+url.PathEscape(label), &resp); err != nil {
		return domain.LabelTips{}, fmt.Errorf("%w: %v", domain.ErrTipsFetch, err)
	}
	if !resp.Success {
		return domain.LabelTips{}, fmt.Errorf("%w: %s", domain.ErrTipsUnavailable, resp.Error)
	}
	if resp.Tips == nil {
		return domain.LabelTips{}, fmt.Errorf("%w: response has no tips", domain.ErrTipsUnavailable)
	}

	if resp.Label == "" {
		resp.Label = label
	}
	return domain.LabelTips{Label: resp.Label, Tips: resp.Tips}, nil
}

// Health проверяет доступность сервиса
func (c *InterviewClient) Health(ctx context.Context) (domain.ServiceHealth, error) {
	var resp domain.ServiceHealth
	if err := c.getHealth(ctx, "/api/v1/interview/health", &resp); err != nil {
		return domain.ServiceHealth{}, err
	}
	return resp, nil
}
