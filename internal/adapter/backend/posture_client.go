package backend

import (
	"context"
	"net/url"
	"time"

	"github.com/plastinin/aceinterview/internal/analysis"
	"github.com/plastinin/aceinterview/internal/config"
	"github.com/plastinin/aceinterview/internal/domain"
	"go.uber.org/zap"
)

// postureEnvelopeSuccess значение поля status успешного ответа сервиса осанки
const postureEnvelopeSuccess = "success"

// PostureClient клиент сервиса анализа осанки
type PostureClient struct {
	client
}

// NewPostureClient создаёт новый экземпляр PostureClient
func NewPostureClient(cfg config.BackendConfig, timeout time.Duration, logger *zap.Logger) *PostureClient {
	return &PostureClient{
		client: newClient(cfg.BaseURL, timeout, logger.Named("posture_client")),
	}
}

type postureSubmitResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	TaskID    string `json:"task_id"`
	StatusURL string `json:"status_url"`
}

// У сервиса осанки статус конверта в поле status, а статус задачи в task_status
type postureStatusResponse struct {
	Status         string                `json:"status"`
	TaskID         string                `json:"task_id"`
	TaskStatus     domain.RemoteStatus   `json:"task_status"`
	Message        string                `json:"message"`
	Result         *domain.PostureResult `json:"result"`
	Error          string                `json:"error"`
	ProcessingTime float64               `json:"processing_time"`
}

func (c *PostureClient) Name() domain.Backend {
	return domain.BackendPosture
}

// Submit отправляет видео на анализ
func (c *PostureClient) Submit(ctx context.Context, upload domain.Upload, progress analysis.ProgressFunc) (domain.Submission, error) {
	var resp postureSubmitResponse
	if err := c.upload(ctx, "/api/posture/analyze", upload, progress, &resp); err != nil {
		return domain.Submission{}, err
	}

	sub := domain.Submission{
		Accepted: resp.Status == postureEnvelopeSuccess,
		TaskID:   resp.TaskID,
	}
	if !sub.Accepted {
		sub.Error = resp.Message
	}
	return sub, nil
}

// Poll запрашивает статус задачи
func (c *PostureClient) Poll(ctx context.Context, taskID string) (domain.RemoteTaskStatus[domain.PostureResult], error) {
	var resp postureStatusResponse
	if err := c.getJSON(ctx, "/api/posture/task/"+url.PathEscape(taskID), &resp); err != nil {
		return domain.RemoteTaskStatus[domain.PostureResult]{}, err
	}

	errMsg := resp.Error
	if errMsg == "" && resp.Status != postureEnvelopeSuccess {
		errMsg = resp.Message
	}

	return domain.RemoteTaskStatus[domain.PostureResult]{
		Success:        resp.Status == postureEnvelopeSuccess,
		Status:         resp.TaskStatus,
		Result:         resp.Result,
		Error:          errMsg,
		ProcessingTime: resp.ProcessingTime,
	}, nil
}

// Health проверяет доступность сервиса
func (c *PostureClient) Health(ctx context.Context) (domain.ServiceHealth, error) {
	var resp domain.ServiceHealth
	if err := c.getHealth(ctx, "/api/posture/health", &resp); err != nil {
		return domain.ServiceHealth{}, err
	}
	return resp, nil
}
