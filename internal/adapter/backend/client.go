// Package backend содержит HTTP клиенты внешних сервисов анализа (интервью и осанка).
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/plastinin/aceinterview/internal/analysis"
	"github.com/plastinin/aceinterview/internal/domain"
	"go.uber.org/zap"
)

// ErrUnexpectedStatus ответ не 2xx, тело которого не удалось разобрать
var ErrUnexpectedStatus = errors.New("unexpected response status")

// videoField имя поля multipart формы, которое ожидают оба сервиса
const videoField = "video"

// client общая часть клиентов сервисов анализа
type client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

func newClient(baseURL string, timeout time.Duration, logger *zap.Logger) client {
	return client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// getJSON выполняет GET и декодирует ответ в out
func (c *client) getJSON(ctx context.Context, path string, out any) error {
	_, err := c.get(ctx, path, out)
	return err
}

// get как getJSON, но дополнительно возвращает код ответа
func (c *client) get(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, out)
}

// getHealth запрашивает health-эндпоинт, любой ответ не 2xx считается ошибкой
func (c *client) getHealth(ctx context.Context, path string, out any) error {
	code, err := c.get(ctx, path, out)
	if err != nil {
		return err
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("%w %d", ErrUnexpectedStatus, code)
	}
	return nil
}

// upload отправляет видео единственным файлом multipart формы.
// progress вызывается по мере чтения файла.
func (c *client) upload(ctx context.Context, path string, upload domain.Upload, progress analysis.ProgressFunc, out any) error {
	head, tail, contentType, err := multipartEnvelope(videoField, upload)
	if err != nil {
		return err
	}

	body := io.MultiReader(
		bytes.NewReader(head),
		&progressReader{r: upload.Body, total: upload.Size, report: progress},
		bytes.NewReader(tail),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if upload.Size > 0 {
		req.ContentLength = int64(len(head)) + upload.Size + int64(len(tail))
	}

	_, err = c.do(req, out)
	return err
}

func (c *client) do(req *http.Request, out any) (int, error) {
	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request to %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Analysis service request completed",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", time.Since(startTime)),
	)

	return resp.StatusCode, decodeEnvelope(resp, out)
}

// decodeEnvelope декодирует тело ответа. Ответ не 2xx с разбираемым телом
// считается ответом сервиса (конверт с ошибкой), иначе ошибкой транспорта.
func decodeEnvelope(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if decodeErr := json.Unmarshal(body, out); decodeErr != nil {
		if !ok {
			return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, truncate(body, 256))
		}
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartEnvelope строит начало и конец multipart тела вокруг файла,
// чтобы файл можно было передать потоком и при этом знать Content-Length.
func multipartEnvelope(field string, upload domain.Upload) (head, tail []byte, contentType string, err error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(upload.FileName)))
	ct := upload.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	if _, err := mw.CreatePart(h); err != nil {
		return nil, nil, "", fmt.Errorf("failed to create multipart part: %w", err)
	}
	head = bytes.Clone(buf.Bytes())
	buf.Reset()

	if err := mw.Close(); err != nil {
		return nil, nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	tail = bytes.Clone(buf.Bytes())

	return head, tail, mw.FormDataContentType(), nil
}

// progressReader сообщает round(loaded*100/total), либо 0, если размер неизвестен
type progressReader struct {
	r      io.Reader
	total  int64
	loaded int64
	last   int
	report analysis.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.report != nil {
		p.loaded += int64(n)
		percent := 0
		if p.total > 0 {
			percent = int(math.Round(float64(p.loaded) * 100 / float64(p.total)))
			percent = min(percent, 100)
		}
		if percent >= p.last {
			p.last = percent
			p.report(percent)
		}
	}
	return n, err
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
