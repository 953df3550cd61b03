package dto

// ErrorResponse ответ с ошибкой
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"` // Для поиска запроса в логах
}

// NewErrorResponse создаёт ответ с ошибкой
func NewErrorResponse(err, message, requestID string) *ErrorResponse {
	return &ErrorResponse{
		Error:     err,
		Message:   message,
		RequestID: requestID,
	}
}
