package dto

// APIResponse is the envelope every successful request returns.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func Success(statusCode int, data any, message string) APIResponse {
	return APIResponse{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    true,
	}
}

// APIError is the envelope failures are rendered with. Success is always
// false; stack traces are never exposed.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func Failure(statusCode int, message string) APIError {
	return APIError{StatusCode: statusCode, Message: message}
}
