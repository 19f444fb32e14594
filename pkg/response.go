package pkg

// Response represents a standard API response.
type Response struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// NewResponse creates a new Response with the given code, data, and message.
func NewResponse(code int, data interface{}, message string) Response {
	return Response{
		Code:    code,
		Data:    data,
		Message: message,
	}
}

// ErrorResponse is the client-facing body for every failed request.
// Only the code, a message and the time of the failure are surfaced.
type ErrorResponse struct {
	ErrorCode int    `json:"errorCode"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// NewErrorResponse creates an ErrorResponse. timestamp is in Unix milliseconds.
func NewErrorResponse(code int, message string, timestamp int64) ErrorResponse {
	return ErrorResponse{
		ErrorCode: code,
		Message:   message,
		Timestamp: timestamp,
	}
}
