package api

import "net/http"

// Response is the envelope every endpoint returns.
type Response struct {
	Error   bool        `json:"error"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Status  int         `json:"status"`
}

// SuccessResponse wraps data with status 200 unless one is given.
func SuccessResponse(message string, data interface{}, status ...int) Response {
	code := http.StatusOK
	if len(status) > 0 {
		code = status[0]
	}
	return Response{
		Error:   false,
		Message: message,
		Data:    data,
		Status:  code,
	}
}

// ErrorResponse wraps a failure.
func ErrorResponse(status int, message string, data interface{}) Response {
	return Response{
		Error:   true,
		Message: message,
		Data:    data,
		Status:  status,
	}
}
