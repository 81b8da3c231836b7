package serverutils

// Response is the JSON envelope every endpoint answers with.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	// ErrorCode is set when a request completed with a degraded answer.
	ErrorCode string `json:"error_code,omitempty"`
}

func SuccessResponse(message string, data interface{}) Response {
	return Response{
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) Response {
	return Response{
		Code:    code,
		Message: message,
	}
}

// DegradedResponse is a 200 answer that still carries the failure that shaped it.
func DegradedResponse(message, errorCode string, data interface{}) Response {
	return Response{
		Code:      200,
		Message:   message,
		Data:      data,
		ErrorCode: errorCode,
	}
}
