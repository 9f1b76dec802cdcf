package response

// Response is the JSON envelope returned by every API endpoint
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorData  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Meta carries pagination info for list endpoints
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Error codes shared by handlers
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

func Success(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// Paginated wraps a page of items
func Paginated(data interface{}, page, perPage int, total int64) Response {
	totalPages := 0
	if perPage > 0 {
		totalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

func Error(code, message string) Response {
	return Response{
		Success: false,
		Error:   &ErrorData{Code: code, Message: message},
	}
}

func ErrorWithDetails(code, message, details string) Response {
	return Response{
		Success: false,
		Error:   &ErrorData{Code: code, Message: message, Details: details},
	}
}

func BadRequest(message string) Response {
	return Error(CodeBadRequest, message)
}

func ValidationError(message string) Response {
	return Error(CodeValidation, message)
}

func Unauthorized(message string) Response {
	return Error(CodeUnauthorized, message)
}

func Forbidden(message string) Response {
	return Error(CodeForbidden, message)
}

func NotFound(message string) Response {
	return Error(CodeNotFound, message)
}

func Conflict(code, message string) Response {
	return Error(code, message)
}

// InternalError hides the cause from clients
func InternalError() Response {
	return Error(CodeInternal, "Internal server error")
}
