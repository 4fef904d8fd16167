package response

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Page wraps a list endpoint's items with the window that produced them.
type Page struct {
	Items interface{} `json:"items"`
	Skip  int         `json:"skip"`
	Limit int         `json:"limit"`
	Total int64       `json:"total"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// SuccessWithPage returns a success response carrying a paginated list
func SuccessWithPage(statusCode int, items interface{}, skip, limit int, total int64) Response {
	return Success(statusCode, Page{Items: items, Skip: skip, Limit: limit, Total: total})
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}
