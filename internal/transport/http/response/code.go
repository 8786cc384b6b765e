package response

import "net/http"

// Error codes carried by action errors. Only CodeUnauthorized changes the
// HTTP status; every other failure is reported in the body with 200.
const (
	CodeOK           = 0
	CodeBadRequest   = 400
	CodeUnauthorized = 401
	CodeNotFound     = 404
	CodeServerError  = 500
)

var CodeMsgMap = map[int]string{
	CodeOK:           "OK",
	CodeBadRequest:   "Invalid data",
	CodeUnauthorized: "Unauthorized",
	CodeNotFound:     "Not found",
	CodeServerError:  "An unexpected error occurred",
}

func HTTPStatus(code int) int {
	if code == CodeUnauthorized {
		return http.StatusUnauthorized
	}
	return http.StatusOK
}
