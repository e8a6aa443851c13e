package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"rcvj/internal/common"
)

// ErrorCollector counts translated errors by code; wired to the metrics
// collector at startup.
type ErrorCollector interface {
	ObserveError(code string)
}

var collector ErrorCollector

func SetErrorCollector(c ErrorCollector) {
	collector = c
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error translates an AppError into a JSON body and HTTP status. Unknown
// error types become a generic 500 so internal details never leak.
func Error(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if !errors.As(err, &appErr) {
		appErr = common.NewError(common.CodeInternal, "internal server error", err)
	}
	if collector != nil {
		collector.ObserveError(string(appErr.Code))
	}
	body := errorBody{Error: appErr.Message, Fields: appErr.Fields}
	if appErr.Code == common.CodeInternal {
		body = errorBody{Error: "internal server error"}
	}
	JSON(w, statusFor(appErr.Code), body)
}

func statusFor(code common.Code) int {
	switch code {
	case common.CodeValidation:
		return http.StatusBadRequest
	case common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeForbidden:
		return http.StatusForbidden
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeConflict:
		return http.StatusConflict
	case common.CodeRateLimited:
		return http.StatusTooManyRequests
	case common.CodeStorage, common.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
