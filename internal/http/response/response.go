package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"placementhub/internal/common"
)

type ErrorCollector interface {
	IncErrors()
}

var collector ErrorCollector

// SetErrorCollector wires the metrics collector once at startup.
func SetErrorCollector(c ErrorCollector) {
	collector = c
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := map[string]any{"code": string(common.CodeInternal), "message": "internal error"}

	var appErr *common.Error
	if errors.As(err, &appErr) {
		status = statusFor(appErr.Code)
		body["code"] = string(appErr.Code)
		body["message"] = appErr.Message
		if len(appErr.Fields) > 0 {
			body["fields"] = appErr.Fields
		}
	}
	if status >= http.StatusInternalServerError && collector != nil {
		collector.IncErrors()
	}
	JSON(w, status, body)
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
	case common.CodeConflict, common.CodeQuotaExceeded:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
