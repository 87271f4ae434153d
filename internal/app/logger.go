package app

import (
	"context"

	"placementhub/internal/common"
)

type Logger interface {
	Info(msg string)
	Error(msg string)
}

func analyticsPayload(ctx context.Context, payload map[string]string) map[string]string {
	if requestID := common.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}
	return payload
}
