package analytics

import (
	"context"
	"time"
)

type Event struct {
	Name      string
	UserID    *string
	Payload   map[string]string
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, event Event) error
}
