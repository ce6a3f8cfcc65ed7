package store

import (
	"context"
	"time"

	"parkly/internal/infra"

	"github.com/google/uuid"
)

// NotificationStore enqueues outcome events for the external
// notification collaborator, in the same transaction as the mutation
// they describe.
type NotificationStore struct {
	db DBTX
}

func NewNotificationStore(db DBTX) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	const q = `
		INSERT INTO notification_jobs (id, kind, topic, payload, run_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := s.db.Exec(ctx, q, uuid.New(), kind, topic, payload, runAt); err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}
