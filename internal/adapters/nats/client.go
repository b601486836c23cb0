package natsadapter

import (
	"context"
	"encoding/json"

	nats "github.com/nats-io/nats.go"

	"github.com/minjun0702/nodeskillproject/internal/domain"
)

// EventPublisher announces domain events for downstream consumers
// (notification service, analytics). Publishing is fire-and-forget; the
// caller treats failures as non-fatal.
type EventPublisher interface {
	UserCreated(ctx context.Context, user *domain.User) error
	ResumeStatusChanged(ctx context.Context, entry *domain.ResumeLog) error
}

type publisher struct {
	conn          *nats.Conn
	userSubject   string
	statusSubject string
}

func NewEventPublisher(conn *nats.Conn, userSubject, statusSubject string) EventPublisher {
	return &publisher{conn: conn, userSubject: userSubject, statusSubject: statusSubject}
}

func (p *publisher) UserCreated(_ context.Context, user *domain.User) error {
	payload := map[string]interface{}{
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
	}
	return p.publish(p.userSubject, payload)
}

func (p *publisher) ResumeStatusChanged(_ context.Context, entry *domain.ResumeLog) error {
	payload := map[string]interface{}{
		"resumeId":    entry.ResumeID,
		"recruiterId": entry.RecruiterID,
		"oldStatus":   entry.OldStatus,
		"newStatus":   entry.NewStatus,
		"reason":      entry.Reason,
	}
	return p.publish(p.statusSubject, payload)
}

func (p *publisher) publish(subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, data)
}
