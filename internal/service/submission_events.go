package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/gema-judge-api/internal/models"
	"github.com/noah-isme/gema-judge-api/internal/observability"
)

// SubmissionRecordedEvent is broadcast after a submission has been stored. Streak and
// heatmap consumers subscribe to it.
type SubmissionRecordedEvent struct {
	Type         string    `json:"type"`
	Source       string    `json:"source"`
	SubmissionID string    `json:"submission_id"`
	UserID       uint      `json:"user_id"`
	ProblemID    uint      `json:"problem_id"`
	Language     string    `json:"language"`
	AllPassed    bool      `json:"all_passed"`
	SubmittedAt  time.Time `json:"submitted_at"`
	SentAt       time.Time `json:"sent_at"`
}

const submissionRecordedType = "submission.recorded"

// SubmissionEventPublisher fans submission events out to the configured brokers.
type SubmissionEventPublisher interface {
	PublishRecorded(ctx context.Context, submission models.Submission) error
}

type submissionEventPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	nodeID       string
}

// NewSubmissionEventPublisher returns a publisher for the given channel base. Either broker may be nil.
func NewSubmissionEventPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string) SubmissionEventPublisher {
	if channelBase == "" {
		channelBase = "gema"
	}
	return &submissionEventPublisher{
		redis:        redisClient,
		redisChannel: channelBase + ":submissions",
		nats:         natsConn,
		natsSubject:  channelBase + ".submissions",
		nodeID:       uuid.NewString(),
	}
}

func (p *submissionEventPublisher) PublishRecorded(ctx context.Context, submission models.Submission) error {
	event := SubmissionRecordedEvent{
		Type:         submissionRecordedType,
		Source:       p.nodeID,
		SubmissionID: submission.ID,
		UserID:       submission.UserID,
		ProblemID:    submission.ProblemID,
		Language:     submission.Language,
		AllPassed:    submission.AllPassed,
		SubmittedAt:  submission.SubmittedAt,
		SentAt:       time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var errs []error
	if p.redis != nil {
		err := p.redis.Publish(ctx, p.redisChannel, payload).Err()
		observability.SubmissionEvents().WithLabelValues("redis", publishResult(err)).Inc()
		if err != nil {
			errs = append(errs, err)
		}
	}
	if p.nats != nil {
		err := p.nats.Publish(p.natsSubject, payload)
		observability.SubmissionEvents().WithLabelValues("nats", publishResult(err)).Inc()
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func publishResult(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
