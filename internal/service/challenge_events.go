package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Challenge event types emitted by the workflow.
const (
	EventChallengeAssigned = "challenge.assigned"
	EventChallengeSolved   = "challenge.solved"
	EventChallengeReviewed = "challenge.reviewed"
)

// ChallengeEvent describes a lifecycle transition of a student challenge.
type ChallengeEvent struct {
	Type               string    `json:"type"`
	StudentChallengeID uint      `json:"student_challenge_id"`
	ChallengeID        uint      `json:"challenge_id"`
	StudentID          uint      `json:"student_id"`
	ReviewerID         uint      `json:"reviewer_id"`
	OccurredAt         time.Time `json:"occurred_at"`
}

// ChallengeEventPublisher broadcasts challenge events to interested consumers.
type ChallengeEventPublisher interface {
	Publish(ctx context.Context, event ChallengeEvent) error
}

type challengeEventPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
}

// NewChallengeEventPublisher fans events out over redis pub/sub and NATS. Either transport may be nil.
func NewChallengeEventPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) ChallengeEventPublisher {
	channel := ""
	subject := ""
	if base := strings.TrimSpace(channelBase); base != "" {
		channel = base + ":events"
		subject = strings.ReplaceAll(base, ":", ".") + ".events"
	}

	return &challengeEventPublisher{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "challenge_events").Logger(),
	}
}

// EventChannel returns the redis channel name used for a channel base.
func EventChannel(channelBase string) string {
	return strings.TrimSpace(channelBase) + ":events"
}

func (p *challengeEventPublisher) Publish(ctx context.Context, event ChallengeEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var errs []error
	if p.redis != nil && p.redisChannel != "" {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			errs = append(errs, err)
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		p.logger.Debug().Str("type", event.Type).Uint("student_challenge_id", event.StudentChallengeID).Msg("challenge event published")
	}

	return errors.Join(errs...)
}
