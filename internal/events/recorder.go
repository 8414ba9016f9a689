// Package events publishes structured completion events for submissions,
// gradings, and plagiarism checks. Publishing is fire-and-forget: a broker
// failure is logged and never blocks the operation that produced the event.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Event types emitted by the assessment pipeline.
const (
	TypeQuizSubmitted       = "quiz.submitted"
	TypeAssignmentSubmitted = "assignment.submitted"
	TypeAssignmentGraded    = "assignment.graded"
	TypePlagiarismChecked   = "plagiarism.checked"
)

// Event is one structured record handed to the observability collaborator.
type Event struct {
	Source   string                 `json:"source"`
	Type     string                 `json:"type"`
	ActorID  uint                   `json:"actor_id"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	SentAt   time.Time              `json:"sent_at"`
}

// Recorder fans events out to NATS and a Redis channel. Either sink may be nil.
type Recorder struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	nodeID       string
}

// NewRecorder constructs an event recorder. channelBase names both the Redis
// channel and the NATS subject, e.g. "orchid:assessment".
func NewRecorder(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) *Recorder {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &Recorder{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "event_recorder").Logger(),
		nodeID:       uuid.NewString(),
	}
}

// Record publishes the event. Failures are logged, never returned.
func (r *Recorder) Record(ctx context.Context, eventType string, actorID uint, metadata map[string]interface{}) {
	if r == nil {
		return
	}

	event := Event{
		Source:   r.nodeID,
		Type:     eventType,
		ActorID:  actorID,
		Metadata: metadata,
		SentAt:   time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		r.logger.Warn().Err(err).Str("type", eventType).Msg("failed to encode event")
		return
	}

	if r.redis != nil && r.redisChannel != "" {
		if err := r.redis.Publish(ctx, r.redisChannel, payload).Err(); err != nil {
			r.logger.Warn().Err(err).Str("type", eventType).Msg("failed to publish event to redis")
		}
	}

	if r.nats != nil && r.natsSubject != "" {
		if err := r.nats.Publish(r.natsSubject, payload); err != nil {
			r.logger.Warn().Err(err).Str("type", eventType).Msg("failed to publish event to nats")
		}
	}
}
