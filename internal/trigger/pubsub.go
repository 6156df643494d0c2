package trigger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/nimbusview/nimbus/internal/location"
)

// Subscriber receives trigger messages from a Pub/Sub subscription.
type Subscriber struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	dispatcher       *Dispatcher
	logger           zerolog.Logger
}

// SubscriberConfig holds configuration for the Pub/Sub subscriber.
type SubscriberConfig struct {
	ProjectID        string
	SubscriptionName string
	Dispatcher       *Dispatcher
	Logger           zerolog.Logger
}

// NewSubscriber creates a Pub/Sub client bound to the trigger subscription.
func NewSubscriber(ctx context.Context, cfg SubscriberConfig) (*Subscriber, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Actions are serialized by the screen anyway.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 4
	subscriber.ReceiveSettings.MaxExtension = time.Minute

	return &Subscriber{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		dispatcher:       cfg.Dispatcher,
		logger:           cfg.Logger,
	}, nil
}

// Start processes messages until ctx is canceled.
func (s *Subscriber) Start(ctx context.Context) error {
	s.logger.Info().
		Str("subscription", s.subscriptionName).
		Msg("starting trigger subscriber")

	return s.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		logger := s.logger.With().
			Str("message_id", msg.ID).
			Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
			Logger()

		if Acknowledge(s.dispatcher.Dispatch(ctx, msg.Data), logger) {
			msg.Ack()
		} else {
			msg.Nack()
		}
	})
}

// Close closes the Pub/Sub client.
func (s *Subscriber) Close() error {
	return s.client.Close()
}

// Acknowledge decides whether a dispatch result should be acked. Messages
// that would fail the same way on redelivery are acked; transient failures
// are nacked for another attempt.
func Acknowledge(err error, logger zerolog.Logger) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrUnknownAction):
		logger.Warn().Err(err).Msg("ignoring unknown trigger action")
		return true
	case errors.Is(err, location.ErrUnknownLocation):
		logger.Warn().Err(err).Msg("ignoring trigger for unknown location")
		return true
	case errors.Is(err, ErrMalformed):
		logger.Error().Err(err).Msg("failed to parse trigger message")
		return false
	default:
		logger.Error().Err(err).Msg("trigger failed")
		return false
	}
}
