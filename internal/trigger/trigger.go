// Package trigger lets remote systems drive the screen through a Pub/Sub
// subscription, for example a kiosk fleet refreshing every display at once.
package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nimbusview/nimbus/internal/screen"
	"github.com/nimbusview/nimbus/internal/weather"
)

// Actions accepted in a trigger message.
const (
	ActionRefresh        = "refresh"
	ActionSelectLocation = "select_location"
	ActionSetUnit        = "set_unit"
)

// Trigger errors.
var (
	// ErrMalformed is returned for a message body that is not a valid command.
	ErrMalformed = errors.New("malformed trigger message")

	// ErrUnknownAction is returned for an action this service does not handle.
	ErrUnknownAction = errors.New("unknown trigger action")
)

// Message is the JSON body of a trigger.
type Message struct {
	Action   string `json:"action"`
	Location string `json:"location,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

// Screen is the subset of the state machine a trigger can drive.
type Screen interface {
	Refresh(ctx context.Context) (screen.State, error)
	SelectLocation(ctx context.Context, key string) (screen.State, error)
	SetUnit(ctx context.Context, unit weather.Unit) (screen.State, error)
}

// Dispatcher decodes trigger messages and applies them to a screen.
type Dispatcher struct {
	screen Screen
	logger zerolog.Logger
}

// NewDispatcher creates a dispatcher for s.
func NewDispatcher(s Screen, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{screen: s, logger: logger}
}

// Dispatch decodes data and applies the command. It returns ErrMalformed for
// bodies that can never succeed and ErrUnknownAction for valid JSON naming an
// action it does not know.
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	startTime := time.Now()

	var err error
	switch msg.Action {
	case ActionRefresh:
		_, err = d.screen.Refresh(ctx)
	case ActionSelectLocation:
		if msg.Location == "" {
			return fmt.Errorf("%w: location is required", ErrMalformed)
		}
		_, err = d.screen.SelectLocation(ctx, msg.Location)
	case ActionSetUnit:
		unit, parseErr := weather.ParseUnit(msg.Unit)
		if parseErr != nil {
			return fmt.Errorf("%w: %w", ErrMalformed, parseErr)
		}
		_, err = d.screen.SetUnit(ctx, unit)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", msg.Action, err)
	}

	d.logger.Info().
		Str("action", msg.Action).
		Dur("duration", time.Since(startTime)).
		Msg("trigger applied")

	return nil
}
