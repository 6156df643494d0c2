package trigger_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusview/nimbus/internal/location"
	"github.com/nimbusview/nimbus/internal/screen"
	"github.com/nimbusview/nimbus/internal/trigger"
	"github.com/nimbusview/nimbus/internal/weather"
)

type fakeScreen struct {
	calls []string
	err   error
}

func (f *fakeScreen) Refresh(_ context.Context) (screen.State, error) {
	f.calls = append(f.calls, "refresh")
	return screen.State{}, f.err
}

func (f *fakeScreen) SelectLocation(_ context.Context, key string) (screen.State, error) {
	f.calls = append(f.calls, "select:"+key)
	return screen.State{}, f.err
}

func (f *fakeScreen) SetUnit(_ context.Context, unit weather.Unit) (screen.State, error) {
	f.calls = append(f.calls, "unit:"+string(unit))
	return screen.State{}, f.err
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []string
	}{
		{"refresh", `{"action":"refresh"}`, []string{"refresh"}},
		{"select location", `{"action":"select_location","location":"Japan"}`, []string{"select:Japan"}},
		{"set unit", `{"action":"set_unit","unit":"F"}`, []string{"unit:F"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeScreen{}
			d := trigger.NewDispatcher(s, zerolog.Nop())

			require.NoError(t, d.Dispatch(context.Background(), []byte(tt.body)))
			assert.Equal(t, tt.expected, s.calls)
		})
	}
}

func TestDispatch_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected error
	}{
		{"not json", `refresh please`, trigger.ErrMalformed},
		{"missing location", `{"action":"select_location"}`, trigger.ErrMalformed},
		{"bad unit", `{"action":"set_unit","unit":"K"}`, trigger.ErrMalformed},
		{"unknown action", `{"action":"reboot"}`, trigger.ErrUnknownAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeScreen{}
			d := trigger.NewDispatcher(s, zerolog.Nop())

			err := d.Dispatch(context.Background(), []byte(tt.body))
			assert.ErrorIs(t, err, tt.expected)
			assert.Empty(t, s.calls)
		})
	}
}

func TestDispatch_ScreenError(t *testing.T) {
	s := &fakeScreen{err: screen.ErrStopped}
	d := trigger.NewDispatcher(s, zerolog.Nop())

	err := d.Dispatch(context.Background(), []byte(`{"action":"refresh"}`))
	assert.ErrorIs(t, err, screen.ErrStopped)
}

func TestAcknowledge(t *testing.T) {
	logger := zerolog.Nop()

	assert.True(t, trigger.Acknowledge(nil, logger))
	assert.True(t, trigger.Acknowledge(fmt.Errorf("%w: \"reboot\"", trigger.ErrUnknownAction), logger))
	assert.True(t, trigger.Acknowledge(fmt.Errorf("select_location: %w", location.ErrUnknownLocation), logger))
	assert.False(t, trigger.Acknowledge(fmt.Errorf("%w: eof", trigger.ErrMalformed), logger))
	assert.False(t, trigger.Acknowledge(errors.New("screen busy"), logger))
}
