package screen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/nimbusview/nimbus/internal/diagnostics"
	"github.com/nimbusview/nimbus/internal/location"
	"github.com/nimbusview/nimbus/internal/weather"
)

// DefaultFetchTimeout bounds one load: location resolution plus the fetch.
const DefaultFetchTimeout = 15 * time.Second

// Machine errors.
var (
	// ErrStopped is returned for actions sent after Run has returned.
	ErrStopped = errors.New("screen machine stopped")

	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("screen machine already running")

	// ErrInvalidSetting is returned for an unknown unit or theme.
	ErrInvalidSetting = errors.New("invalid setting")
)

// Resolver turns a selection key into a location.
type Resolver interface {
	Resolve(ctx context.Context, key string) (location.Location, error)
}

// Fetcher loads the current weather for a query.
type Fetcher interface {
	Fetch(ctx context.Context, q weather.Query) (weather.Snapshot, error)
}

// Recorder stores diagnostic records.
type Recorder interface {
	Save(ctx context.Context, record *diagnostics.Record) error
}

// Config holds configuration for the screen machine.
type Config struct {
	// Resolver resolves the selected location (required).
	Resolver Resolver

	// Fetcher loads weather (required).
	Fetcher Fetcher

	// Diagnostics receives a record for every failure (optional).
	Diagnostics Recorder

	// Settings are the initial settings. A zero value selects DefaultSettings.
	Settings Settings

	// FetchTimeout bounds each load.
	// Default: 15 seconds
	FetchTimeout time.Duration

	// TimeZone renders clock texts. Default: time.Local.
	TimeZone *time.Location

	// Clock returns the current time. Default: time.Now.
	Clock func() time.Time

	// Metrics records load outcomes (optional).
	Metrics *Metrics

	// Logger for machine operations.
	Logger zerolog.Logger
}

// Stats counts loads since the machine was created.
type Stats struct {
	Issued    uint64
	Applied   uint64
	Discarded uint64
	Failed    uint64
}

// envelope carries an event into the loop. reply, if set, receives the state
// after the event was applied.
type envelope struct {
	ev    event
	reply chan State
}

// Machine owns the screen state. A single goroutine (Run) applies every event
// in order; loads run in their own goroutines and report back as events.
type Machine struct {
	resolver     Resolver
	fetcher      Fetcher
	recorder     Recorder
	fetchTimeout time.Duration
	tz           *time.Location
	clock        func() time.Time
	metrics      *Metrics
	logger       zerolog.Logger

	events  chan envelope
	state   atomic.Pointer[State]
	running atomic.Bool
	done    chan struct{}

	// issuedAt is only touched by the loop goroutine.
	issuedAt map[uint64]time.Time

	issued    atomic.Uint64
	applied   atomic.Uint64
	discarded atomic.Uint64
	failed    atomic.Uint64

	background sync.WaitGroup
}

// New creates a machine in the Idle phase. Call Run to start processing.
func New(cfg Config) *Machine {
	settings := cfg.Settings
	if settings == (Settings{}) {
		settings = DefaultSettings()
	}
	if settings.Unit == "" {
		settings.Unit = weather.Celsius
	}
	if settings.Theme == "" {
		settings.Theme = ThemeDark
	}
	if settings.LocationKey == "" {
		settings.LocationKey = location.CurrentLocationKey
	}

	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	tz := cfg.TimeZone
	if tz == nil {
		tz = time.Local
	}

	m := &Machine{
		resolver:     cfg.Resolver,
		fetcher:      cfg.Fetcher,
		recorder:     cfg.Diagnostics,
		fetchTimeout: timeout,
		tz:           tz,
		clock:        clock,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
		events:       make(chan envelope, 64),
		done:         make(chan struct{}),
		issuedAt:     make(map[uint64]time.Time),
	}

	initial := initialState(settings, clock())
	m.state.Store(&initial)

	return m
}

// Run applies events until ctx is canceled. It waits for in-flight loads and
// diagnostic writes to finish before returning.
func (m *Machine) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(m.done)
	defer m.background.Wait()

	m.logger.Info().
		Str("location", m.State().Settings.LocationKey).
		Dur("fetch_timeout", m.fetchTimeout).
		Msg("screen machine started")

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("screen machine stopping")
			return ctx.Err()
		case env := <-m.events:
			next := m.apply(ctx, env.ev)
			if env.reply != nil {
				env.reply <- next
			}
		}
	}
}

// Done is closed once Run has returned.
func (m *Machine) Done() <-chan struct{} {
	return m.done
}

// State returns the latest published revision.
func (m *Machine) State() State {
	return *m.state.Load()
}

// View renders the latest revision.
func (m *Machine) View() ViewModel {
	return Render(m.State(), m.tz)
}

// TimeZone returns the display time zone.
func (m *Machine) TimeZone() *time.Location {
	return m.tz
}

// Stats returns the load counters.
func (m *Machine) Stats() Stats {
	return Stats{
		Issued:    m.issued.Load(),
		Applied:   m.applied.Load(),
		Discarded: m.discarded.Load(),
		Failed:    m.failed.Load(),
	}
}

// Start issues the initial load. It is a no-op once the machine has left Idle.
func (m *Machine) Start(ctx context.Context) (State, error) {
	return m.send(ctx, startEvent{})
}

// Refresh reloads the selected location. From Failed this is the retry path.
func (m *Machine) Refresh(ctx context.Context) (State, error) {
	return m.send(ctx, refreshEvent{})
}

// SelectLocation switches to key and loads it. Keys outside the selection
// list are rejected without touching the state.
func (m *Machine) SelectLocation(ctx context.Context, key string) (State, error) {
	if !location.IsKnown(key) {
		err := fmt.Errorf("%w: %q", location.ErrUnknownLocation, key)
		s, sendErr := m.send(ctx, rejectLocationEvent{key: key, err: err})
		if sendErr != nil {
			m.logger.Error().Err(sendErr).Str("location", key).Msg("rejected unknown location key")
		}
		return s, err
	}
	return m.send(ctx, selectLocationEvent{key: key})
}

// SetUnit changes the display unit. It never reloads.
func (m *Machine) SetUnit(ctx context.Context, unit weather.Unit) (State, error) {
	if !unit.Valid() {
		return m.State(), fmt.Errorf("%w: unit %q", ErrInvalidSetting, unit)
	}
	return m.send(ctx, setUnitEvent{unit: unit})
}

// SetTheme changes the color scheme.
func (m *Machine) SetTheme(ctx context.Context, theme Theme) (State, error) {
	if _, ok := ParseTheme(string(theme)); !ok {
		return m.State(), fmt.Errorf("%w: theme %q", ErrInvalidSetting, theme)
	}
	return m.send(ctx, setThemeEvent{theme: theme})
}

// SetColorblind toggles colorblind mode.
func (m *Machine) SetColorblind(ctx context.Context, enabled bool) (State, error) {
	return m.send(ctx, setColorblindEvent{enabled: enabled})
}

// DismissNotice clears the notice and the transient error flag.
func (m *Machine) DismissNotice(ctx context.Context) (State, error) {
	return m.send(ctx, dismissNoticeEvent{})
}

// Tick advances the displayed clock. It never reloads.
func (m *Machine) Tick(ctx context.Context) (State, error) {
	return m.send(ctx, tickEvent{now: m.clock()})
}

// send hands ev to the loop and waits until it has been applied.
func (m *Machine) send(ctx context.Context, ev event) (State, error) {
	reply := make(chan State, 1)

	select {
	case m.events <- envelope{ev: ev, reply: reply}:
	case <-m.done:
		return m.State(), ErrStopped
	case <-ctx.Done():
		return m.State(), ctx.Err()
	}

	select {
	case s := <-reply:
		return s, nil
	case <-m.done:
		return m.State(), ErrStopped
	case <-ctx.Done():
		return m.State(), ctx.Err()
	}
}

// apply runs update and carries out its effects. Loop goroutine only.
func (m *Machine) apply(ctx context.Context, ev event) State {
	cur := m.State()
	t := update(cur, ev)

	// Counters move before the state is published so that a reader who
	// observes the new state also observes its outcome in Stats.
	switch ev := ev.(type) {
	case loadResultEvent:
		m.finishLoad(ctx, cur, t, ev)
	case rejectLocationEvent:
		m.logger.Error().Str("location", ev.key).Msg("rejected unknown location key")
		m.record(diagnostics.NewRecord(string(ErrorUnknownLocation), "select_location", ev.key, ev.err.Error()))
	}

	if t.state.Revision != cur.Revision {
		next := t.state
		m.state.Store(&next)
	}

	if t.load != nil {
		m.issued.Add(1)
		m.issuedAt[t.load.tag] = m.clock()
		m.logger.Debug().
			Uint64("seq", t.load.tag).
			Str("location", t.load.key).
			Str("phase", string(t.state.Lifecycle.Phase)).
			Msg("load issued")

		m.background.Add(1)
		go m.runLoad(ctx, *t.load)
	}

	return t.state
}

// finishLoad updates counters, metrics, logs and diagnostics for a completed load.
func (m *Machine) finishLoad(ctx context.Context, prev State, t transition, res loadResultEvent) {
	if issued, ok := m.issuedAt[res.tag]; ok {
		m.metrics.recordDuration(ctx, m.clock().Sub(issued).Seconds())
		delete(m.issuedAt, res.tag)
	}

	logger := m.logger.With().
		Uint64("seq", res.tag).
		Uint64("current_seq", prev.seq).
		Logger()

	switch t.outcome {
	case outcomeDiscarded:
		m.discarded.Add(1)
		m.metrics.recordOutcome(ctx, "discarded", ErrorNone)
		if res.err != nil {
			logger.Debug().Err(res.err).Msg("discarded superseded load failure")
		} else {
			logger.Debug().Msg("discarded superseded load")
		}

	case outcomeApplied:
		m.applied.Add(1)
		m.metrics.recordOutcome(ctx, "applied", ErrorNone)
		logger.Debug().
			Str("location", res.location.Name).
			Float64("temp_c", res.snapshot.TemperatureC).
			Msg("snapshot applied")

	case outcomeFailed:
		m.failed.Add(1)
		m.metrics.recordOutcome(ctx, "failed", t.kind)

		staleKept := prev.Snapshot != nil
		logger.Error().
			Err(res.err).
			Str("kind", string(t.kind)).
			Str("location", t.state.Settings.LocationKey).
			Bool("stale_kept", staleKept).
			Msg("load failed")

		rec := diagnostics.NewRecord(string(t.kind), "load", t.state.Settings.LocationKey, res.err.Error())
		rec.Sequence = res.tag
		rec.StaleKept = staleKept
		m.record(rec)
	}
}

// runLoad resolves the location and fetches its weather, then posts the
// result tagged with req.tag.
func (m *Machine) runLoad(ctx context.Context, req loadRequest) {
	defer m.background.Done()

	loadCtx, cancel := context.WithTimeout(ctx, m.fetchTimeout)
	defer cancel()

	loadCtx, span := otel.Tracer(instrumentationName).Start(loadCtx, "screen.load")
	span.SetAttributes(
		attribute.Int64("screen.seq", int64(req.tag)), //nolint:gosec // tags stay far below MaxInt64
		attribute.String("screen.location", req.key),
	)
	defer span.End()

	res := loadResultEvent{tag: req.tag}
	res.location, res.err = m.resolver.Resolve(loadCtx, req.key)
	if res.err == nil {
		res.snapshot, res.err = m.fetcher.Fetch(loadCtx, weather.ByCoordinates(res.location.Latitude, res.location.Longitude))
	}
	if res.err != nil && errors.Is(loadCtx.Err(), context.DeadlineExceeded) {
		res.err = fmt.Errorf("%w: load timed out after %s: %w", weather.ErrNetwork, m.fetchTimeout, res.err)
	}

	if res.err != nil {
		span.RecordError(res.err)
		span.SetStatus(codes.Error, res.err.Error())
	}

	select {
	case m.events <- envelope{ev: res}:
	case <-ctx.Done():
	}
}

// record writes a diagnostic record without blocking the loop. Loop goroutine
// only, so background.Add never races Run's final Wait.
func (m *Machine) record(rec *diagnostics.Record) {
	if m.recorder == nil {
		return
	}

	m.background.Add(1)
	go func() {
		defer m.background.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := m.recorder.Save(ctx, rec); err != nil {
			m.logger.Warn().Err(err).Str("kind", rec.Kind).Msg("failed to save diagnostic record")
		}
	}()
}
