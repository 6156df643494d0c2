package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/nimbusview/nimbus/internal/api/models"
	"github.com/nimbusview/nimbus/internal/api/response"
	"github.com/nimbusview/nimbus/internal/location"
	"github.com/nimbusview/nimbus/internal/screen"
	"github.com/nimbusview/nimbus/internal/weather"
)

// Screen is the state machine behind the screen endpoints.
type Screen interface {
	State() screen.State
	Stats() screen.Stats
	TimeZone() *time.Location
	Done() <-chan struct{}

	Refresh(ctx context.Context) (screen.State, error)
	SelectLocation(ctx context.Context, key string) (screen.State, error)
	SetUnit(ctx context.Context, unit weather.Unit) (screen.State, error)
	SetTheme(ctx context.Context, theme screen.Theme) (screen.State, error)
	SetColorblind(ctx context.Context, enabled bool) (screen.State, error)
	DismissNotice(ctx context.Context) (screen.State, error)
}

// ScreenHandler handles the screen view and its actions.
type ScreenHandler struct {
	screen Screen
	logger zerolog.Logger
}

// NewScreenHandler creates a new ScreenHandler.
func NewScreenHandler(s Screen, logger zerolog.Logger) *ScreenHandler {
	return &ScreenHandler{screen: s, logger: logger}
}

// GetScreen handles GET /v1/screen - the current view model.
func (h *ScreenHandler) GetScreen(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.render(h.screen.State()))
}

// ListLocations handles GET /v1/screen/locations - the location menu.
func (h *ScreenHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	keys := location.Keys()
	options := models.LocationOptions{
		Items:    make([]models.LocationOption, 0, len(keys)),
		Selected: h.screen.State().Settings.LocationKey,
	}
	for _, key := range keys {
		name, ok := location.PresetName(key)
		if !ok {
			name = key
		}
		options.Items = append(options.Items, models.LocationOption{Key: key, Name: name})
	}
	response.JSON(w, r, http.StatusOK, options)
}

// Refresh handles POST /v1/screen/refresh.
func (h *ScreenHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "refresh", func(ctx context.Context) (screen.State, error) {
		return h.screen.Refresh(ctx)
	})
}

// DismissNotice handles POST /v1/screen/notice:dismiss.
func (h *ScreenHandler) DismissNotice(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "dismiss_notice", func(ctx context.Context) (screen.State, error) {
		return h.screen.DismissNotice(ctx)
	})
}

// SelectLocation handles PUT /v1/screen/location.
func (h *ScreenHandler) SelectLocation(w http.ResponseWriter, r *http.Request) {
	var input models.SelectLocationRequest
	if err := response.Decode(r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}
	if input.Key == "" {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "key", Message: "key is required", Code: "REQUIRED"},
		})
		return
	}

	h.act(w, r, "select_location", func(ctx context.Context) (screen.State, error) {
		return h.screen.SelectLocation(ctx, input.Key)
	})
}

// SetUnit handles PUT /v1/screen/unit.
func (h *ScreenHandler) SetUnit(w http.ResponseWriter, r *http.Request) {
	var input models.SetUnitRequest
	if err := response.Decode(r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	unit, err := weather.ParseUnit(input.Unit)
	if err != nil {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "unit", Message: "must be C or F", Code: "INVALID"},
		})
		return
	}

	h.act(w, r, "set_unit", func(ctx context.Context) (screen.State, error) {
		return h.screen.SetUnit(ctx, unit)
	})
}

// SetTheme handles PUT /v1/screen/theme.
func (h *ScreenHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var input models.SetThemeRequest
	if err := response.Decode(r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	theme, ok := screen.ParseTheme(input.Theme)
	if !ok {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "theme", Message: "must be dark or light", Code: "INVALID"},
		})
		return
	}

	h.act(w, r, "set_theme", func(ctx context.Context) (screen.State, error) {
		return h.screen.SetTheme(ctx, theme)
	})
}

// SetColorblind handles PUT /v1/screen/colorblind.
func (h *ScreenHandler) SetColorblind(w http.ResponseWriter, r *http.Request) {
	var input models.SetColorblindRequest
	if err := response.Decode(r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}
	if input.Enabled == nil {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "enabled", Message: "enabled is required", Code: "REQUIRED"},
		})
		return
	}

	h.act(w, r, "set_colorblind", func(ctx context.Context) (screen.State, error) {
		return h.screen.SetColorblind(ctx, *input.Enabled)
	})
}

// act runs one machine action and answers 202 with the resulting view.
func (h *ScreenHandler) act(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context) (screen.State, error)) {
	state, err := fn(r.Context())
	if err != nil {
		h.writeActionError(w, r, action, err)
		return
	}
	response.Accepted(w, r, h.render(state))
}

func (h *ScreenHandler) writeActionError(w http.ResponseWriter, r *http.Request, action string, err error) {
	switch {
	case errors.Is(err, location.ErrUnknownLocation):
		response.UnknownLocation(w, r, err.Error())
	case errors.Is(err, screen.ErrInvalidSetting):
		response.BadRequest(w, r, err.Error(), nil)
	case errors.Is(err, screen.ErrStopped):
		response.ServiceUnavailable(w, r, "screen is not running")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		response.ServiceUnavailable(w, r, "screen did not accept the action in time")
	default:
		h.logger.Error().Err(err).Str("action", action).Msg("screen action failed")
		response.InternalError(w, r, "screen action failed")
	}
}

func (h *ScreenHandler) render(s screen.State) models.Screen {
	return toScreenModel(screen.Render(s, h.screen.TimeZone()), s.Settings)
}

func toScreenModel(vm screen.ViewModel, settings screen.Settings) models.Screen {
	return models.Screen{
		DisplayLocationName: vm.DisplayLocationName,
		Greeting:            string(vm.Greeting),
		TemperatureDisplay:  vm.TemperatureDisplay,
		ConditionText:       vm.ConditionText,
		FormattedDateTime:   vm.FormattedDateTime,
		IconKey:             string(vm.IconKey),
		SunriseText:         vm.SunriseText,
		SunsetText:          vm.SunsetText,
		AirQualityText:      vm.AirQualityText,
		UVText:              vm.UVText,
		PrecipitationPct:    vm.PrecipitationPct,
		HumidityPct:         vm.HumidityPct,
		LifecycleState:      string(vm.LifecycleState),
		LifecycleError:      string(vm.LifecycleError),
		Settings: models.ScreenSettings{
			LocationKey:    settings.LocationKey,
			Unit:           string(settings.Unit),
			Theme:          string(vm.Theme),
			ColorblindMode: vm.ColorblindMode,
		},
		TransientError: string(vm.TransientError),
		Notice:         vm.Notice,
		HasData:        vm.HasData,
		Revision:       vm.Revision,
	}
}
