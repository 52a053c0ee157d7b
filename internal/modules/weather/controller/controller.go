package controller

import (
	"net/http"

	"mateometeo/internal/modules/weather/aggregation"
	"mateometeo/internal/modules/weather/archive"
)

type WeatherController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type weatherControllerImpl struct {
	loader *archive.Loader
	// opts drives the day and month views, rangeOpts the custom range view.
	opts      aggregation.Options
	rangeOpts aggregation.Options
}

func NewWeatherController(loader *archive.Loader, opts, rangeOpts aggregation.Options) WeatherController {
	return &weatherControllerImpl{
		loader:    loader,
		opts:      opts,
		rangeOpts: rangeOpts,
	}
}

func (c *weatherControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET /api/v1/months", c.handleMonths)
	mux.HandleFunc("GET /api/v1/days/{date}", c.handleDay)
	mux.HandleFunc("GET /api/v1/months/{month}", c.handleMonth)
	mux.HandleFunc("GET /api/v1/range", c.handleRange)
	mux.HandleFunc("GET /days/{date}", c.handleDayPartial)
	mux.HandleFunc("GET /months/{month}", c.handleMonthPartial)
}
