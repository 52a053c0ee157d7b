package controller

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mateometeo/internal/httpapi"
	"mateometeo/internal/modules/weather/aggregation"
	"mateometeo/internal/modules/weather/archive"
	"mateometeo/internal/modules/weather/types"
	"mateometeo/internal/modules/weather/views"
)

type monthsResponse struct {
	Source       string              `json:"source"`
	Months       []string            `json:"months"`
	From         *string             `json:"from"`
	To           *string             `json:"to"`
	Availability string              `json:"availability"`
	Cache        *archive.CacheStats `json:"cache,omitempty"`
}

type dayResponse struct {
	Date string `json:"date"`
	*aggregation.Result
}

type monthResponse struct {
	Month string `json:"month"`
	*aggregation.Result
}

type rangeResponse struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	RangeDays float64 `json:"rangeDays"`
	*aggregation.Result
}

func (c *weatherControllerImpl) handleMonths(w http.ResponseWriter, r *http.Request) {
	months, err := c.loader.Months(r.Context())
	if err != nil {
		c.writeLoadError(w, r, err)
		return
	}

	resp := monthsResponse{
		Source:       c.loader.Source().Name(),
		Months:       make([]string, 0, len(months)),
		Availability: archive.AvailabilitySummary(months),
	}
	for _, m := range months {
		resp.Months = append(resp.Months, m.String())
	}
	if from, to, ok := archive.AvailableRange(months); ok {
		f, t := from.Format(time.DateOnly), to.Format(time.DateOnly)
		resp.From, resp.To = &f, &t
	}
	if cache, ok := c.loader.Source().(*archive.Cache); ok {
		stats := cache.Stats()
		resp.Cache = &stats
	}
	httpapi.WriteJSON(w, http.StatusOK, resp)
}

func (c *weatherControllerImpl) handleDay(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	res, err := c.aggregateDay(r.Context(), date)
	if err != nil {
		c.writeLoadError(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, dayResponse{Date: date, Result: res})
}

func (c *weatherControllerImpl) handleMonth(w http.ResponseWriter, r *http.Request) {
	month, res, err := c.aggregateMonth(r.Context(), r.PathValue("month"))
	if err != nil {
		c.writeLoadError(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, monthResponse{Month: month.String(), Result: res})
}

func (c *weatherControllerImpl) handleRange(w http.ResponseWriter, r *http.Request) {
	rq, err := parseRangeQuery(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	samples, err := c.loader.LoadRange(r.Context(), rq.From, rq.To)
	if err != nil {
		c.writeLoadError(w, r, err)
		return
	}

	opts := c.rangeOpts
	if rq.WindMin != nil {
		opts.MinWindSpeed = *rq.WindMin
	}
	rangeDays := aggregation.InclusiveDays(rq.From, rq.To)

	var res *aggregation.Result
	if rq.Granularity != "" {
		res, err = aggregation.Aggregate(samples, rq.Granularity, rq.Vars, opts)
	} else {
		res, err = aggregation.AggregateCustomRange(samples, rq.Vars, rangeDays, opts)
	}
	if err != nil {
		c.writeLoadError(w, r, err)
		return
	}

	slog.Debug("range aggregated",
		"from", rq.From.Format(time.DateOnly),
		"to", rq.To.Format(time.DateOnly),
		"samples", len(samples),
		"granularity", res.Granularity,
		"periods", len(res.Periods),
	)
	httpapi.WriteJSON(w, http.StatusOK, rangeResponse{
		From:      rq.From.Format(time.DateOnly),
		To:        rq.To.Format(time.DateOnly),
		RangeDays: rangeDays,
		Result:    res,
	})
}

func (c *weatherControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	months, err := c.loader.Months(r.Context())
	if err != nil {
		c.writeLoadError(w, r, err)
		return
	}

	data := &views.IndexData{Availability: archive.AvailabilitySummary(months)}
	if from, to, ok := archive.AvailableRange(months); ok {
		data.From, data.To = from.Format(time.DateOnly), to.Format(time.DateOnly)
	}
	for _, m := range months {
		data.Months = append(data.Months, views.MonthLink{
			Month: m.String(),
			Label: m.FirstDay().Format("January 2006"),
		})
	}

	var buf bytes.Buffer
	if err := views.RenderIndex(&buf, data); err != nil {
		slog.Error("index template render failed", "error", err)
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	httpapi.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *weatherControllerImpl) handleDayPartial(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	res, err := c.aggregateDay(r.Context(), date)
	if err != nil {
		c.writeLoadError(w, r, err)
		return
	}
	title := date
	if d, err := time.Parse(time.DateOnly, date); err == nil {
		title = d.Format("Monday, 2 January 2006")
	}
	c.renderTable(w, views.NewTableData(title, res))
}

func (c *weatherControllerImpl) handleMonthPartial(w http.ResponseWriter, r *http.Request) {
	month, res, err := c.aggregateMonth(r.Context(), r.PathValue("month"))
	if err != nil {
		c.writeLoadError(w, r, err)
		return
	}
	c.renderTable(w, views.NewTableData(month.FirstDay().Format("January 2006"), res))
}

func (c *weatherControllerImpl) renderTable(w http.ResponseWriter, data *views.TableData) {
	var buf bytes.Buffer
	if err := views.RenderTablePartial(&buf, data); err != nil {
		slog.Error("table partial render failed", "error", err)
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	httpapi.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *weatherControllerImpl) aggregateDay(ctx context.Context, date string) (*aggregation.Result, error) {
	day, err := parseDate(date, "date")
	if err != nil {
		return nil, badRequest(err)
	}
	samples, err := c.loader.LoadRange(ctx, day, day)
	if err != nil {
		return nil, err
	}
	return aggregation.AggregateDay(samples, date, c.opts)
}

func (c *weatherControllerImpl) aggregateMonth(ctx context.Context, s string) (archive.Month, *aggregation.Result, error) {
	month, err := archive.ParseMonth(s)
	if err != nil {
		return archive.Month{}, nil, badRequest(errors.New("invalid 'month' (expected YYYY-MM)"))
	}
	samples, err := c.loader.LoadRange(ctx, month.FirstDay(), month.LastDay())
	if err != nil {
		return archive.Month{}, nil, err
	}
	res, err := aggregation.AggregateMonth(samples, month.String(), c.opts)
	return month, res, err
}

type badRequestError struct{ err error }

func (e badRequestError) Error() string { return e.err.Error() }
func (e badRequestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return badRequestError{err: err}
}

// writeLoadError maps loader and aggregation errors to HTTP statuses.
func (c *weatherControllerImpl) writeLoadError(w http.ResponseWriter, r *http.Request, err error) {
	var bre badRequestError
	switch {
	case errors.As(err, &bre),
		errors.Is(err, aggregation.ErrInvalidPeriod),
		errors.Is(err, aggregation.ErrUnsupportedGranularity),
		errors.Is(err, types.ErrUnknownVariable):
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, archive.ErrMonthNotFound):
		slog.Warn("archive month missing", "path", r.URL.Path, "error", err)
		httpapi.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.Canceled):
		slog.Debug("request canceled", "path", r.URL.Path)
	default:
		slog.Error("weather request failed",
			"path", r.URL.Path,
			"error", err,
			"request_id", httpapi.RequestID(r.Context()),
		)
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to load weather data")
	}
}
