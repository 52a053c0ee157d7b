package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mateometeo/internal/modules/weather/aggregation"
	"mateometeo/internal/modules/weather/types"
)

// maxRangeDays caps custom ranges so a single request cannot pull the whole
// archive through hourly buckets.
const maxRangeDays = 3660

type rangeQuery struct {
	From        time.Time
	To          time.Time
	Vars        []types.Variable
	Granularity aggregation.Granularity
	WindMin     *float64
}

func parseDate(s, name string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid '%s' (expected YYYY-MM-DD)", name)
	}
	return d, nil
}

func parseRangeQuery(r *http.Request) (rangeQuery, error) {
	q := r.URL.Query()
	var rq rangeQuery

	if q.Get("from") == "" || q.Get("to") == "" {
		return rangeQuery{}, errors.New("'from' and 'to' are required")
	}
	var err error
	if rq.From, err = parseDate(q.Get("from"), "from"); err != nil {
		return rangeQuery{}, err
	}
	if rq.To, err = parseDate(q.Get("to"), "to"); err != nil {
		return rangeQuery{}, err
	}
	if rq.To.Before(rq.From) {
		return rangeQuery{}, errors.New("'from' must be <= 'to'")
	}
	if aggregation.InclusiveDays(rq.From, rq.To) > maxRangeDays {
		return rangeQuery{}, fmt.Errorf("range too long (max %d days)", maxRangeDays)
	}

	if s := q.Get("vars"); s != "" {
		rq.Vars, err = types.ParseVariables(s)
		if err != nil {
			return rangeQuery{}, fmt.Errorf("invalid 'vars': %v", err)
		}
	}

	if s := q.Get("granularity"); s != "" {
		g := aggregation.Granularity(strings.ToLower(strings.TrimSpace(s)))
		if _, err := aggregation.NewBucketer(g, 0); err != nil {
			return rangeQuery{}, errors.New("invalid 'granularity' (allowed: hourly, daily, weekly)")
		}
		rq.Granularity = g
	}

	if s := q.Get("windMin"); s != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || v < 0 {
			return rangeQuery{}, errors.New("invalid 'windMin' (must be a number >= 0)")
		}
		rq.WindMin = &v
	}
	return rq, nil
}
