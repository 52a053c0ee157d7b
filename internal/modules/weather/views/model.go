package views

import (
	"strconv"

	"mateometeo/internal/modules/weather/aggregation"
	"mateometeo/internal/modules/weather/types"
)

// MonthLink is one entry of the month list on the landing page.
type MonthLink struct {
	Month string
	Label string
}

type IndexData struct {
	Availability string
	From, To     string
	Months       []MonthLink
}

// Row is one table line. Summary rows reuse it with Label "Total".
type Row struct {
	Label     string
	Samples   int
	Temp      *float64
	TempMin   *float64
	TempMax   *float64
	Humidity  *float64
	Pressure  *float64
	WindSpeed *float64
	WindGust  *float64
	WindDir   *float64
	Rain      *float64
	SolarRad  *float64
	UV        *float64
}

type RoseSector struct {
	Point   string
	Percent float64
}

// TableData is the view model for the day and month table partial.
type TableData struct {
	Title        string
	PeriodHeader string
	Empty        bool
	Rows         []Row
	Summary      Row

	RainTotal     *float64
	WettestLabel  string
	WettestAmount *float64
	RainyDays     int

	WindRose []RoseSector
}

// NewTableData flattens an aggregation result for the table template.
func NewTableData(title string, res *aggregation.Result) *TableData {
	data := &TableData{
		Title:        title,
		PeriodHeader: "Day",
		Empty:        res.Empty(),
		RainTotal:    res.Summary.Rain.Total,
		RainyDays:    res.Summary.Rain.RainyDays,
	}
	if res.Granularity == aggregation.Hourly {
		data.PeriodHeader = "Hour"
	}

	for _, p := range res.Periods {
		row := newRow(p.Label, p.Samples, p.Values, p.WindDirMode)
		rain := p.Rain()
		row.Rain = &rain
		data.Rows = append(data.Rows, row)

		if t := res.Summary.Rain.MaxPeriodTime; t != nil && *t == p.Start {
			data.WettestLabel = p.Label
			data.WettestAmount = res.Summary.Rain.MaxPeriod
		}
	}

	data.Summary = newRow("Total", res.Summary.Samples, res.Summary.Values, res.Summary.WindDirMode)
	data.Summary.Rain = res.Summary.Rain.Total

	points := aggregation.CompassPoints()
	for i, pct := range res.WindRose {
		data.WindRose = append(data.WindRose, RoseSector{Point: points[i], Percent: pct})
	}
	return data
}

func newRow(label string, samples int, values map[types.Variable]aggregation.Stat, dirMode *float64) Row {
	temp := values[types.VarTemperature]
	return Row{
		Label:     label,
		Samples:   samples,
		Temp:      temp.Avg,
		TempMin:   temp.Min,
		TempMax:   temp.Max,
		Humidity:  values[types.VarHumidity].Avg,
		Pressure:  values[types.VarPressure].Avg,
		WindSpeed: values[types.VarWindSpeed].Avg,
		WindGust:  values[types.VarWindGust].Max,
		WindDir:   dirMode,
		SolarRad:  values[types.VarSolarRadiation].Avg,
		UV:        values[types.VarUVIndex].Max,
	}
}

// formatTenth renders a value with one decimal, "-" when absent.
func formatTenth(v any) string {
	var f float64
	switch x := v.(type) {
	case *float64:
		if x == nil {
			return "-"
		}
		f = *x
	case float64:
		f = x
	default:
		return "-"
	}
	return strconv.FormatFloat(aggregation.RoundTenth(f), 'f', 1, 64)
}
