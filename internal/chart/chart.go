// Package chart renders the cumulative commit timeline as a standalone
// HTML page using go-echarts.
package chart

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/gitpulse/gitpulse/internal/domain"
)

const seriesName = "Cumulative commits"

// Timeline builds the cumulative line chart for the given series. An
// empty series produces a titled empty chart rather than an error.
func Timeline(points []domain.ChartPoint, title string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "1100px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "Commit timeline",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Day"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Commits"}),
	)

	labels := make([]string, len(points))
	data := make([]opts.LineData, len(points))
	for i, p := range points {
		labels[i] = p.Day
		data[i] = opts.LineData{Value: p.CumulativeCount}
	}

	line.SetXAxis(labels)
	line.AddSeries(seriesName, data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
	)
	return line
}

// Render writes the chart page for the series to w. This is the export
// path: the written file opens directly in a browser.
func Render(w io.Writer, points []domain.ChartPoint, title string) error {
	return Timeline(points, title).Render(w)
}
