// Package charts renders deck analysis charts as standalone HTML files.
package charts

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/wsloan/spellforge/internal/cards"
	"github.com/wsloan/spellforge/internal/deck"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title    string // Chart title
	Subtitle string // Chart subtitle
	Width    string // Chart width (e.g., "900px")
	Height   string // Chart height (e.g., "500px")
	Theme    string // Chart theme
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:  "900px",
		Height: "500px",
		Theme:  "light",
	}
}

// DataPoint represents a single data point in a chart.
type DataPoint struct {
	Label string
	Value float64
}

// RenderCostCurve writes the spellbook's cost distribution as an
// interactive bar chart HTML file.
func RenderCostCurve(book *deck.Spellbook, config ChartConfig, outputPath string) error {
	maxCost := 0
	counts := make(map[int]int)
	for _, c := range book.Spells {
		counts[c.Cost]++
		if c.Cost > maxCost {
			maxCost = c.Cost
		}
	}

	data := make([]DataPoint, 0, maxCost+1)
	for cost := 0; cost <= maxCost; cost++ {
		data = append(data, DataPoint{Label: fmt.Sprintf("%d", cost), Value: float64(counts[cost])})
	}
	if config.Title == "" {
		config.Title = "Spellbook Cost Curve"
	}
	return renderBar(data, "Cards", config, outputPath)
}

// RenderElementDistribution writes the spellbook's element counts as a
// bar chart HTML file, sites and avatar included.
func RenderElementDistribution(book *deck.Spellbook, config ChartConfig, outputPath string) error {
	counts := make(map[cards.Element]int)
	all := make([]*cards.Card, 0, len(book.Spells)+len(book.Sites)+1)
	if book.Avatar != nil {
		all = append(all, book.Avatar)
	}
	all = append(all, book.Sites...)
	all = append(all, book.Spells...)
	for _, c := range all {
		for _, e := range c.Elements {
			counts[e]++
		}
	}

	data := make([]DataPoint, 0, len(cards.Elements))
	for _, e := range cards.Elements {
		data = append(data, DataPoint{Label: string(e), Value: float64(counts[e])})
	}
	if config.Title == "" {
		config.Title = "Element Distribution"
	}
	return renderBar(data, "Cards", config, outputPath)
}

// renderBar creates an interactive bar chart HTML file.
func renderBar(data []DataPoint, seriesName string, config ChartConfig, outputPath string) error {
	bar := charts.NewBar()

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
	)

	xLabels := make([]string, len(data))
	for i, point := range data {
		xLabels[i] = point.Label
	}
	yData := make([]opts.BarData, len(data))
	for i, point := range data {
		yData[i] = opts.BarData{Value: point.Value}
	}

	bar.SetXAxis(xLabels).
		AddSeries(seriesName, yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return nil
}
