// Package layout places the dashboard values on the panel with a fixed
// geometry.
package layout

import (
	"fmt"
	"image"
	"time"

	"github.com/formicidae-tracker/calenv/internal/calenv"
	"github.com/formicidae-tracker/calenv/internal/display"
)

// Panel geometry, in pixels.
const (
	PanelWidth  = 155
	PanelHeight = 80
	RightMargin = 2
	TopMargin   = 16

	FontSize     = 12
	BoldFontSize = FontSize + 4
	LineStride   = FontSize + 1

	barWidth  = 5
	barHeight = 11
	// first alert bar, then one per stride.
	barOffset = 17
)

// Labels are the fixed words of the panel.
type Labels struct {
	Sunrise     string `yaml:"sunrise"`
	Sunset      string `yaml:"sunset"`
	Moonrise    string `yaml:"moonrise"`
	MoonAge     string `yaml:"moon-age"`
	Observation string `yaml:"observation"`
	Today       string `yaml:"today"`
	Tomorrow    string `yaml:"tomorrow"`
}

func DefaultLabels() Labels {
	return Labels{
		Sunrise:     "日出",
		Sunset:      "日没",
		Moonrise:    "月出",
		MoonAge:     "月齢",
		Observation: "東京",
		Today:       "今日",
		Tomorrow:    "明日",
	}
}

// PanelOrigin is the top-left corner of the panel, anchored to the top
// right of the display.
func PanelOrigin(config display.DisplayConfig) image.Point {
	return image.Pt(config.Width-PanelWidth-RightMargin, TopMargin)
}

func HeaderLine(now time.Time) string {
	return now.Format("Jan 02 15:04")
}

func MoonAgeLine(labels Labels, age float64) string {
	return fmt.Sprintf("%s %4.1f", labels.MoonAge, age)
}

func EventsLine(labels Labels, events calenv.AstronomicalEvents) string {
	return fmt.Sprintf("%s %s %s %s %s %s",
		labels.Sunrise, events.Sunrise.Format("15:04"),
		labels.Sunset, events.Sunset.Format("15:04"),
		labels.Moonrise, events.Moonrise.Format("15:04"))
}

func ZoneText(z calenv.ZoneLine) string {
	return fmt.Sprintf("%s %s℃ %s%% %sppm", z.Zone.Label, z.Temperature, z.Humidity, z.CO2)
}

func ObservationLine(labels Labels, o calenv.ObservationSummary) string {
	return fmt.Sprintf("%s %s℃ %s%% (%s時)", labels.Observation, o.TemperatureC, o.HumidityPct, o.TimeLabel)
}

func ForecastLine(label string, d calenv.DayForecast) string {
	return fmt.Sprintf("%s %s %s℃ %s℃", label, d.Condition, d.MaxC, d.MinC)
}

// Formatter lays out DashboardData.
type Formatter struct {
	Labels Labels
}

func NewFormatter(labels Labels) Formatter {
	return Formatter{Labels: labels}
}

func alertBar(origin image.Point, i int) image.Rectangle {
	corner := origin.Add(image.Pt(0, barOffset+i*LineStride))
	return image.Rectangle{Min: corner, Max: corner.Add(image.Pt(barWidth, barHeight))}
}

// line returns the anchor of the i-th text line below the events line.
func line(origin image.Point, i int) image.Point {
	return origin.Add(image.Pt(5, 1+i*LineStride))
}

// Format returns the drawing of data on the panel at origin, in
// painting order. Values are drawn as they are, placeholders
// included.
func (f Formatter) Format(data calenv.DashboardData, origin image.Point, config display.DisplayConfig) []DrawCommand {
	barColor := func(alert bool) FilledRect {
		if alert == true {
			return FilledRect{Fill: config.Alert}
		}
		return FilledRect{Fill: config.Background}
	}
	text := func(at image.Point, value string) Text {
		return Text{At: at, Value: value, Font: Regular, Color: config.Foreground}
	}

	res := make([]DrawCommand, 0, 6+3*len(data.Zones)+3)

	res = append(res, FilledRect{
		Rect:    image.Rectangle{Min: origin, Max: origin.Add(image.Pt(PanelWidth, PanelHeight))},
		Fill:    config.Background,
		Outline: config.Background,
	})

	for i, z := range data.Zones {
		bar := barColor(z.Alert)
		bar.Rect = alertBar(origin, i)
		res = append(res, bar)
	}

	res = append(res,
		Text{
			At:    origin.Add(image.Pt(-10, -(BoldFontSize + 2))),
			Value: HeaderLine(data.Now),
			Font:  Bold,
			Color: config.Foreground,
		},
		text(origin.Add(image.Pt(100, -(FontSize+2))), MoonAgeLine(f.Labels, data.Events.MoonAge)),
		text(line(origin, 0), EventsLine(f.Labels, data.Events)),
	)

	for i, z := range data.Zones {
		res = append(res, text(line(origin, i+1), ZoneText(z)))
		// indicator is painted again over the line it annotates.
		bar := barColor(z.Alert)
		bar.Rect = image.Rectangle{
			Min: origin.Add(image.Pt(0, 4+(i+1)*LineStride)),
			Max: origin.Add(image.Pt(barWidth, barOffset+barHeight+i*LineStride)),
		}
		res = append(res, bar)
	}

	next := len(data.Zones) + 1
	res = append(res,
		text(line(origin, next), ObservationLine(f.Labels, data.Observation)),
		text(line(origin, next+1), ForecastLine(f.Labels.Today, data.Forecast.Today)),
		text(line(origin, next+2), ForecastLine(f.Labels.Tomorrow, data.Forecast.Tomorrow)),
	)

	return res
}

// Format lays out data with the default labels.
func Format(data calenv.DashboardData, origin image.Point, config display.DisplayConfig) []DrawCommand {
	return NewFormatter(DefaultLabels()).Format(data, origin, config)
}
