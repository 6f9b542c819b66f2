package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/formicidae-tracker/calenv/internal/layout"
	"github.com/formicidae-tracker/calenv/internal/publish"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

type DumpCommand struct {
	JSON bool `long:"json" description:"prints the record published on MQTT instead of a table"`
}

func writeTable(w io.Writer, d *Dashboard, labels layout.Labels) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "Time\t%s\n", layout.HeaderLine(d.Data.Now))
	fmt.Fprintf(tw, "Events\t%s\n", layout.EventsLine(labels, d.Data.Events))
	fmt.Fprintf(tw, "Moon\t%s\n", layout.MoonAgeLine(labels, d.Data.Events.MoonAge))
	for _, z := range d.Data.Zones {
		alert := ""
		if z.Alert == true {
			alert = "  CO2 ALERT"
		}
		fmt.Fprintf(tw, "Zone %s\t%s%s\n", z.Zone.Name, layout.ZoneText(z), alert)
	}
	fmt.Fprintf(tw, "Observation\t%s\n", layout.ObservationLine(labels, d.Data.Observation))
	fmt.Fprintf(tw, "Today\t%s\n", layout.ForecastLine(labels.Today, d.Data.Forecast.Today))
	fmt.Fprintf(tw, "Tomorrow\t%s\n", layout.ForecastLine(labels.Tomorrow, d.Data.Forecast.Tomorrow))
	return tw.Flush()
}

func (c *DumpCommand) Execute(args []string) (err error) {
	ctx, span := otel.Tracer(instrumentationName).Start(context.Background(),
		"calenv/Dump")
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, "calenv error")
			span.RecordError(err)
		}
		span.End()
	}()

	config, err := OpenConfigFromArg(opts.Config)
	if err != nil {
		return err
	}
	pipeline, err := NewPipeline(config)
	if err != nil {
		return err
	}
	d, err := pipeline.Gather(ctx)
	if err != nil {
		return err
	}

	if c.JSON == false {
		return writeTable(os.Stdout, d, config.Labels)
	}
	payload, err := publish.FormatPayload(d.Data, d.Alerts)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(payload))
	return err
}

func init() {
	_, err := parser.AddCommand("dump",
		"prints the dashboard values",
		"gathers all sources and prints the values without using the display",
		&DumpCommand{})
	if err != nil {
		panic(err.Error())
	}
}
