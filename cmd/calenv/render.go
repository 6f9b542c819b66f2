package main

import (
	"context"

	"github.com/formicidae-tracker/calenv/internal/calenv"
	"github.com/formicidae-tracker/calenv/internal/display"
	"github.com/formicidae-tracker/calenv/internal/publish"
	"github.com/jessevdk/go-flags"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

type RenderCommand struct {
	Colour display.Colour `short:"c" long:"colour" description:"ePaper display colour" choice:"auto" choice:"red" choice:"black" choice:"yellow" default:"auto"`
	Output flags.Filename `short:"o" long:"output" description:"writes a PNG preview to this file instead of refreshing the display"`
}

func (c *RenderCommand) openSink() (display.Sink, error) {
	if len(c.Output) > 0 {
		config := display.NewDisplayConfig(c.Colour, display.DefaultWidth, display.DefaultHeight)
		return display.NewPNGFile(string(c.Output), config), nil
	}
	return display.OpenInky(c.Colour)
}

func (c *RenderCommand) openPublisher(config *Config) publish.Publisher {
	if config.MQTT.Enabled() == false {
		return nil
	}
	p, err := publish.NewMQTTPublisher(config.MQTT)
	if err != nil {
		calenv.NewLogger("publish").WithError(err).Warn("publication disabled")
		return nil
	}
	return p
}

func (c *RenderCommand) Execute(args []string) (err error) {
	ctx, span := otel.Tracer(instrumentationName).Start(context.Background(),
		"calenv/Render")
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

	sink, err := c.openSink()
	if err != nil {
		return err
	}
	defer sink.Close()

	pipeline.publisher = c.openPublisher(config)
	if pipeline.publisher != nil {
		defer pipeline.publisher.Close()
	}

	return pipeline.Render(ctx, sink)
}

func init() {
	_, err := parser.AddCommand("render",
		"renders the dashboard",
		"gathers all sources and shows the dashboard on the e-paper display",
		&RenderCommand{})
	if err != nil {
		panic(err.Error())
	}
}
