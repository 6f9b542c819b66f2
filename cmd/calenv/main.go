package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
)

const instrumentationName = "github.com/formicidae-tracker/calenv/cmd/calenv"

type Options struct {
	Config  flags.Filename `long:"config" description:"configuration file (default: $XDG_CONFIG_HOME/calenv/config.yml)"`
	Verbose func()         `short:"v" long:"verbose" description:"enables debug output"`
}

var opts = &Options{
	Verbose: func() {
		logrus.SetLevel(logrus.DebugLevel)
	},
}

var parser = flags.NewParser(opts, flags.Default)

func Execute() error {
	if _, err := parser.Parse(); err != nil {
		return err
	}
	return nil
}

func main() {
	shutdown := setUpTelemetry()
	err := Execute()
	shutdown()
	if err == nil {
		return
	}
	if ferr, ok := err.(*flags.Error); ok == true {
		if ferr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "[calenv] Unhandled error: %s\n", err)
	os.Exit(1)
}
