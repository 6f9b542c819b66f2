package main

import (
	"fmt"
	"os"

	"github.com/formicidae-tracker/calenv/internal/calenv"
)

type VersionCommand struct {
}

func (c *VersionCommand) Execute(args []string) error {
	fmt.Fprintf(os.Stdout, "calenv version %s\n", calenv.CALENV_VERSION)
	return nil
}

func init() {
	_, err := parser.AddCommand("version",
		"print version",
		"prints version on stdout",
		&VersionCommand{})
	if err != nil {
		panic(err.Error())
	}
}
