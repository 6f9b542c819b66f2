package calenv_test

import (
	"errors"

	"github.com/formicidae-tracker/calenv/internal/calenv"
	. "gopkg.in/check.v1"
)

type ResultSuite struct{}

var _ = Suite(&ResultSuite{})

func (s *ResultSuite) TestResolve(c *C) {
	v, ok := calenv.Ok("foo").Resolve("bar")
	c.Check(v, Equals, "foo")
	c.Check(ok, Equals, true)

	failed := calenv.Fail[string](errors.New("oops"))
	c.Check(failed.Failed(), Equals, true)
	v, ok = failed.Resolve("bar")
	c.Check(v, Equals, "bar")
	c.Check(ok, Equals, false)
}

func (s *ResultSuite) TestErrorsAreWrapped(c *C) {
	cause := errors.New("connection refused")
	err := calenv.SourceUnavailable("netatmo", cause)
	c.Check(errors.Is(err, calenv.ErrSourceUnavailable), Equals, true)
	c.Check(errors.Is(err, cause), Equals, true)
	c.Check(err, ErrorMatches, "netatmo: source unavailable: connection refused")

	err = calenv.MalformedSource("forecast", "missing node %s", "today/max")
	c.Check(errors.Is(err, calenv.ErrMalformedSource), Equals, true)
	c.Check(err, ErrorMatches, "forecast: malformed source: missing node today/max")

	err = calenv.ComputationFault("no moonrise after %d days", 3)
	c.Check(errors.Is(err, calenv.ErrComputationFault), Equals, true)
}
