package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type FetchSuite struct {
	server *httptest.Server
	logger *logrus.Entry
	hook   *test.Hook
}

var _ = Suite(&FetchSuite{})

func (s *FetchSuite) SetUpSuite(c *C) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"success"}`))
	})
	mux.HandleFunc("/bad.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":`))
	})
	mux.HandleFunc("/latin1.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte("<html><body><p id=\"x\">  caf\xe9 </p></body></html>"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	s.server = httptest.NewServer(mux)
}

func (s *FetchSuite) TearDownSuite(c *C) {
	s.server.Close()
}

func (s *FetchSuite) SetUpTest(c *C) {
	var logger *logrus.Logger
	logger, s.hook = test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	s.logger = logger.WithField("domain", "test")
}

func (s *FetchSuite) TestGetJSON(c *C) {
	var res map[string]string
	err := GetJSON(context.Background(), NewHTTPClient(0), s.server.URL+"/ok.json", &res, s.logger)
	c.Assert(err, IsNil)
	c.Check(res["message"], Equals, "success")

	c.Assert(s.hook.Entries, HasLen, 1)
	c.Check(s.hook.LastEntry().Message, Equals, "fetched")
	c.Check(s.hook.LastEntry().Data["status"], Equals, 200)
	c.Check(s.hook.LastEntry().Data["size"], Equals, "21 B")
}

func (s *FetchSuite) TestGetJSONDecodeError(c *C) {
	var res map[string]string
	err := GetJSON(context.Background(), NewHTTPClient(0), s.server.URL+"/bad.json", &res, nil)
	var derr *DecodeError
	c.Check(errors.As(err, &derr), Equals, true)
}

func (s *FetchSuite) TestStatusError(c *C) {
	_, _, err := Get(context.Background(), NewHTTPClient(0), s.server.URL+"/missing", s.logger)
	var serr *StatusError
	c.Assert(errors.As(err, &serr), Equals, true)
	c.Check(serr.Code, Equals, http.StatusNotFound)
	c.Check(err, ErrorMatches, "GET .*/missing: unexpected status code: 404 Not Found")
}

func (s *FetchSuite) TestHTMLCharset(c *C) {
	doc, err := GetHTML(context.Background(), NewHTTPClient(0), s.server.URL+"/latin1.html", s.logger)
	c.Assert(err, IsNil)
	text, ok, err := Text(doc, `//p[@id="x"]`)
	c.Check(err, IsNil)
	c.Check(ok, Equals, true)
	c.Check(text, Equals, "café")

	_, ok, err = Text(doc, `//p[@id="y"]`)
	c.Check(err, IsNil)
	c.Check(ok, Equals, false)

	_, _, err = Text(doc, `//p[`)
	c.Check(err, Not(IsNil))
}

func (s *FetchSuite) TestIsBlank(c *C) {
	testdata := []struct {
		Cell     string
		Expected bool
	}{
		{"\u00a0", true},
		{"", true},
		{" \u00a0 ", true},
		{"21.3", false},
		{"\u00a021.3", false},
	}
	for _, d := range testdata {
		c.Check(IsBlank(d.Cell), Equals, d.Expected, Commentf("cell: %q", d.Cell))
	}
}
