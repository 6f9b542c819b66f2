package calenv

import "github.com/sirupsen/logrus"

// NewLogger returns the logger of a component, identified by its
// domain field.
func NewLogger(domain string) *logrus.Entry {
	return logrus.StandardLogger().WithField("domain", domain)
}
