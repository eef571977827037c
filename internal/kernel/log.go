package kernel

import "github.com/sirupsen/logrus"

// NewLogger returns a logrus logger preconfigured the way the rest of
// this module expects: text formatting with full timestamps, narrating
// kernel lifecycle events in a structured form.
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return log
}
