package observers

import "github.com/sirupsen/logrus"

// NewDefaultLoggingObserver creates a logging observer on the standard logrus logger
func NewDefaultLoggingObserver() *LoggingObserver {
	return NewLoggingObserver(logrus.StandardLogger(), LogInfo, "intersection")
}
