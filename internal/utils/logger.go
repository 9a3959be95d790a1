package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// appNameHook tags every entry with the binary that wrote it: a message
// prefix for text output, an "app" field for JSON.
type appNameHook struct {
	appName string
	json    bool
}

// Levels implements logrus.Hook interface.
func (h *appNameHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook interface.
func (h *appNameHook) Fire(entry *logrus.Entry) error {
	if h.json {
		entry.Data["app"] = h.appName
		return nil
	}
	entry.Message = "[" + h.appName + "] " + entry.Message
	return nil
}

// InitLogger logs to stdout. See InitLoggerTo.
func InitLogger(appName string) {
	InitLoggerTo(appName, os.Stdout)
}

// InitLoggerTo configures Logger from LOG_LEVEL (default info) and
// LOG_FORMAT (text or json). rent-maint passes stderr so that reports on
// stdout stay parseable. Calling it again replaces the previous setup.
func InitLoggerTo(appName string, out io.Writer) {
	Logger.SetOutput(out)

	logLevelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		Logger.Warnf("Invalid LOG_LEVEL '%s', defaulting to INFO", logLevelStr)
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	asJSON := strings.EqualFold(os.Getenv("LOG_FORMAT"), "json")
	if asJSON {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	Logger.ReplaceHooks(make(logrus.LevelHooks))
	Logger.AddHook(&appNameHook{appName: appName, json: asJSON})
}
