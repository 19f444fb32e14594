// Package logger wraps logrus with context-aware helpers.
package logger

import (
	"context"
	"fmt"
	"strings"

	"github.com/roguepikachu/roster/pkg/ctxutil"
	"github.com/sirupsen/logrus"
)

// InitLogging configures the global logrus logger from the given level and format.
// An unknown level falls back to debug; format "json" selects the JSON formatter.
func InitLogging(level, format string) {
	logrus.Info("....Configuring Logger....")
	if level == "" {
		level = "debug"
	}
	setLogLevel(level)
	if strings.ToLower(format) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func setLogLevel(level string) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		logrus.Infof("NO/Invalid LOG_LEVEL is provided, defaulting logging level to DEBUG, provided loggingLevel=[%s]", level)
		logrus.SetLevel(logrus.DebugLevel)
		return
	}
	logrus.SetLevel(lvl)
	logrus.Infof("Setting logging level to %s", level)
}

// Sprintf formats like fmt.Sprintf, returning "" for an empty format.
func Sprintf(format string, args ...any) string {
	if format == "" {
		return ""
	}
	return fmt.Sprintf(format, args...)
}

// With returns an entry carrying fields plus the request and client IDs found in ctx.
func With(ctx context.Context, fields map[string]any) *logrus.Entry {
	return base(ctx).WithFields(logrus.Fields(fields))
}

// WithField returns an entry carrying a single field plus the context IDs.
func WithField(ctx context.Context, key string, value any) *logrus.Entry {
	return base(ctx).WithField(key, value)
}

func base(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(logrus.StandardLogger())
	if rid := ctxutil.RequestID(ctx); rid != "" {
		entry = entry.WithField("request_id", rid)
	}
	if cid := ctxutil.ClientID(ctx); cid != "" {
		entry = entry.WithField("client_id", cid)
	}
	return entry
}

func Info(ctx context.Context, msg string, args ...any) {
	base(ctx).Info(Sprintf(msg, args...))
}

func Debug(ctx context.Context, msg string, args ...any) {
	base(ctx).Debug(Sprintf(msg, args...))
}

func Error(ctx context.Context, msg string, args ...any) {
	base(ctx).Error(Sprintf(msg, args...))
}

func Warn(ctx context.Context, msg string, args ...any) {
	base(ctx).Warn(Sprintf(msg, args...))
}

func Fatal(ctx context.Context, msg string, args ...any) {
	base(ctx).Fatal(Sprintf(msg, args...))
}
