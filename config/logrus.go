package config

import (
	"context"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/machinecraft/inventory_backend/utils"
)

var (
	logg *logrus.Logger
)

func GetLogger() *logrus.Logger {
	return logg
}

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetLevel(logLevelFromEnv())
	logg.SetOutput(os.Stdout)
}

// The pipeline log is the operator's main surface, so default to Info.
// Override with LOG_LEVEL=debug|info|warn|error.
func logLevelFromEnv() logrus.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func LogError(logger *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	if data != nil {
		logger.WithFields(logrus.Fields{
			"module":   moduleName,
			"funcName": funcName,
			"context":  context,
			"data":     data,
		}).Error(err.Error())
	} else {
		logger.WithFields(logrus.Fields{
			"module":   moduleName,
			"funcName": funcName,
			"context":  context,
		}).Error(err.Error())
	}
}

// LogRequestError logs a request-scoped failure and tags it with the
// correlation id carried by the request context, so every log line of one
// request can be tied together.
func LogRequestError(ctx context.Context, moduleName string, funcName string, contextMsg string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  contextMsg,
	}
	if data != nil {
		fields["data"] = data
	}
	if cid, ok := utils.GetCorrelationIdFromContext(ctx); ok && cid != "" {
		fields["correlationId"] = cid
	}
	logg.WithFields(fields).Error(err.Error())
}
