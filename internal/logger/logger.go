package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger defaults to a no-op so packages can log before Init runs,
// which also keeps unit tests quiet.
var zapLogger = zap.NewNop()

func Init() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	l, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	zapLogger = l
}

func Info(msg string) {
	zapLogger.Info(msg)
}

func Infof(format string, v ...interface{}) {
	zapLogger.Info(fmt.Sprintf(format, v...))
}

func Warn(msg string) {
	zapLogger.Warn(msg)
}

func Warnf(format string, v ...interface{}) {
	zapLogger.Warn(fmt.Sprintf(format, v...))
}

func Error(msg string) {
	zapLogger.Error(msg)
}

func Errorf(format string, v ...interface{}) {
	zapLogger.Error(fmt.Sprintf(format, v...))
}

func Debug(msg string) {
	zapLogger.Debug(msg)
}

func Debugf(format string, v ...interface{}) {
	zapLogger.Debug(fmt.Sprintf(format, v...))
}

func Fatal(msg string) {
	zapLogger.Fatal(msg)
}

func Fatalf(format string, v ...interface{}) {
	zapLogger.Fatal(fmt.Sprintf(format, v...))
}

func Sync() {
	_ = zapLogger.Sync()
}
