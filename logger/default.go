package logger

import "os"

var defLogger = NewSlog(InfoLevel, false, WithOutput(os.Stderr))

// GetLogger returns the package default logger.
func GetLogger() Logger {
	return defLogger
}

// SetLevel sets the level of the package default logger.
func SetLevel(level Level) {
	defLogger.SetLevel(level)
}

// With returns a child of the package default logger.
func With(keyValues ...any) Logger {
	return defLogger.With(keyValues...)
}

func Debug(msg string, keysAndValues ...any) {
	defLogger.Debug(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...any) {
	defLogger.Info(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...any) {
	defLogger.Warn(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...any) {
	defLogger.Error(msg, keysAndValues...)
}

func Fatal(msg string, keysAndValues ...any) {
	defLogger.Fatal(msg, keysAndValues...)
}
