package logger

import "os"

type nopLogger struct{}

// NewNop returns a Logger that discards everything. Fatal still exits.
func NewNop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Fatal(string, ...any) { os.Exit(1) }

func (n nopLogger) With(...any) Logger { return n }
func (nopLogger) Level() Level         { return FatalLevel }
func (nopLogger) SetLevel(Level)       {}
