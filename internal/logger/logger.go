// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package logger provides the structured application log. User-facing
// command output does not go through here.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LevelEnv overrides the default log level when set.
const LevelEnv = "BLOCKFIX_LOG_LEVEL"

var (
	defaultLogger *slog.Logger
	level         = new(slog.LevelVar)
)

// getLogFilePath determines the path for the application log file based on XDG spec.
func getLogFilePath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not get user home directory: %w", err)
		}
		stateDir = filepath.Join(homeDir, ".local", "state")
	}

	return filepath.Join(stateDir, "blockfix", "app.log"), nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// SetLevel changes the level of the running logger.
func SetLevel(s string) error {
	l, err := ParseLevel(s)
	if err != nil {
		return err
	}
	level.Set(l)
	return nil
}

func openLogFile() (io.Writer, error) {
	logFilePath, err := getLogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logFilePath), 0750); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	// The handle stays open until the process exits.
	return os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
}

// InitLogger configures the default logger. The log file under
// $XDG_STATE_HOME is always attempted; stderr is added unless the caller
// owns the terminal (interactive mode).
func InitLogger(interactive bool) {
	var writers []io.Writer

	if file, err := openLogFile(); err != nil {
		fmt.Fprintf(os.Stderr, "File logging disabled: %v\n", err)
	} else {
		writers = append(writers, file)
	}
	if !interactive || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	level.Set(slog.LevelWarn)
	if env := os.Getenv(LevelEnv); env != "" {
		if err := SetLevel(env); err != nil {
			fmt.Fprintf(os.Stderr, "Ignoring %s: %v\n", LevelEnv, err)
		}
	}

	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level})
	defaultLogger = slog.New(handler)
}

// SetLogger replaces the default logger, mostly for tests.
func SetLogger(l *slog.Logger) {
	defaultLogger = l
}

func checkLogger() {
	if defaultLogger == nil {
		defaultLogger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	checkLogger()
	defaultLogger.Info(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	checkLogger()
	defaultLogger.Error(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	checkLogger()
	defaultLogger.Debug(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	checkLogger()
	defaultLogger.Warn(msg, args...)
}
