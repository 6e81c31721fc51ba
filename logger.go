package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// newLogger returns a text logger on w tagged with a fresh run id.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("%w: log level %q", ErrInvalidParams, level)
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler).With("run_id", uuid.NewString()), nil
}
