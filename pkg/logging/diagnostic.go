// Copyright (c) 2026, Aepok Corporation.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/defaults"
)

const diagnosticFileMode = 0o640

// DiagnosticLog is the append-only record of a run: every command, attempt,
// and outcome. It is safe for concurrent use through its logger.
type DiagnosticLog struct {
	logger *slog.Logger
	files  []*os.File
}

// OpenDiagnosticLog opens install_log.txt and error_log.txt in dir for
// appending. When console is non-nil, records are also forwarded to it.
func OpenDiagnosticLog(dir string, console slog.Handler) (*DiagnosticLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	install, err := openAppend(filepath.Join(dir, defaults.InstallLogFile))
	if err != nil {
		return nil, err
	}
	errs, err := openAppend(filepath.Join(dir, defaults.ErrorLogFile))
	if err != nil {
		_ = install.Close()
		return nil, err
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(install, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(errs, &slog.HandlerOptions{Level: slog.LevelError}),
	}
	if console != nil {
		handlers = append(handlers, console)
	}

	return &DiagnosticLog{
		logger: slog.New(&multiHandler{handlers: handlers}),
		files:  []*os.File{install, errs},
	}, nil
}

// Discard returns a diagnostic log that drops every record.
func Discard() *DiagnosticLog {
	return &DiagnosticLog{logger: slog.New(&multiHandler{})}
}

// Logger returns the fan-out logger.
func (d *DiagnosticLog) Logger() *slog.Logger {
	return d.logger
}

// Close flushes and closes the underlying files.
func (d *DiagnosticLog) Close() error {
	var errs []error
	for _, f := range d.files {
		if err := f.Sync(); err != nil {
			errs = append(errs, err)
		}
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	d.files = nil
	return errors.Join(errs...)
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, diagnosticFileMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open diagnostic log %s: %w", path, err)
	}
	return f, nil
}

// multiHandler fans out records to every handler enabled for their level.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
