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

package ux

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const maxProgressWidth = 72

// Progress is a single, redrawn line describing a running command.
// Updates arriving faster than the refresh interval are dropped, so a
// chatty package manager cannot flood the terminal. On a non-terminal
// writer Progress prints nothing.
type Progress struct {
	mu      sync.Mutex
	out     io.Writer
	label   string
	frame   int
	limiter *rate.Limiter
	active  bool
	drawn   bool
}

// NewProgress starts a progress line for label. interval is the minimum
// time between redraws.
func (p *Printer) NewProgress(label string, interval time.Duration) *Progress {
	return &Progress{
		out:     p.out,
		label:   label,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		active:  p.styled,
	}
}

// Update redraws the line with the latest output line, subject to throttling.
func (pr *Progress) Update(detail string) {
	if pr == nil || !pr.active || !pr.limiter.Allow() {
		return
	}
	pr.mu.Lock()
	defer pr.mu.Unlock()

	frame := spinnerFrames[pr.frame%len(spinnerFrames)]
	pr.frame++

	text := pr.label
	if detail = strings.TrimSpace(detail); detail != "" {
		text += ": " + detail
	}
	if r := []rune(text); len(r) > maxProgressWidth {
		text = string(r[:maxProgressWidth-1]) + "…"
	}
	fmt.Fprintf(pr.out, "\r\033[K%s %s", styles.Muted.Render(frame), text)
	pr.drawn = true
}

// Done clears the progress line.
func (pr *Progress) Done() {
	if pr == nil || !pr.active {
		return
	}
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if pr.drawn {
		fmt.Fprint(pr.out, "\r\033[K")
	}
	pr.active = false
}
