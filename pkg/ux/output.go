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
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorSuccess = lipgloss.Color("#76B900")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#6C7A89")
)

var styles = struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true),
	Success: lipgloss.NewStyle().Foreground(colorSuccess),
	Warning: lipgloss.NewStyle().Foreground(colorWarning),
	Error:   lipgloss.NewStyle().Foreground(colorError),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
}

// Icon marks the outcome on a status line.
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconSkipped Icon = "○"
	IconRunning Icon = "→"
	IconBullet  Icon = "-"
)

// Printer writes status lines.
type Printer struct {
	out    io.Writer
	styled bool
}

// NewPrinter returns a printer for out. Styling is enabled when out is a terminal.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, styled: IsTerminal(out)}
}

// Stdout returns a printer for standard output.
func Stdout() *Printer {
	return NewPrinter(os.Stdout)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Styled reports whether output is styled.
func (p *Printer) Styled() bool {
	return p.styled
}

func (p *Printer) line(icon Icon, style lipgloss.Style, text string) {
	if p.styled {
		fmt.Fprintf(p.out, "%s %s\n", style.Render(string(icon)), text)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", icon, text)
}

// Title prints a section heading.
func (p *Printer) Title(text string) {
	if p.styled {
		text = styles.Title.Render(text)
	}
	fmt.Fprintln(p.out, text)
}

// Running announces a step that is starting.
func (p *Printer) Running(text string) {
	p.line(IconRunning, styles.Title, text)
}

// Success prints a success line.
func (p *Printer) Success(text string) {
	p.line(IconSuccess, styles.Success, text)
}

// Warning prints a warning line.
func (p *Printer) Warning(text string) {
	p.line(IconWarning, styles.Warning, text)
}

// Error prints a failure line.
func (p *Printer) Error(text string) {
	p.line(IconError, styles.Error, text)
}

// Skipped prints a line for work that was not executed.
func (p *Printer) Skipped(text string) {
	p.line(IconSkipped, styles.Muted, text)
}

// Bullet prints an indented list item.
func (p *Printer) Bullet(text string) {
	fmt.Fprintf(p.out, "  %s %s\n", IconBullet, text)
}
