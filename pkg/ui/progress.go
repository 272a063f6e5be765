package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	barWidth      = 30
)

// Progress is a single-line progress bar redrawn with a carriage return
type Progress struct {
	mu      sync.Mutex
	label   string
	total   int
	current int
	start   time.Time
	out     io.Writer
	done    bool
}

// NewProgress creates a bar writing to the terminal output
func NewProgress(label string, total int) *Progress {
	return &Progress{
		label: label,
		total: total,
		start: time.Now(),
		out:   writer(false),
	}
}

// Set moves the bar to n, capped at the total
func (p *Progress) Set(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = clamp(n, p.total)
	p.render()
}

// Add advances the bar by n
func (p *Progress) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = clamp(p.current+n, p.total)
	p.render()
}

// Current returns the bar position
func (p *Progress) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Done finishes the line. Further calls are no-ops.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return
	}
	p.done = true
	p.render()
	fmt.Fprintln(p.out)
}

// String renders the bar without color
func (p *Progress) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.line()
}

func (p *Progress) line() string {
	filled := 0
	if p.total > 0 {
		filled = p.current * barWidth / p.total
	}
	bar := strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, barWidth-filled)
	return fmt.Sprintf("[%s] %d/%d %s", bar, p.current, p.total, p.label)
}

func (p *Progress) render() {
	elapsed := time.Since(p.start).Round(time.Second)
	fmt.Fprintf(p.out, "\r%s %s", Green(p.line()), Dim(elapsed.String()))
}

func clamp(n, total int) int {
	if n < 0 {
		return 0
	}
	if total > 0 && n > total {
		return total
	}
	return n
}
