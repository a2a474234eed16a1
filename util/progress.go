package util

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinner = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ProgressBar renders a single self-overwriting status line with a spinner,
// throttled to avoid flooding slow terminals. It has two modes: a free-form
// status text (used while waiting for the async search) and doc/byte
// counters with rates (used while fetching pages).
type ProgressBar struct {
	started     time.Time
	writer      io.Writer
	count       int
	total       int
	size        int64
	rendered    time.Time
	rendercount int64
	prevlen     int
	mu          sync.Mutex
}

func NewProgressBar(writer io.Writer) *ProgressBar {
	return &ProgressBar{
		started: time.Now(),
		writer:  writer,
	}
}

// SetTotal announces the expected doc count so renders can show a percent.
func (p *ProgressBar) SetTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
}

// Add records docs of the given cumulative byte size and re-renders the
// counter line.
func (p *ProgressBar) Add(docs int, size int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count += docs
	p.size += size
	if time.Since(p.rendered) > 65*time.Millisecond {
		p.render(false)
	}
}

// Status re-renders the line with free-form text instead of counters.
func (p *ProgressBar) Status(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if time.Since(p.rendered) > 65*time.Millisecond {
		spin := spinner[p.rendercount%int64(len(spinner))]
		now := time.Now().Format("2006/01/02 15:04:05")
		p.print(fmt.Sprintf("\r%s %s %s", now, spin, text))
		p.rendered = time.Now()
		p.rendercount++
	}
}

// Clear erases the status line so regular output can follow.
func (p *ProgressBar) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.prevlen == 0 {
		return
	}
	fmt.Fprint(p.writer, "\r", strings.Repeat(" ", p.prevlen), "\r")
	p.prevlen = 0
}

// Done renders the final counter line and moves to the next line.
func (p *ProgressBar) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.render(true)
}

func (p *ProgressBar) render(done bool) {
	spin := spinner[p.rendercount%int64(len(spinner))]
	count := p.count
	countPerSec := float64(p.count) / time.Since(p.started).Seconds()
	size := bytesToHuman(p.size)
	sizePerSec := bytesToHuman(int64(float64(p.size) / time.Since(p.started).Seconds()))
	now := time.Now().Format("2006/01/02 15:04:05")
	if done {
		p.print(fmt.Sprintf("\r%s complete: %d docs (%.1f docs/s), %s (%s/s)", now, count, countPerSec, size, sizePerSec))
		fmt.Fprintln(p.writer)
	} else {
		percent := ""
		if p.total > 0 {
			percent = fmt.Sprintf(" %.1f%%,", float64(count)/float64(p.total)*100)
		}
		p.print(fmt.Sprintf("\r%s %s fetching:%s %d docs (%.1f docs/s), %s (%s/s)", now, spin, percent, count, countPerSec, size, sizePerSec))
	}
	p.rendered = time.Now()
	p.rendercount++
}

func (p *ProgressBar) print(line string) {
	fmt.Fprint(p.writer, line)
	if p.prevlen > len(line) {
		fmt.Fprint(p.writer, strings.Repeat(" ", p.prevlen-len(line)))
	}
	p.prevlen = len(line)
}

func bytesToHuman(b int64) string {
	// From: https://yourbasic.org/golang/formatting-byte-size-to-human-readable-format/
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(b)/float64(div), "kMGTPE"[exp])
}
