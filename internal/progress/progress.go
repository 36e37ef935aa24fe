// Package progress shows activity on the terminal while the CLI waits on
// Kibana.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mlops-tools/dfa-wizard/internal/constants"
)

// Reporter is started before a blocking call and stopped after it.
type Reporter interface {
	Start(description string)
	Stop()
}

// CLIProgress draws a spinner with the elapsed time. It is only meant for
// interactive terminals; use NoOpProgress otherwise.
type CLIProgress struct {
	w        io.Writer
	interval time.Duration

	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	done chan struct{}
	wg   sync.WaitGroup
}

// NewCLIProgress creates a spinner writing to w.
func NewCLIProgress(w io.Writer) *CLIProgress {
	return &CLIProgress{w: w, interval: constants.SpinnerRefreshRate}
}

// Start shows the spinner. Starting a running spinner only changes its
// description.
func (p *CLIProgress) Start(description string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		p.bar.Describe(description)
		return
	}

	p.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(p.interval),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
	p.done = make(chan struct{})

	bar, done := p.bar, p.done
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()
}

// Stop removes the spinner. It is safe to call when not started.
func (p *CLIProgress) Stop() {
	p.mu.Lock()
	bar, done := p.bar, p.done
	p.bar, p.done = nil, nil
	p.mu.Unlock()

	if bar == nil {
		return
	}
	close(done)
	p.wg.Wait()
	if err := bar.Finish(); err != nil {
		fmt.Fprintln(p.w)
	}
}

// NoOpProgress is a reporter that does nothing (for pipes and --verbose).
type NoOpProgress struct{}

// NewNoOpProgress creates a new no-op progress reporter.
func NewNoOpProgress() *NoOpProgress {
	return &NoOpProgress{}
}

// Start does nothing.
func (NoOpProgress) Start(string) {}

// Stop does nothing.
func (NoOpProgress) Stop() {}

// Run shows description on r while fn runs.
func Run(r Reporter, description string, fn func()) {
	r.Start(description)
	defer r.Stop()
	fn()
}
