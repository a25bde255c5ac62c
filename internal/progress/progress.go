// Package progress prints the progress of an audit on the console.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"bcl-go/internal/bcl"
)

// Printer implements bcl.ProgressObserver. It prints a dot every increment
// checks and, every increment*count checks, a step line with the timings of
// the step and the number of failures so far.
type Printer struct {
	mu        sync.Mutex
	out       io.Writer
	clock     bcl.Clock
	increment int
	max       int

	count  int // checks since the last step line
	errors int64
	start  time.Time
}

var _ bcl.ProgressObserver = (*Printer)(nil)

// NewPrinter creates a Printer. increment must be positive and count must be
// between 1 and 100.
func NewPrinter(out io.Writer, clock bcl.Clock, increment, count int) (*Printer, error) {
	if increment <= 0 {
		return nil, fmt.Errorf("progress increment must be positive, got %d", increment)
	}
	if count <= 0 || count > 100 {
		return nil, fmt.Errorf("progress count must be between 1 and 100, got %d", count)
	}
	return &Printer{
		out:       out,
		clock:     clock,
		increment: increment,
		max:       increment * count,
		start:     clock.Now(),
	}, nil
}

// Observe records one check.
func (p *Printer) Observe(result bcl.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.count++
	if result.Code() != bcl.CodeOK {
		p.errors++
	}
	switch {
	case p.count == p.max:
		p.step()
	case p.count%p.increment == 0:
		fmt.Fprint(p.out, ".")
	}
}

// Finish prints the step line of the pending checks, if any.
func (p *Printer) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.step()
}

// Errors returns the number of failed checks observed.
func (p *Printer) Errors() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errors
}

func (p *Printer) step() {
	now := p.clock.Now()
	elapsed := now.Sub(p.start)
	p.start = now
	if p.count == 0 {
		return
	}

	avg := elapsed / time.Duration(p.count)
	fmt.Fprintf(p.out, "step: {count: %d, elapsed: %s, avg: %s, total errors: %d}\n",
		p.count, elapsed.Truncate(time.Millisecond), avg.Truncate(time.Microsecond), p.errors)
	p.count = 0
}
