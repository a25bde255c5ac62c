package progress

import (
	"bytes"
	"testing"
	"time"

	"bcl-go/internal/bcl"
	"bcl-go/internal/testutil"
)

func TestNewPrinter(t *testing.T) {
	clock := testutil.FixedClock()
	for _, tt := range []struct{ increment, count int }{{0, 1}, {1, 0}, {1, 101}} {
		if _, err := NewPrinter(&bytes.Buffer{}, clock, tt.increment, tt.count); err == nil {
			t.Errorf("NewPrinter(%d, %d) expected error", tt.increment, tt.count)
		}
	}
}

func TestPrinter(t *testing.T) {
	t.Run("dots and step lines", func(t *testing.T) {
		var buf bytes.Buffer
		clock := testutil.FixedClock()
		p, err := NewPrinter(&buf, clock, 2, 3)
		if err != nil {
			t.Fatalf("NewPrinter() error = %v", err)
		}

		for i := 0; i < 5; i++ {
			p.Observe(bcl.OK{})
		}
		if buf.String() != ".." {
			t.Fatalf("output after 5 checks = %q, want %q", buf.String(), "..")
		}

		clock.Advance(6 * time.Second)
		p.Observe(bcl.NotFound{Path: "/a"})
		want := "..step: {count: 6, elapsed: 6s, avg: 1s, total errors: 1}\n"
		if buf.String() != want {
			t.Fatalf("output after 6 checks = %q, want %q", buf.String(), want)
		}

		p.Observe(bcl.OK{})
		clock.Advance(500 * time.Millisecond)
		p.Finish()
		want += "step: {count: 1, elapsed: 500ms, avg: 500ms, total errors: 1}\n"
		if buf.String() != want {
			t.Errorf("output after finish = %q, want %q", buf.String(), want)
		}
		if p.Errors() != 1 {
			t.Errorf("Errors() = %d, want 1", p.Errors())
		}
	})

	t.Run("finish without pending checks prints nothing", func(t *testing.T) {
		var buf bytes.Buffer
		p, _ := NewPrinter(&buf, testutil.FixedClock(), 1, 1)

		p.Observe(bcl.OK{})
		buf.Reset()
		p.Finish()
		if buf.Len() != 0 {
			t.Errorf("Finish() printed %q", buf.String())
		}
	})
}
