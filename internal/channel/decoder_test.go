package channel

import (
	"errors"
	"slices"
	"testing"
	"time"

	"rttdash/internal/logging"
	"rttdash/internal/transport"
)

func newTextDecoder(t *testing.T) *Decoder {
	t.Helper()
	d, err := NewDecoder(Options{Up: transport.NewMemoryUp(0, "Terminal"), Format: FormatText})
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}
	return d
}

func fixedClock(ts ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		now := ts[min(i, len(ts)-1)]
		i++
		return now
	}
}

func TestNewDecoder_Validation(t *testing.T) {
	up := transport.NewMemoryUp(1, "up-name")
	down := transport.NewMemoryDown(1, "down-name")

	tests := []struct {
		name     string
		opts     Options
		wantErr  error
		wantName string
	}{
		{name: "no endpoints", opts: Options{}, wantErr: ErrNoEndpoint},
		{name: "structured without table", opts: Options{Up: up, Format: FormatStructured}, wantErr: ErrMissingTable},
		{name: "configured name wins", opts: Options{Up: up, Down: down, Name: "Sensors"}, wantName: "Sensors"},
		{name: "up name", opts: Options{Up: up, Down: down}, wantName: "up-name"},
		{name: "down name", opts: Options{Down: down}, wantName: "down-name"},
		{name: "unnamed", opts: Options{Up: transport.NewMemoryUp(2, "")}, wantName: "Unnamed channel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDecoder(tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewDecoder() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewDecoder() error = %v", err)
			}
			if d.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", d.Name(), tt.wantName)
			}
			if !d.LastLineDone() {
				t.Error("new decoder should start with LastLineDone() = true")
			}
		})
	}
}

func TestPoll_ReadsPendingBytes(t *testing.T) {
	up := transport.NewMemoryUp(0, "")
	d, _ := NewDecoder(Options{Up: up})

	d.Poll()
	if len(d.Lines()) != 0 {
		t.Fatalf("empty poll produced lines: %q", d.Lines())
	}

	up.Feed([]byte("boot ok\n"))
	d.Poll()
	if !slices.Equal(d.Lines(), []string{"boot ok"}) {
		t.Errorf("Lines() = %q", d.Lines())
	}
	if up.Pending() != 0 {
		t.Errorf("Pending() = %d after poll", up.Pending())
	}
}

func TestPoll_LargeBacklogReadInChunks(t *testing.T) {
	up := transport.NewMemoryUp(0, "")
	d, _ := NewDecoder(Options{Up: up, Format: FormatBinary})

	up.Feed(make([]byte, ReadChunk+8))
	d.Poll()
	if got := len(d.Samples()); got != ReadChunk/4 {
		t.Fatalf("after first poll len(Samples()) = %d, want %d", got, ReadChunk/4)
	}
	d.Poll()
	if got := len(d.Samples()); got != ReadChunk/4+2 {
		t.Errorf("after second poll len(Samples()) = %d, want %d", got, ReadChunk/4+2)
	}
}

func TestPoll_ReadErrorLeavesStateUnchanged(t *testing.T) {
	logs := logging.NewTestLogManager(16)
	defer logs.Close()

	up := transport.NewMemoryUp(3, "")
	d, _ := NewDecoder(Options{Up: up, Logger: logs.For("channel.3")})
	d.Feed([]byte("partial"))

	up.Feed([]byte(" line\n"))
	up.FailNext(errors.New("probe detached"))
	d.Poll()

	if !slices.Equal(d.Lines(), []string{"partial"}) || d.LastLineDone() {
		t.Fatalf("state changed on read error: lines=%q done=%v", d.Lines(), d.LastLineDone())
	}
	entries := logs.Drain()
	if len(entries) != 1 || entries[0].Level != "ERROR" {
		t.Fatalf("entries = %+v, want one ERROR", entries)
	}
	if entries[0].Fields["error"] != "probe detached" {
		t.Errorf("error field = %v", entries[0].Fields["error"])
	}

	d.Poll()
	if !slices.Equal(d.Lines(), []string{"partial line"}) {
		t.Errorf("after recovery Lines() = %q", d.Lines())
	}
}

func TestInput_EditAndSubmit(t *testing.T) {
	down := transport.NewMemoryDown(0, "")
	d, _ := NewDecoder(Options{Up: transport.NewMemoryUp(0, ""), Down: down})

	for _, r := range "led onx" {
		d.TypeRune(r)
	}
	d.Backspace()
	if d.Input() != "led on" {
		t.Fatalf("Input() = %q", d.Input())
	}

	d.SubmitInput()
	if got := string(down.Written()); got != "led on\n" {
		t.Errorf("Written() = %q, want %q", got, "led on\n")
	}
	if d.Input() != "" {
		t.Errorf("Input() = %q after submit", d.Input())
	}

	d.Backspace()
	if d.Input() != "" {
		t.Errorf("Backspace on empty input produced %q", d.Input())
	}
}

func TestInput_SubmitWriteFailureClearsInput(t *testing.T) {
	logs := logging.NewTestLogManager(16)
	defer logs.Close()

	down := transport.NewMemoryDown(2, "")
	d, _ := NewDecoder(Options{Down: down, Logger: logs.For("channel.2")})
	d.TypeRune('x')
	down.FailNext(errors.New("write timeout"))

	d.SubmitInput()

	if d.Input() != "" {
		t.Errorf("Input() = %q, want empty", d.Input())
	}
	if len(down.Written()) != 0 {
		t.Errorf("Written() = %q, want nothing", down.Written())
	}
	entries := logs.Drain()
	if len(entries) != 1 || entries[0].Level != "ERROR" {
		t.Errorf("entries = %+v, want one ERROR", entries)
	}
}

func TestInput_SubmitWithoutDownIsNoop(t *testing.T) {
	d := newTextDecoder(t)
	d.TypeRune('a')
	d.SubmitInput()
	if d.Input() != "a" {
		t.Errorf("Input() = %q, want %q", d.Input(), "a")
	}
}

func TestScroll_Saturates(t *testing.T) {
	d := newTextDecoder(t)
	d.ScrollDown()
	if d.ScrollOffset() != 0 {
		t.Fatalf("ScrollOffset() = %d after scrolling down at bottom", d.ScrollOffset())
	}
	d.ScrollUp()
	d.ScrollUp()
	if d.ScrollOffset() != 2 {
		t.Fatalf("ScrollOffset() = %d, want 2", d.ScrollOffset())
	}
	d.ScrollToNewest()
	if d.ScrollOffset() != 0 {
		t.Errorf("ScrollOffset() = %d after ScrollToNewest", d.ScrollOffset())
	}
}

func TestScroll_AnchorsOnNewLines(t *testing.T) {
	d := newTextDecoder(t)
	d.Feed([]byte("x\ny\nz\npart"))

	d.Scroll(2)
	d.Feed([]byte("ial\nnext\n"))

	if !slices.Equal(d.Lines(), []string{"x", "y", "z", "partial", "next"}) {
		t.Fatalf("Lines() = %q", d.Lines())
	}
	// "partial" replaces "part"; only "next" is new.
	if d.ScrollOffset() != 3 {
		t.Errorf("ScrollOffset() = %d, want 3", d.ScrollOffset())
	}
}

func TestScroll_FollowsNewestAtZero(t *testing.T) {
	d := newTextDecoder(t)
	d.Feed([]byte("a\nb\nc\n"))
	if d.ScrollOffset() != 0 {
		t.Errorf("ScrollOffset() = %d, want 0", d.ScrollOffset())
	}
}

func TestVisibleLines_WrapsAndClamps(t *testing.T) {
	d := newTextDecoder(t)
	d.Feed([]byte("abcdefghij\nk\n"))

	got := d.VisibleLines(5, 10)
	if !slices.Equal(got, []string{"abcde", "fghij", "k"}) {
		t.Fatalf("VisibleLines(5, 10) = %q", got)
	}

	d.Scroll(1)
	got = d.VisibleLines(5, 2)
	if !slices.Equal(got, []string{"abcde", "fghij"}) {
		t.Errorf("scrolled VisibleLines(5, 2) = %q", got)
	}

	d.Scroll(50)
	got = d.VisibleLines(5, 2)
	if d.ScrollOffset() != 1 {
		t.Errorf("ScrollOffset() = %d, want clamp to 1", d.ScrollOffset())
	}
	if !slices.Equal(got, []string{"abcde", "fghij"}) {
		t.Errorf("over-scrolled VisibleLines(5, 2) = %q", got)
	}
}

func TestVisibleLines_RewrapsReplacedLine(t *testing.T) {
	d := newTextDecoder(t)
	d.Feed([]byte("abc"))
	if got := d.VisibleLines(4, 5); !slices.Equal(got, []string{"abc"}) {
		t.Fatalf("VisibleLines() = %q", got)
	}

	d.Feed([]byte("defgh\n"))
	if got := d.VisibleLines(4, 5); !slices.Equal(got, []string{"abcd", "efgh"}) {
		t.Errorf("VisibleLines() = %q after completing line", got)
	}
}
