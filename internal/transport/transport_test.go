package transport

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"rttdash/internal/logging"
)

func TestPending_DropsOldestWhenFull(t *testing.T) {
	q := newPending(4)
	if dropped := q.push([]byte("ab")); dropped != 0 {
		t.Fatalf("push() dropped %d", dropped)
	}
	if dropped := q.push([]byte("cdef")); dropped != 2 {
		t.Fatalf("push() dropped %d, want 2", dropped)
	}

	buf := make([]byte, 8)
	n, err := q.read(buf)
	if err != nil || string(buf[:n]) != "cdef" {
		t.Errorf("read() = %q, %v", buf[:n], err)
	}
}

func TestPending_ErrorAfterData(t *testing.T) {
	q := newPending(0)
	q.push([]byte("tail"))
	q.fail(errors.New("gone"))

	buf := make([]byte, 2)
	if n, err := q.read(buf); err != nil || n != 2 {
		t.Fatalf("read() = %d, %v; want data first", n, err)
	}
	if n, err := q.read(buf); err != nil || n != 2 {
		t.Fatalf("read() = %d, %v; want rest of data", n, err)
	}
	if _, err := q.read(buf); err == nil {
		t.Fatal("read() error = nil once drained, want recorded error")
	}
	if n, err := q.read(buf); err != nil || n != 0 {
		t.Errorf("read() = %d, %v after error was reported", n, err)
	}
}

func TestMemory_ReadWrite(t *testing.T) {
	up := NewMemoryUp(0, "Terminal")
	down := NewMemoryDown(0, "Terminal")

	up.Feed([]byte("hello"))
	buf := make([]byte, 3)
	n, _ := up.Read(buf)
	if string(buf[:n]) != "hel" || up.Pending() != 2 {
		t.Errorf("Read() = %q, Pending() = %d", buf[:n], up.Pending())
	}

	up.FailNext(ErrClosed)
	if _, err := up.Read(buf); !errors.Is(err, ErrClosed) {
		t.Errorf("Read() error = %v, want ErrClosed", err)
	}
	if up.Pending() != 2 {
		t.Errorf("failed Read consumed data: Pending() = %d", up.Pending())
	}

	_, _ = down.Write([]byte("a"))
	down.FailNext(ErrClosed)
	if _, err := down.Write([]byte("b")); err == nil {
		t.Error("Write() error = nil, want failure")
	}
	_, _ = down.Write([]byte("c"))
	if string(down.Written()) != "ac" {
		t.Errorf("Written() = %q, want %q", down.Written(), "ac")
	}
}

func TestDescribe(t *testing.T) {
	target := &Memory{
		Ups:   []*MemoryUp{NewMemoryUp(2, "Log"), NewMemoryUp(0, "Terminal")},
		Downs: []*MemoryDown{NewMemoryDown(0, "")},
	}

	want := []string{
		"up    0  Terminal",
		"up    2  Log",
		"down  0  (unnamed)",
	}
	if got := Describe(target); !slices.Equal(got, want) {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}

func TestOpen_Errors(t *testing.T) {
	logs := logging.NewTestLogManager(16)
	defer logs.Close()

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{name: "unknown kind", opts: Options{Kind: "jtag"}, want: "unknown transport kind"},
		{name: "dir without path", opts: Options{Kind: KindDir}, want: "requires a directory"},
		{name: "exec without command", opts: Options{Kind: KindExec}, want: "requires a command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.opts, logs)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Open() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestOpen_DefaultsToSim(t *testing.T) {
	target, err := Open(context.Background(), Options{}, logging.NewTestLogManager(16))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer target.Close()
	if target.ID() != "sim" {
		t.Errorf("ID() = %q, want sim", target.ID())
	}
}
