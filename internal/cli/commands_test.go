package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rttdash/internal/config"
	"rttdash/internal/instance"
)

func TestBuildApp_VersionCommand_PrintsVersion(t *testing.T) {
	app := BuildApp("1.2.3", config.DefaultConfig(), "")
	out := &bytes.Buffer{}
	app.SetOutput(out, &bytes.Buffer{})

	launch, err := app.Execute([]string{"version"})
	if err != nil || launch {
		t.Fatalf("Execute(version) = %v, %v", launch, err)
	}
	if out.String() != "1.2.3\n" {
		t.Errorf("version output = %q, want %q", out.String(), "1.2.3\n")
	}
}

func TestBuildApp_TableDemo(t *testing.T) {
	app := BuildApp("1.0.0", config.DefaultConfig(), "")
	out := &bytes.Buffer{}
	app.SetOutput(out, &bytes.Buffer{})

	if _, err := app.Execute([]string{"table", "demo"}); err != nil {
		t.Fatalf("table demo error = %v", err)
	}
	if !strings.Contains(out.String(), "firmware") {
		t.Errorf("table demo output = %q", out.String())
	}
}

func TestBuildApp_RegistersCommands(t *testing.T) {
	app := BuildApp("1.0.0", config.DefaultConfig(), t.TempDir())

	for _, name := range []string{"channels", "cleanup", "version"} {
		cmd, ok := app.commands[name]
		if !ok {
			t.Errorf("%s command not registered", name)
			continue
		}
		if cmd.Summary == "" || cmd.Usage == "" {
			t.Errorf("%s command should have summary and usage", name)
		}
	}

	table, ok := app.groups["table"]
	if !ok {
		t.Fatal("table group not registered")
	}
	for _, name := range []string{"check", "show", "demo"} {
		if _, ok := table.Commands[name]; !ok {
			t.Errorf("table %s not registered", name)
		}
	}
}

func TestResolveDataDir(t *testing.T) {
	if got := ResolveDataDir("/explicit"); got != "/explicit" {
		t.Errorf("ResolveDataDir(explicit) = %q", got)
	}
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := ResolveDataDir(""); got != filepath.Join("/state", "rttdash") {
		t.Errorf("ResolveDataDir(\"\") = %q", got)
	}
}

func TestChannelsCommand_Sim(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := runChannelsCommand(context.Background(), buf, config.DefaultConfig()); err != nil {
		t.Fatalf("channels command returned error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"target sim", "up    1  Sensors", "down  0  Terminal", "F1  Terminal", "up 0, down 0"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestChannelsCommand_ReportsUnmatchedEntries(t *testing.T) {
	cfg := config.DefaultConfig()
	missing := 9
	cfg.RTT.Channels = []config.ChannelConfig{{Up: &missing, Name: "ghost"}}

	buf := &bytes.Buffer{}
	err := runChannelsCommand(context.Background(), buf, cfg)
	if err == nil {
		t.Fatal("channels command should fail when no tab results")
	}
	if !strings.Contains(buf.String(), "config entry 0 (ghost) matches no channel") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestCleanupCommand(t *testing.T) {
	dir := t.TempDir()

	fl, err := instance.Lock(dir, "sim")
	if err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}
	defer instance.Cleanup(dir, "sim", fl)

	buf := &bytes.Buffer{}
	if err := runCleanupCommand(buf, dir); err != nil {
		t.Fatalf("cleanup command returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "Cleaned up 0 stale lock(s).") {
		t.Errorf("expected cleanup message in output, got: %s", buf.String())
	}
}

func TestTableCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fw.yaml")
	content := `
encoding: msgpack
entries:
  - {index: 2, level: warn, format: "low battery {=u16} mV"}
  - {index: 1, level: info, format: "boot"}
locations:
  - {index: 1, file: src/main.rs, line: 12}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	buf := &bytes.Buffer{}
	if err := runTableCheck(buf, path); err != nil {
		t.Fatalf("table check returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "2 entries, encoding msgpack, locations true") {
		t.Errorf("table check output = %q", buf.String())
	}

	buf.Reset()
	if err := runTableShow(buf, path); err != nil {
		t.Fatalf("table show returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "boot  (src/main.rs:12)") || !strings.Contains(lines[1], "WARN") {
		t.Errorf("table show output = %q", buf.String())
	}

	if err := runTableCheck(buf, ""); err == nil {
		t.Error("table check without a path should fail")
	}
	if err := runTableCheck(buf, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("table check on a missing file should fail")
	}
}
