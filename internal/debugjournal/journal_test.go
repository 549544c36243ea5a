package debugjournal_test

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codegraph-ai/agentic-core/internal/debugjournal"
)

func TestEnabled(t *testing.T) {
	t.Setenv("CODEGRAPH_DEBUG", "1")
	if !debugjournal.Enabled() {
		t.Error("Enabled() = false, want true")
	}
	t.Setenv("CODEGRAPH_DEBUG", "0")
	if debugjournal.Enabled() {
		t.Error("Enabled() = true, want false")
	}
}

func TestJournal_writesOneLinePerEvent(t *testing.T) {
	dir := t.TempDir()
	j := debugjournal.Open(dir)
	if j == nil {
		t.Fatal("Open returned nil")
	}
	defer j.Close()

	j.Write(debugjournal.AgentStart, map[string]any{"query": "what calls login?"})
	j.Write(debugjournal.AgentFinish, map[string]any{"termination_reason": "FinalAnswer"})

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("ReadDir = %v, %v; want exactly one journal file", entries, err)
	}

	f, err := os.Open(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("Open journal file: %v", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "agent_start") || !strings.Contains(lines[0], "login") {
		t.Errorf("line 0 = %q, want agent_start event with query", lines[0])
	}
	if !strings.Contains(lines[1], "agent_finish") {
		t.Errorf("line 1 = %q, want agent_finish event", lines[1])
	}
}

func TestJournal_nilReceiverIsNoop(t *testing.T) {
	var j *debugjournal.Journal
	j.Write(debugjournal.AgentStart, map[string]any{"x": 1})
	if err := j.Close(); err != nil {
		t.Errorf("Close() on nil journal returned error: %v", err)
	}
}

func TestOpenFromEnv_disabled(t *testing.T) {
	t.Setenv("CODEGRAPH_DEBUG", "0")
	if j := debugjournal.OpenFromEnv(); j != nil {
		t.Error("OpenFromEnv() returned non-nil journal while disabled")
	}
}
