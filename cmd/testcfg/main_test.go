package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleTranscript = `pintos -v -k -T 60 -m 20 --fs-disk=10 -p tests/userprog/args-single:args-single -- -q -f run 'args-single onearg' < /dev/null 2> tests/userprog/args-single.errors > tests/userprog/args-single.output
pass tests/userprog/args-single
pintos -v -k -T 60 -m 20 -- -q -threads-tests -f run alarm-zero < /dev/null 2> tests/threads/alarm-zero.errors > tests/threads/alarm-zero.output
pass tests/threads/alarm-zero
make[1]: summary
pass tests/threads/alarm-zero
0 of 1 tests failed.
`

func testApp(stdin string) (*app, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	a := &app{
		stdin:  strings.NewReader(stdin),
		stdout: &stdout,
		stderr: &stderr,
		now:    func() time.Time { return time.Date(2026, time.October, 19, 9, 30, 0, 0, time.UTC) },
	}
	return a, &stdout, &stderr
}

func execute(t *testing.T, a *app, args ...string) error {
	t.Helper()
	cmd := a.rootCmd()
	cmd.SetArgs(append([]string{"--log-dir", t.TempDir()}, args...))
	return cmd.Execute()
}

func TestRoot_StdinToStdout(t *testing.T) {
	a, stdout, _ := testApp(sampleTranscript)
	if err := execute(t, a); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		"[userprog]\nargs-single | --fs-disk=10 -p tests/userprog/args-single:args-single | -q -f run | 'args-single onearg' | tests/userprog\n",
		"[threads]\nalarm-zero |  | -q -threads-tests -f run | 'alarm-zero' | tests/threads\n",
		"# Total testcases: 2\n",
		"# Generated on 2026-10-19\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRoot_FileToOutputFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "make-check-output.txt")
	out := filepath.Join(dir, ".test_config")
	if err := os.WriteFile(in, []byte(sampleTranscript), 0644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	a, stdout, _ := testApp("")
	if err := execute(t, a, in, "-o", out); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("nothing should go to stdout when --output is set, got %q", stdout.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "# Total testcases: 2") {
		t.Errorf("unexpected output file:\n%s", data)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("output mode = %v, expected 0644", info.Mode().Perm())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestRoot_DashMeansStdout(t *testing.T) {
	a, stdout, _ := testApp(sampleTranscript)
	if err := execute(t, a, "-o", "-"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(stdout.String(), "# Total testcases: 2") {
		t.Errorf("expected the config on stdout, got:\n%s", stdout.String())
	}
}

func TestRoot_CustomProfile(t *testing.T) {
	profilePath := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(profilePath, []byte("display_root: tests/userprog\nthread_subtree: \"\"\n"), 0644); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	a, stdout, _ := testApp(sampleTranscript)
	if err := execute(t, a, "--profile", profilePath); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "[]\nargs-single") {
		t.Errorf("expected the display root to be stripped from the section name:\n%s", out)
	}
	if !strings.Contains(out, "# Total testcases: 1") {
		t.Errorf("thread tests should be skipped without a thread subtree:\n%s", out)
	}
}

func TestRoot_Errors(t *testing.T) {
	dir := t.TempDir()
	badProfile := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badProfile, []byte("launcher: \"\"\n"), 0644); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing transcript", []string{filepath.Join(dir, "nope.txt")}, "failed to open transcript"},
		{"watch without file", []string{"--watch", "-o", filepath.Join(dir, "out")}, "--watch needs"},
		{"watch without output", []string{"--watch", filepath.Join(dir, "in")}, "--watch needs"},
		{"invalid profile", []string{"--profile", badProfile}, "launcher must not be empty"},
		{"missing profile", []string{"--profile", filepath.Join(dir, "missing.yaml")}, "read profile"},
		{"too many args", []string{"a", "b"}, "accepts at most 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _, stderr := testApp(sampleTranscript)
			err := execute(t, a, tt.args...)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, expected it to contain %q", err, tt.wantErr)
			}
			if !strings.Contains(stderr.String(), "Error: ") {
				t.Errorf("expected the error on stderr, got %q", stderr.String())
			}
		})
	}
}

func TestRoot_WatchRegenerates(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "make-check-output.txt")
	out := filepath.Join(dir, ".test_config")
	if err := os.WriteFile(in, []byte(sampleTranscript), 0644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	a, _, stderr := testApp("")
	a.debounce = 10 * time.Millisecond
	saved := make(chan struct{}, 16)
	a.afterSave = func() { saved <- struct{}{} }

	cmd := a.rootCmd()
	cmd.SetArgs([]string{"--log-dir", t.TempDir(), in, "-o", out, "--watch"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	waitForTotal(t, saved, out, 2)

	extra := "pintos -v -k -T 60 -m 20 --fs-disk=10 -p tests/userprog/halt:halt -- -q -f run halt\n"
	if err := os.WriteFile(in, []byte(extra+sampleTranscript), 0644); err != nil {
		t.Fatalf("rewrite transcript: %v", err)
	}
	waitForTotal(t, saved, out, 3)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
	if !strings.Contains(stderr.String(), "Watching") {
		t.Errorf("expected a watch banner on stderr, got %q", stderr.String())
	}
}

// waitForTotal consumes save notifications until the output reports total
// testcases; a transcript rewrite may be picked up in more than one burst.
func waitForTotal(t *testing.T, saved <-chan struct{}, path string, total int) {
	t.Helper()
	want := fmt.Sprintf("# Total testcases: %d\n", total)
	timeout := time.After(5 * time.Second)
	for {
		select {
		case <-saved:
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read output: %v", err)
			}
			if strings.Contains(string(data), want) {
				return
			}
		case <-timeout:
			t.Fatalf("output never reported %q", want)
		}
	}
}
