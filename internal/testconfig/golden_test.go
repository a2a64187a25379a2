package testconfig

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"github.com/pintos-tools/testcfg/internal/logger"
	"github.com/pintos-tools/testcfg/internal/profile"
	"github.com/pintos-tools/testcfg/internal/transcript"
)

var updateGolden = flag.Bool("update", false, "rewrite the test_config section of testdata/*.txtar")

var goldenDate = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

// Each archive holds a "transcript" file and the "test_config" it must produce.
func TestGolden(t *testing.T) {
	files, err := filepath.Glob("testdata/*.txtar")
	if err != nil {
		t.Fatalf("glob testdata: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no txtar files in testdata")
	}

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			runGolden(t, file)
		})
	}
}

func runGolden(t *testing.T, file string) {
	archive, err := txtar.ParseFile(file)
	if err != nil {
		t.Fatalf("parse %s: %v", file, err)
	}

	var input []byte
	wantIdx := -1
	for i, f := range archive.Files {
		switch f.Name {
		case "transcript":
			input = f.Data
		case "test_config":
			wantIdx = i
		}
	}
	if input == nil {
		t.Fatalf("%s has no transcript section", file)
	}

	lines, err := transcript.ReadLines(bytes.NewReader(input))
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	prof := profile.Default()
	parser, err := transcript.NewParser(prof, logger.NewTestLogger())
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	table, _ := parser.Generate(lines)

	var buf bytes.Buffer
	if err := Write(&buf, table, Options{DisplayRoot: prof.DisplayRoot, GeneratedOn: goldenDate}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if *updateGolden {
		if wantIdx < 0 {
			archive.Files = append(archive.Files, txtar.File{Name: "test_config"})
			wantIdx = len(archive.Files) - 1
		}
		archive.Files[wantIdx].Data = buf.Bytes()
		if err := os.WriteFile(file, txtar.Format(archive), 0644); err != nil {
			t.Fatalf("write %s: %v", file, err)
		}
		return
	}

	if wantIdx < 0 {
		t.Fatalf("%s has no test_config section; run with -update", file)
	}
	if diff := cmp.Diff(string(archive.Files[wantIdx].Data), buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}
