// Package testconfig renders a group table as a .test_config file: a fixed
// comment header, one [group] section per test directory and a footer with
// the testcase total and generation date.
package testconfig

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pintos-tools/testcfg/internal/transcript"
)

// DateLayout is the format of the "Generated on" footer
const DateLayout = "2006-01-02"

const header = `# .test_config format:
# test_name | pre_args | post_args | prog_args | test_path
#
# Fields:
#   test_name : name used to identify the test
#   pre_args  : options passed to 'pintos' before --
#   post_args : options passed to 'pintos' after --, up to and including run
#   prog_args : the full test program arguments wrapped in single quotes
#   test_path : directory of the test binary on the host file system
`

// Options controls rendering
type Options struct {
	// DisplayRoot is removed from the front of section names. The data lines
	// always carry the full group path.
	DisplayRoot string
	GeneratedOn time.Time
}

// Write renders table to w
func Write(w io.Writer, table *transcript.Table, opts Options) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(header)
	bw.WriteString("\n")

	total := 0
	for _, group := range table.Groups() {
		fmt.Fprintf(bw, "[%s]\n", SectionName(group.Path, opts.DisplayRoot))
		for _, r := range group.Records {
			fmt.Fprintf(bw, "%s | %s | %s | %s | %s\n", r.Name, r.PreArgs, r.RunFlag, QuoteProgArgs(r.ProgArgs), group.Path)
			total++
		}
		bw.WriteString("\n")
	}

	fmt.Fprintf(bw, "# Total testcases: %d\n", total)
	fmt.Fprintf(bw, "# Generated on %s\n", opts.GeneratedOn.Format(DateLayout))

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write test config: %w", err)
	}
	return nil
}

// SectionName strips root from the front of a group path
func SectionName(groupPath, root string) string {
	if root != "" {
		return strings.TrimPrefix(groupPath, root)
	}
	return groupPath
}

// QuoteProgArgs wraps args in single quotes unless it already starts and ends
// with one. Empty arguments render as ''.
func QuoteProgArgs(args string) string {
	switch {
	case strings.HasPrefix(args, "'") && strings.HasSuffix(args, "'"):
		return args
	case args == "":
		return "''"
	default:
		return "'" + args + "'"
	}
}
