package transcript

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pintos-tools/testcfg/internal/logger"
	"github.com/pintos-tools/testcfg/internal/profile"
)

// Parser recognizes invocation and summary lines for one transcript profile
type Parser struct {
	profile *profile.Profile
	logger  logger.Logger

	runFlagPattern      *regexp.Regexp
	pathSelectorPattern *regexp.Regexp
	summaryEntryPattern *regexp.Regexp
	headerPatterns      []*regexp.Regexp
}

// NewParser compiles the patterns described by p. A nil logger discards output.
func NewParser(p *profile.Profile, log logger.Logger) (*Parser, error) {
	if p == nil {
		p = profile.Default()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop{}
	}

	parser := &Parser{
		profile:             p,
		logger:              log,
		runFlagPattern:      regexp.MustCompile(`(` + regexp.QuoteMeta(p.RunFlag) + `)(?:\s+(.*))?$`),
		pathSelectorPattern: regexp.MustCompile(regexp.QuoteMeta(p.PathFlag) + `\s+([^:\s]+):(\S+)`),
		summaryEntryPattern: regexp.MustCompile(summaryEntryExpr(p)),
	}
	for _, h := range p.SummaryHeaders {
		re, err := regexp.Compile(h)
		if err != nil {
			return nil, fmt.Errorf("compile summary header %q: %w", h, err)
		}
		parser.headerPatterns = append(parser.headerPatterns, re)
	}
	return parser, nil
}

// summaryEntryExpr captures the first path segment below the thread subtree,
// or the last one when the profile asks for nested paths.
func summaryEntryExpr(p *profile.Profile) string {
	subtree := regexp.QuoteMeta(p.ThreadSubtree)
	if p.NestedSummaryPaths {
		return `^(?:pass|FAIL)\s+(` + subtree + `/(?:[^/\s]+/)*([^/\s]+))`
	}
	return `^(?:pass|FAIL)\s+(` + subtree + `/([^/\s]+))`
}

// Profile returns the profile the parser was built from
func (p *Parser) Profile() *profile.Profile {
	return p.profile
}

// ParseInvocation extracts a record from a launcher line. Lines missing the
// launcher prefix, the separator, the run flag or the path selector yield false.
func (p *Parser) ParseInvocation(line string) (Record, bool) {
	line = strings.TrimSpace(p.truncateRedirect(line))
	if !strings.HasPrefix(line, p.profile.Launcher) {
		return Record{}, false
	}
	rest := strings.TrimSpace(line[len(p.profile.Launcher):])

	pre, runFlag, progArgs, ok := p.splitArgs(rest)
	if !ok {
		return Record{}, false
	}

	m := p.pathSelectorPattern.FindStringSubmatch(pre)
	if m == nil {
		return Record{}, false
	}

	return Record{
		GroupPath: dirname(m[1]),
		Name:      m[2],
		PreArgs:   p.canonicalize(pre),
		RunFlag:   runFlag,
		ProgArgs:  progArgs,
	}, true
}

// parseTail handles a line already known to start with the launcher; the
// record's identity comes from the caller.
func (p *Parser) parseTail(line, groupPath, name string) (Record, bool) {
	line = p.truncateRedirect(line)
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), p.profile.Launcher))

	pre, runFlag, progArgs, ok := p.splitArgs(rest)
	if !ok {
		return Record{}, false
	}
	return Record{
		GroupPath: groupPath,
		Name:      name,
		PreArgs:   p.canonicalize(pre),
		RunFlag:   runFlag,
		ProgArgs:  progArgs,
	}, true
}

func (p *Parser) truncateRedirect(line string) string {
	if p.profile.Redirect == "" {
		return line
	}
	if i := strings.Index(line, p.profile.Redirect); i >= 0 {
		return line[:i]
	}
	return line
}

// splitArgs cuts rest at the first separator and locates the run flag in the
// part after it.
func (p *Parser) splitArgs(rest string) (pre, runFlag, progArgs string, ok bool) {
	i := strings.Index(rest, p.profile.Separator)
	if i < 0 {
		return "", "", "", false
	}
	pre = strings.TrimSpace(rest[:i])
	post := strings.TrimSpace(rest[i+len(p.profile.Separator):])

	loc := p.runFlagPattern.FindStringSubmatchIndex(post)
	if loc == nil {
		return "", "", "", false
	}
	runEnd := loc[3]
	return pre, strings.TrimSpace(post[:runEnd]), strings.TrimSpace(post[runEnd:]), true
}

func (p *Parser) canonicalize(pre string) string {
	return Canonicalize(pre, p.profile.BooleanFlags, p.profile.ValuedFlags)
}

// inThreadSubtree reports whether groupPath belongs to the thread family
func (p *Parser) inThreadSubtree(groupPath string) bool {
	return p.profile.ThreadSubtree != "" && strings.HasPrefix(groupPath, p.profile.ThreadSubtree)
}
