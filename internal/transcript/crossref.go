package transcript

import "strings"

// CrossReference finds the invocation line of every summary entry and adds
// the resulting record to table. The record's group comes from the entry's
// full path. Entries without a usable invocation line are skipped; the
// number of added records is returned.
//
// The first launcher line carrying the thread marker and " <name>" wins, so a
// name repeated across groups, or one that prefixes a longer token, binds to
// the first such launch.
func (p *Parser) CrossReference(lines []string, entries []SummaryEntry, table *Table) int {
	added := 0
	for _, entry := range entries {
		line, ok := p.findInvocation(lines, entry.Name)
		if !ok {
			p.logger.Debug("No invocation line for %s", entry.FullPath)
			continue
		}
		record, ok := p.parseTail(line, dirname(entry.FullPath), entry.Name)
		if !ok {
			p.logger.Debug("Unparseable invocation line for %s: %q", entry.FullPath, line)
			continue
		}
		table.Add(record)
		added++
	}
	return added
}

func (p *Parser) findInvocation(lines []string, name string) (string, bool) {
	for _, line := range lines {
		if !strings.HasPrefix(line, p.profile.Launcher) || !strings.Contains(line, p.profile.ThreadMarker) {
			continue
		}
		if p.mentionsName(line, name) {
			return line, true
		}
	}
	return "", false
}

func (p *Parser) mentionsName(line, name string) bool {
	if !p.profile.ExactNameMatch {
		return strings.Contains(line, " "+name)
	}
	// the first field is the launcher itself
	fields := strings.Fields(line)
	for _, f := range fields[1:] {
		if f == name {
			return true
		}
	}
	return false
}
