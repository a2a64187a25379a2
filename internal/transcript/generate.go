package transcript

// Stats counts what a Generate pass accepted and skipped
type Stats struct {
	Invocations     int // records produced by the first pass
	ThreadFiltered  int // first-pass records dropped because they belong to the thread subtree
	SummaryEntries  int
	CrossReferenced int
}

// Unmatched is the number of summary entries that produced no record
func (s Stats) Unmatched() int {
	return s.SummaryEntries - s.CrossReferenced
}

// CollectInvocations runs the invocation parser over every line and adds the
// records outside the thread subtree to table.
func (p *Parser) CollectInvocations(lines []string, table *Table) (added, filtered int) {
	for _, line := range lines {
		record, ok := p.ParseInvocation(line)
		if !ok {
			continue
		}
		if p.inThreadSubtree(record.GroupPath) {
			filtered++
			continue
		}
		table.Add(record)
		added++
	}
	return added, filtered
}

// Generate builds the group table for a whole transcript: standalone
// invocations first, then the thread family recovered from the summary.
func (p *Parser) Generate(lines []string) (*Table, Stats) {
	table := NewTable()
	var stats Stats

	stats.Invocations, stats.ThreadFiltered = p.CollectInvocations(lines, table)
	entries := p.ScanSummary(lines)
	stats.SummaryEntries = len(entries)
	stats.CrossReferenced = p.CrossReference(lines, entries, table)

	p.logger.Info("Parsed %d lines: %d invocations, %d thread-subtree lines deferred, %d/%d summary entries matched",
		len(lines), stats.Invocations, stats.ThreadFiltered, stats.CrossReferenced, stats.SummaryEntries)
	if n := stats.Unmatched(); n > 0 {
		p.logger.Warn("%d summary entries had no matching %s line", n, p.profile.Launcher)
	}
	return table, stats
}
