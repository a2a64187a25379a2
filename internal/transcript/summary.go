package transcript

import "strings"

// ScanSummary walks the transcript backwards to the summary header, then
// collects pass/FAIL entries under the thread subtree until the first
// non-blank line that is not such an entry. Entries come back in
// top-to-bottom order.
func (p *Parser) ScanSummary(lines []string) []SummaryEntry {
	if p.profile.ThreadSubtree == "" {
		return nil
	}

	var entries []SummaryEntry
	inSummary := false
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if !inSummary {
			inSummary = p.isSummaryHeader(line)
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := p.summaryEntryPattern.FindStringSubmatch(line)
		if m == nil {
			break
		}
		entries = append(entries, SummaryEntry{FullPath: m[1], Name: m[2]})
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}

func (p *Parser) isSummaryHeader(line string) bool {
	for _, re := range p.headerPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
