package transcript

// Group is the ordered list of records sharing a group path
type Group struct {
	Path    string
	Records []Record
}

// Table accumulates records by group path. Groups keep the order in which
// they were first added; records keep discovery order within a group.
type Table struct {
	order  []string
	groups map[string][]Record
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{groups: make(map[string][]Record)}
}

// Add appends r to its group, creating the group on first use
func (t *Table) Add(r Record) {
	if _, ok := t.groups[r.GroupPath]; !ok {
		t.order = append(t.order, r.GroupPath)
	}
	t.groups[r.GroupPath] = append(t.groups[r.GroupPath], r)
}

// Groups returns the groups in insertion order
func (t *Table) Groups() []Group {
	result := make([]Group, 0, len(t.order))
	for _, path := range t.order {
		records := make([]Record, len(t.groups[path]))
		copy(records, t.groups[path])
		result = append(result, Group{Path: path, Records: records})
	}
	return result
}

// Total counts records across all groups
func (t *Table) Total() int {
	total := 0
	for _, records := range t.groups {
		total += len(records)
	}
	return total
}
