package reconcile

// Group is the set of raw rows sharing an (account, instrument) key, in provider order.
type Group struct {
	Account    string
	Instrument string
	Rows       []RawRow
}

// First returns the value of column in the first row of the group.
func (g Group) First(column string) string {
	return g.Rows[0][column]
}

// GroupRows groups raw rows by the given account and instrument columns.
// Rows with an empty instrument are skipped. Groups are returned in first-seen order.
func GroupRows(raw []RawRow, accountCol, instrumentCol string) []Group {
	index := make(map[joinKey]int)
	var groups []Group
	for _, row := range raw {
		instrument := row[instrumentCol]
		if instrument == "" {
			continue
		}
		k := joinKey{account: row[accountCol], value: instrument}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Account: k.account, Instrument: instrument})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups
}
