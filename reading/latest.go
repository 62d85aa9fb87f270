package reading

import "sort"

// TieBreak decides which of several rows sharing a key and sample date wins.
type TieBreak int

const (
	// KeepLast keeps the row that appeared later in the master table.
	KeepLast TieBreak = iota
	// KeepFirst keeps the row that appeared earlier in the master table.
	KeepFirst
)

// ParseTieBreak maps the configuration value to a TieBreak. Unknown values
// fall back to KeepLast.
func ParseTieBreak(value string) TieBreak {
	if value == "first" {
		return KeepFirst
	}
	return KeepLast
}

// Latest returns a new table holding one record per transformer key: the one
// with the greatest sample date. Records are ordered by key.
func (t *Table) Latest(tieBreak TieBreak) *Table {
	groups := make(map[Key][]Record)
	keys := make([]Key, 0)
	for _, record := range t.Records {
		key := record.Key()
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], record)
	}

	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})

	latest := &Table{Schema: append([]string(nil), t.Schema...), Records: make([]Record, 0, len(keys))}
	for _, key := range keys {
		latest.Records = append(latest.Records, pickLatest(groups[key], tieBreak))
	}
	return latest
}

func pickLatest(records []Record, tieBreak TieBreak) Record {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].SampleDate.Before(records[j].SampleDate) {
			return true
		}
		if records[j].SampleDate.Before(records[i].SampleDate) {
			return false
		}
		if tieBreak == KeepFirst {
			return records[i].Seq > records[j].Seq
		}
		return records[i].Seq < records[j].Seq
	})
	return records[len(records)-1]
}
