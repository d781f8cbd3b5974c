package database

import "github.com/nao1215/sitescope/internal/model"

// ChangeKind classifies a difference between two reports.
type ChangeKind string

// Change kinds.
const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
	ChangeUpdated ChangeKind = "updated"
)

// Change is one item that differs between two reports.
// Items are matched by name within a subsection.
type Change struct {
	Tab    model.ResultTab `json:"tab"`
	Key    string          `json:"key"`
	Name   string          `json:"name"`
	Kind   ChangeKind      `json:"kind"`
	Before *model.Item     `json:"before,omitempty"`
	After  *model.Item     `json:"after,omitempty"`
}

// Comparison is the result of Store.Compare.
type Comparison struct {
	Older   Metadata `json:"older"`
	Newer   Metadata `json:"newer"`
	Changes []Change `json:"changes"`
}

// Diff lists the item changes from older to newer in report order.
// The overview and code samples are not compared.
func Diff(older, newer *model.Report) []Change {
	var changes []Change
	for _, tab := range model.SectionTabs() {
		before, _ := older.Section(tab)
		after, _ := newer.Section(tab)
		for _, key := range model.SubsectionKeys(tab) {
			changes = append(changes, diffItems(tab, key, items(before, key), items(after, key))...)
		}
	}
	return changes
}

func items(section model.Section, key string) []model.Item {
	sub, ok := section.Subsection(key)
	if !ok {
		return nil
	}
	return sub.Items
}

func diffItems(tab model.ResultTab, key string, before, after []model.Item) []Change {
	old := make(map[string]model.Item, len(before))
	for _, item := range before {
		old[item.Name] = item
	}

	var changes []Change
	seen := make(map[string]bool, len(after))
	for _, item := range after {
		seen[item.Name] = true
		prev, ok := old[item.Name]
		switch {
		case !ok:
			changes = append(changes, Change{Tab: tab, Key: key, Name: item.Name, Kind: ChangeAdded, After: &item})
		case prev != item:
			changes = append(changes, Change{Tab: tab, Key: key, Name: item.Name, Kind: ChangeUpdated, Before: &prev, After: &item})
		}
	}
	for _, item := range before {
		if !seen[item.Name] {
			changes = append(changes, Change{Tab: tab, Key: key, Name: item.Name, Kind: ChangeRemoved, Before: &item})
		}
	}
	return changes
}
