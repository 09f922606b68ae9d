package catalog

import "sort"

// BestQuality returns the item with the lowest cloud cover, breaking ties
// by the most recent acquisition. Returns nil for an empty slice. Items
// without cloud-cover data never reach this point (the search filter
// excludes them), but if present they sort last.
func BestQuality(items []Item) *Item {
	if len(items) == 0 {
		return nil
	}

	ranked := make([]Item, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		ci, cj := cloudOrMax(ranked[i]), cloudOrMax(ranked[j])
		if ci != cj {
			return ci < cj
		}
		return ranked[i].Acquired.After(ranked[j].Acquired)
	})

	best := ranked[0]
	return &best
}

func cloudOrMax(it Item) float64 {
	if it.CloudCover == nil {
		return 101
	}
	return *it.CloudCover
}
