package memory

import "github.com/wolfeidau/teamhub/internal/store"

// paginate applies skip/limit to an already sorted slice. A non-positive limit returns everything after skip.
func paginate[T any](items []T, page store.Page) []T {
	if page.Skip >= len(items) {
		return []T{}
	}
	items = items[max(page.Skip, 0):]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}
