package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortColumns whitelists the columns a list request may order by. Anything
// else, including an empty field, falls back to a fixed column so no
// caller-supplied text reaches ORDER BY.
type sortColumns struct {
	allowed  map[string]struct{}
	fallback string
}

func newSortColumns(fallback string, columns ...string) sortColumns {
	allowed := make(map[string]struct{}, len(columns)+1)
	allowed[fallback] = struct{}{}
	for _, c := range columns {
		allowed[c] = struct{}{}
	}
	return sortColumns{allowed: allowed, fallback: fallback}
}

// orderBy resolves a requested field and direction. Only "asc" sorts
// ascending; newest first is the default.
func (s sortColumns) orderBy(field, dir string) clause.OrderByColumn {
	column := strings.ToLower(strings.TrimSpace(field))
	if _, ok := s.allowed[column]; !ok {
		column = s.fallback
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: column},
		Desc:   !strings.EqualFold(strings.TrimSpace(dir), "asc"),
	}
}

var orderSort = newSortColumns("created_at",
	"id", "updated_at", "order_number", "order_date", "ship_to_name",
	"ship_to_state", "ship_to_country", "sku", "quantity", "requested_warehouse",
)

var importHistorySort = newSortColumns("started_at",
	"id", "created_at", "updated_at", "file_name", "file_size", "format",
	"total_rows", "imported_rows", "rejected_rows", "status", "completed_at",
)
