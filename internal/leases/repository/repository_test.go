package repository

import (
	"strings"
	"testing"
)

func TestApplyFiltersDrivesJoinsAndGroups(t *testing.T) {
	today := day("2026-08-26")

	f := Filter{
		Statuses:   []Status{StatusCurrent},
		Properties: []string{"Fastighet A"},
	}
	c := applyFilters(f, today)

	groups := c.groups()
	if !groups.Property {
		t.Errorf("property filter should project the property group")
	}
	if groups.Area || groups.District {
		t.Errorf("unfiltered groups should stay absent: %+v", groups)
	}

	query, _ := c.buildSearch(f.SortBy, f.SortOrder, 20, 0)
	if !strings.Contains(query, "p.bafstben") {
		t.Errorf("property column missing from projection:\n%s", query)
	}
	if strings.Contains(query, "r.baomrkod") {
		t.Errorf("area column projected without a filter:\n%s", query)
	}
}

func TestSearchCountExportShareFilterState(t *testing.T) {
	today := day("2026-08-26")
	f := Filter{
		Query:         "Storgatan",
		ObjectTypes:   []string{"STD", "GAR"},
		Statuses:      []Status{StatusCurrent, StatusUpcoming},
		DistrictNames: []string{"Centrum"},
	}

	search := applyFilters(f, today)
	export := applyFilters(f, today)

	searchQuery, searchArgs := search.buildSearch(f.SortBy, f.SortOrder, 20, 0)
	exportQuery, exportArgs := export.buildExport(f.SortBy, f.SortOrder)

	// Identical filter args, identical projection; they differ only in paging.
	if len(searchArgs)-2 != len(exportArgs) {
		t.Errorf("filter arg counts differ: search %d export %d", len(searchArgs)-2, len(exportArgs))
	}

	searchWhere := searchQuery[strings.Index(searchQuery, "WHERE"):strings.Index(searchQuery, "ORDER BY")]
	exportWhere := exportQuery[strings.Index(exportQuery, "WHERE"):strings.Index(exportQuery, "ORDER BY")]
	if searchWhere != exportWhere {
		t.Errorf("WHERE clauses diverge:\n%s\nvs\n%s", searchWhere, exportWhere)
	}
}

func TestPredicateCount(t *testing.T) {
	empty := Filter{}
	if got := empty.PredicateCount(); got != 0 {
		t.Errorf("empty filter counts %d predicates", got)
	}

	full := Filter{
		Query:            "Storgatan",
		ObjectTypes:      []string{"STD"},
		Statuses:         []Status{StatusCurrent},
		StartDateFrom:    dayPtr("2020-01-01"),
		EndDateTo:        dayPtr("2030-01-01"),
		Properties:       []string{"Fastighet A"},
		BuildingCodes:    []string{"B1"},
		AreaCodes:        []string{"01"},
		DistrictNames:    []string{"Centrum"},
		BuildingManagers: []string{"Lena Berg"},
	}
	if got := full.PredicateCount(); got != 10 {
		t.Errorf("full filter counts %d predicates, want 10", got)
	}

	dateRange := Filter{StartDateFrom: dayPtr("2020-01-01"), StartDateTo: dayPtr("2021-01-01")}
	if got := dateRange.PredicateCount(); got != 1 {
		t.Errorf("a date range is one category, counted %d", got)
	}
}
