package service

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"lease_portal_backend/internal/leases/transport"
	"lease_portal_backend/platform/apperr"
	"lease_portal_backend/platform/logger"
)

type stubSearchConfig struct{}

func (stubSearchConfig) GetDefaultPageSize() int { return 20 }
func (stubSearchConfig) GetMaxPageSize() int     { return 100 }
func (stubSearchConfig) GetAPIBasePath() string  { return "/api/v1" }

func newTestService() *Service {
	return New(nil, stubSearchConfig{}, logger.New("development"))
}

func TestPageBounds(t *testing.T) {
	svc := newTestService()

	cases := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
	}{
		{"defaults", 0, 0, 1, 20},
		{"explicit", 3, 50, 3, 50},
		{"negative page", -2, 10, 1, 10},
		{"limit capped", 1, 500, 1, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, limit := svc.pageBounds(transport.SearchLeasesQuery{Page: tc.page, Limit: tc.limit})
			if page != tc.wantPage || limit != tc.wantLimit {
				t.Errorf("pageBounds = (%d, %d), want (%d, %d)", page, limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}

func TestToFilterValidation(t *testing.T) {
	cases := []struct {
		name  string
		query transport.SearchLeasesQuery
	}{
		{"unknown status", transport.SearchLeasesQuery{Status: []string{"expired"}}},
		{"malformed date", transport.SearchLeasesQuery{StartDateFrom: "01-01-2024"}},
		{"inverted start range", transport.SearchLeasesQuery{StartDateFrom: "2025-01-01", StartDateTo: "2024-01-01"}},
		{"inverted end range", transport.SearchLeasesQuery{EndDateFrom: "2025-01-01", EndDateTo: "2024-01-01"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := toFilter(tc.query)
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestToFilterMapsAllParameters(t *testing.T) {
	query := transport.SearchLeasesQuery{
		Q:               "Storgatan",
		ObjectType:      []string{"STD"},
		Status:          []string{"current", "upcoming"},
		StartDateFrom:   "2024-01-01",
		EndDateTo:       "2030-12-31",
		Property:        []string{"Fastighet A"},
		BuildingCodes:   []string{"B1"},
		AreaCodes:       []string{"01"},
		DistrictNames:   []string{"Centrum"},
		BuildingManager: []string{"Lena Berg"},
		SortBy:          "startDate",
		SortOrder:       "desc",
	}

	filter, err := toFilter(query)
	if err != nil {
		t.Fatalf("toFilter: %v", err)
	}
	if filter.Query != "Storgatan" || len(filter.Statuses) != 2 {
		t.Errorf("unexpected filter: %+v", filter)
	}
	if filter.StartDateFrom == nil || filter.StartDateFrom.Format(dateLayout) != "2024-01-01" {
		t.Errorf("start date lost: %v", filter.StartDateFrom)
	}
	if filter.SortBy != "startDate" || filter.SortOrder != "desc" {
		t.Errorf("sort parameters lost: %+v", filter)
	}
	if len(filter.Properties) != 1 || len(filter.BuildingManagers) != 1 {
		t.Errorf("grouping filters lost: %+v", filter)
	}
}

func TestBuildLinksBoundaries(t *testing.T) {
	svc := newTestService()
	query := transport.SearchLeasesQuery{Status: []string{"current"}}

	// 45 records at limit 20: pages 1..3.
	first := svc.buildLinks(query, 1, 20, 45)
	if first.Previous != nil {
		t.Errorf("first page should have no previous link: %v", *first.Previous)
	}
	if first.Next == nil {
		t.Fatalf("first page of three should have a next link")
	}
	if !strings.Contains(*first.Next, "page=2") {
		t.Errorf("next link should target page 2: %s", *first.Next)
	}

	last := svc.buildLinks(query, 3, 20, 45)
	if last.Next != nil {
		t.Errorf("last page should have no next link: %v", *last.Next)
	}
	if last.Previous == nil || !strings.Contains(*last.Previous, "page=2") {
		t.Errorf("unexpected previous link: %v", last.Previous)
	}
	if !strings.Contains(last.Last, "page=3") {
		t.Errorf("last link should target page 3: %s", last.Last)
	}

	empty := svc.buildLinks(query, 1, 20, 0)
	if empty.Previous != nil || empty.Next != nil {
		t.Errorf("empty result should have neither direction: %+v", empty)
	}
	if !strings.Contains(empty.Last, "page=1") {
		t.Errorf("empty result last link should target page 1: %s", empty.Last)
	}
}

func TestPageURLPreservesFilters(t *testing.T) {
	svc := newTestService()
	query := transport.SearchLeasesQuery{
		Q:          "Storgatan",
		Status:     []string{"current", "aboutToEnd"},
		Property:   []string{"Fastighet A"},
		SortBy:     "startDate",
		SortOrder:  "desc",
		ObjectType: []string{"STD", "GAR"},
	}

	raw := svc.pageURL(query, 2, 25)
	if !strings.HasPrefix(raw, "/api/v1/leases?") {
		t.Fatalf("unexpected link prefix: %s", raw)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	values := parsed.Query()

	if values.Get("q") != "Storgatan" {
		t.Errorf("free text lost: %s", raw)
	}
	if got := values["status"]; len(got) != 2 || got[1] != "aboutToEnd" {
		t.Errorf("repeated status values lost: %v", got)
	}
	if got := values["objectType"]; len(got) != 2 {
		t.Errorf("repeated object types lost: %v", got)
	}
	if values.Get("property") != "Fastighet A" {
		t.Errorf("property filter lost: %s", raw)
	}
	if values.Get("page") != "2" || values.Get("limit") != "25" {
		t.Errorf("paging parameters wrong: %s", raw)
	}
	if values.Get("sortBy") != "startDate" || values.Get("sortOrder") != "desc" {
		t.Errorf("sort parameters lost: %s", raw)
	}
	if values.Has("startDateFrom") {
		t.Errorf("absent parameters should not appear: %s", raw)
	}
}
