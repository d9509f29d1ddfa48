package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"lease_portal_backend/internal/leases/repository"
	"lease_portal_backend/internal/leases/transport"
	"lease_portal_backend/platform/apperr"
	"lease_portal_backend/platform/config"
	"lease_portal_backend/platform/logger"
)

// Deadlines for the store round trips, so one slow bulk query cannot hold a
// request open indefinitely. Export walks the full register and gets more
// room.
const (
	searchTimeout = 30 * time.Second
	exportTimeout = 5 * time.Minute
)

// Service orchestrates lease search and export. One composed query per
// request; the page of results is enriched with batched contact resolution
// before the response is assembled.
type Service struct {
	repo *repository.Repository
	cfg  config.SearchConfig
	log  *logger.Logger

	// now is the reference-date source, replaceable in tests.
	now func() time.Time
}

func New(repo *repository.Repository, cfg config.SearchConfig, log *logger.Logger) *Service {
	return &Service{
		repo: repo,
		cfg:  cfg,
		log:  log,
		now:  time.Now,
	}
}

// Search executes a filtered, paged lease search.
func (s *Service) Search(ctx context.Context, query transport.SearchLeasesQuery) (transport.SearchLeasesResponse, error) {
	filter, err := toFilter(query)
	if err != nil {
		return transport.SearchLeasesResponse{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	page, limit := s.pageBounds(query)
	today := repository.DateOnly(s.now())
	started := time.Now()

	rows, total, err := s.repo.Search(ctx, filter, today, limit, (page-1)*limit)
	if err != nil {
		return transport.SearchLeasesResponse{}, apperr.Internal("lease search failed", err)
	}

	contacts, err := s.resolveContacts(ctx, rows)
	if err != nil {
		return transport.SearchLeasesResponse{}, err
	}

	content := make([]transport.LeaseResponse, 0, len(rows))
	for _, row := range rows {
		content = append(content, toLeaseResponse(row, today, contacts[row.Key]))
	}

	s.log.WithContext(ctx).LeaseSearch(
		filter.PredicateCount(),
		s.repo.JoinCount(filter, today),
		len(content),
		total,
		float64(time.Since(started).Milliseconds()),
	)

	return transport.SearchLeasesResponse{
		Content:      content,
		Page:         page,
		Limit:        limit,
		Count:        len(content),
		TotalRecords: total,
		Links:        s.buildLinks(query, page, limit, total),
	}, nil
}

// Export runs the identical filter sequence without pagination and returns
// every matching lease, contact-enriched, in sort order.
func (s *Service) Export(ctx context.Context, query transport.SearchLeasesQuery) ([]transport.LeaseResponse, error) {
	filter, err := toFilter(query)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	today := repository.DateOnly(s.now())
	started := time.Now()

	rows, err := s.repo.Export(ctx, filter, today)
	if err != nil {
		return nil, apperr.Internal("lease export failed", err)
	}

	contacts, err := s.resolveContacts(ctx, rows)
	if err != nil {
		return nil, err
	}

	content := make([]transport.LeaseResponse, 0, len(rows))
	for _, row := range rows {
		content = append(content, toLeaseResponse(row, today, contacts[row.Key]))
	}

	s.log.WithContext(ctx).LeaseExport(len(content), float64(time.Since(started).Milliseconds()))
	return content, nil
}

// Ping exposes store connectivity for the health endpoint.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *Service) resolveContacts(ctx context.Context, rows []repository.LeaseRow) (map[int64][]repository.Contact, error) {
	keys := make([]int64, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, row.Key)
	}

	contacts, err := s.repo.ResolveContacts(ctx, keys)
	if err != nil {
		// A failed bulk query fails the whole enrichment; partial tenant
		// data is a correctness-sensitive omission.
		return nil, apperr.Internal("contact resolution failed", err)
	}
	return contacts, nil
}

func (s *Service) pageBounds(query transport.SearchLeasesQuery) (int, int) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = s.cfg.GetDefaultPageSize()
	}
	if limit > s.cfg.GetMaxPageSize() {
		limit = s.cfg.GetMaxPageSize()
	}
	return page, limit
}

// toFilter converts the validated query DTO into the repository filter,
// rejecting values the validator cannot express (date ordering, enum parse).
func toFilter(query transport.SearchLeasesQuery) (repository.Filter, error) {
	filter := repository.Filter{
		Query:            query.Q,
		ObjectTypes:      query.ObjectType,
		Properties:       query.Property,
		BuildingCodes:    query.BuildingCodes,
		AreaCodes:        query.AreaCodes,
		DistrictNames:    query.DistrictNames,
		BuildingManagers: query.BuildingManager,
		SortBy:           query.SortBy,
		SortOrder:        query.SortOrder,
	}

	for _, raw := range query.Status {
		status, err := repository.ParseStatus(raw)
		if err != nil {
			return repository.Filter{}, apperr.Validation(err.Error())
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	var err error
	if filter.StartDateFrom, err = parseDate(query.StartDateFrom); err != nil {
		return repository.Filter{}, err
	}
	if filter.StartDateTo, err = parseDate(query.StartDateTo); err != nil {
		return repository.Filter{}, err
	}
	if filter.EndDateFrom, err = parseDate(query.EndDateFrom); err != nil {
		return repository.Filter{}, err
	}
	if filter.EndDateTo, err = parseDate(query.EndDateTo); err != nil {
		return repository.Filter{}, err
	}

	if filter.StartDateFrom != nil && filter.StartDateTo != nil && filter.StartDateTo.Before(*filter.StartDateFrom) {
		return repository.Filter{}, apperr.Validation("startDateTo precedes startDateFrom")
	}
	if filter.EndDateFrom != nil && filter.EndDateTo != nil && filter.EndDateTo.Before(*filter.EndDateFrom) {
		return repository.Filter{}, apperr.Validation("endDateTo precedes endDateFrom")
	}

	return filter, nil
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw))
	}
	return &parsed, nil
}

// buildLinks assembles the navigation links, preserving the full filter
// vocabulary of the originating request.
func (s *Service) buildLinks(query transport.SearchLeasesQuery, page, limit, total int) transport.NavigationLinks {
	lastPage := (total + limit - 1) / limit
	if lastPage < 1 {
		lastPage = 1
	}

	links := transport.NavigationLinks{
		First: s.pageURL(query, 1, limit),
		Last:  s.pageURL(query, lastPage, limit),
	}
	if page > 1 {
		previous := s.pageURL(query, page-1, limit)
		links.Previous = &previous
	}
	if page < lastPage {
		next := s.pageURL(query, page+1, limit)
		links.Next = &next
	}
	return links
}

func (s *Service) pageURL(query transport.SearchLeasesQuery, page, limit int) string {
	values := url.Values{}
	setIfPresent := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	addAll := func(key string, items []string) {
		for _, item := range items {
			values.Add(key, item)
		}
	}

	setIfPresent("q", query.Q)
	addAll("objectType", query.ObjectType)
	addAll("status", query.Status)
	setIfPresent("startDateFrom", query.StartDateFrom)
	setIfPresent("startDateTo", query.StartDateTo)
	setIfPresent("endDateFrom", query.EndDateFrom)
	setIfPresent("endDateTo", query.EndDateTo)
	addAll("property", query.Property)
	addAll("buildingCodes", query.BuildingCodes)
	addAll("areaCodes", query.AreaCodes)
	addAll("districtNames", query.DistrictNames)
	addAll("buildingManager", query.BuildingManager)
	setIfPresent("sortBy", query.SortBy)
	setIfPresent("sortOrder", query.SortOrder)
	values.Set("page", strconv.Itoa(page))
	values.Set("limit", strconv.Itoa(limit))

	return s.cfg.GetAPIBasePath() + "/leases?" + values.Encode()
}
