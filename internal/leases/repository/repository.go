package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// Repository executes composed lease queries against the legacy store. It is
// a pure read path: leases and contacts are projections, never mutated here.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Filter is the immutable set of optional search parameters for one request.
// A zero value matches every lease.
type Filter struct {
	Query            string
	ObjectTypes      []string
	Statuses         []Status
	StartDateFrom    *time.Time
	StartDateTo      *time.Time
	EndDateFrom      *time.Time
	EndDateTo        *time.Time
	Properties       []string
	BuildingCodes    []string
	AreaCodes        []string
	DistrictNames    []string
	BuildingManagers []string
	SortBy           string
	SortOrder        string
}

// PredicateCount reports how many filter categories are active, for logging.
func (f Filter) PredicateCount() int {
	count := 0
	if f.Query != "" {
		count++
	}
	for _, present := range []bool{
		len(f.ObjectTypes) > 0,
		len(f.Statuses) > 0,
		f.StartDateFrom != nil || f.StartDateTo != nil,
		f.EndDateFrom != nil || f.EndDateTo != nil,
		len(f.Properties) > 0,
		len(f.BuildingCodes) > 0,
		len(f.AreaCodes) > 0,
		len(f.DistrictNames) > 0,
		len(f.BuildingManagers) > 0,
	} {
		if present {
			count++
		}
	}
	return count
}

// applyFilters runs every filter method against a fresh composer. Search,
// count and export all go through this one sequence, which is what guarantees
// they agree on the matching row set.
func applyFilters(f Filter, today time.Time) *composer {
	c := newComposer()
	c.applyFreeText(f.Query)
	c.applyObjectTypes(f.ObjectTypes)
	c.applyStatuses(f.Statuses, today)
	c.applyStartDateRange(f.StartDateFrom, f.StartDateTo)
	c.applyEndDateRange(f.EndDateFrom, f.EndDateTo)
	c.applyProperties(f.Properties)
	c.applyBuildings(f.BuildingCodes)
	c.applyAreas(f.AreaCodes)
	c.applyDistricts(f.DistrictNames)
	c.applyManagers(f.BuildingManagers)
	return c
}

// LeaseRow is one raw result row. Core fields are always populated; optional
// group fields are meaningful only when Groups marks their group present.
type LeaseRow struct {
	Key            int64
	LeaseCode      string
	StartDate      time.Time
	LastDebitDate  *time.Time
	ObjectTypeCode string
	LeaseType      *string
	Street         *string
	PostalCode     *string
	City           *string

	Groups          GroupSet
	BuildingCode    *string
	BuildingManager *string
	Property        *string
	AreaCode        *string
	DistrictName    *string
}

// HasRentalUnit reports whether the rental-unit column group was projected.
func (l LeaseRow) HasRentalUnit() bool { return l.Groups.RentalUnit }

// HasProperty reports whether the property column was projected.
func (l LeaseRow) HasProperty() bool { return l.Groups.Property }

// HasArea reports whether the area column was projected.
func (l LeaseRow) HasArea() bool { return l.Groups.Area }

// HasDistrict reports whether the district column was projected.
func (l LeaseRow) HasDistrict() bool { return l.Groups.District }

// JoinCount reports how many joins the filter set produces, for logging.
func (r *Repository) JoinCount(f Filter, today time.Time) int {
	return len(applyFilters(f, today).joins)
}

// Search runs the paged query and the total count concurrently; both are
// rendered from the same composer state.
func (r *Repository) Search(ctx context.Context, f Filter, today time.Time, limit, offset int) ([]LeaseRow, int, error) {
	c := applyFilters(f, today)
	groups := c.groups()

	pageQuery, pageArgs := c.buildSearch(f.SortBy, f.SortOrder, limit, offset)
	countQuery, countArgs := c.buildCount()

	var (
		leases []LeaseRow
		total  int
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		rows, err := r.pool.Query(groupCtx, pageQuery, pageArgs...)
		if err != nil {
			return err
		}
		leases, err = scanLeaseRows(rows, groups)
		return err
	})
	group.Go(func() error {
		return r.pool.QueryRow(groupCtx, countQuery, countArgs...).Scan(&total)
	})
	if err := group.Wait(); err != nil {
		return nil, 0, err
	}

	return leases, total, nil
}

// Export runs the unpaged query for the same filter set.
func (r *Repository) Export(ctx context.Context, f Filter, today time.Time) ([]LeaseRow, error) {
	c := applyFilters(f, today)
	groups := c.groups()

	query, args := c.buildExport(f.SortBy, f.SortOrder)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanLeaseRows(rows, groups)
}

// scanLeaseRows scans a result set whose column list was produced by
// selectColumns for the same group set: core columns first, then the active
// optional groups in their canonical order.
func scanLeaseRows(rows pgx.Rows, groups GroupSet) ([]LeaseRow, error) {
	defer rows.Close()

	leases := make([]LeaseRow, 0)
	for rows.Next() {
		lease := LeaseRow{Groups: groups}

		dest := []interface{}{
			&lease.Key,
			&lease.LeaseCode,
			&lease.StartDate,
			&lease.LastDebitDate,
			&lease.ObjectTypeCode,
			&lease.LeaseType,
			&lease.Street,
			&lease.PostalCode,
			&lease.City,
		}
		if groups.RentalUnit {
			dest = append(dest, &lease.BuildingCode, &lease.BuildingManager)
		}
		if groups.Property {
			dest = append(dest, &lease.Property)
		}
		if groups.Area {
			dest = append(dest, &lease.AreaCode)
		}
		if groups.District {
			dest = append(dest, &lease.DistrictName)
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		leases = append(leases, lease)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return leases, nil
}

// Ping checks store connectivity for readiness probes.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
