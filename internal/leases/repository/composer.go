package repository

import (
	"fmt"
	"strings"
	"time"
)

// The legacy store is a highly normalized schema keyed by internal numeric
// identifiers. The composer bridges the public filter vocabulary to that join
// graph: every filter method is a no-op on empty input, safe in any call
// order, and joins are deduplicated through an explicit registry so the final
// join, predicate and column sets are identical regardless of filter order.

// joinName identifies one joinable table on an in-flight query.
type joinName string

const (
	joinLeaseType    joinName = "leaseType"    // hyavt
	joinRentalObject joinName = "rentalObject" // hyobj
	joinAddress      joinName = "address"      // cmadr
	joinRentalUnit   joinName = "rentalUnit"   // babuf
	joinProperty     joinName = "property"     // bafst
	joinArea         joinName = "area"         // baomr
	joinDistrict     joinName = "district"     // badst
)

// joinPrereq maps each join to the join it depends on. The chain is walked
// transitively by ensureJoin, and walked exactly once no matter how many
// filters request the same table.
var joinPrereq = map[joinName]joinName{
	joinAddress:    joinRentalObject,
	joinRentalUnit: joinRentalObject,
	joinProperty:   joinRentalUnit,
	joinArea:       joinProperty,
	joinDistrict:   joinArea,
}

var joinClause = map[joinName]string{
	joinLeaseType:    "LEFT JOIN hyavt t ON t.keyhyavt = h.keyhyavt",
	joinRentalObject: "JOIN hyobj o ON o.keyhyobj = h.keyhyobj",
	joinAddress:      "LEFT JOIN cmadr a ON a.keycmobj = o.keycmobj",
	joinRentalUnit:   "LEFT JOIN babuf u ON u.keybabuf = o.keybabuf",
	joinProperty:     "LEFT JOIN bafst p ON p.keybafst = u.keybafst",
	joinArea:         "LEFT JOIN baomr r ON r.keybaomr = p.keybaomr",
	joinDistrict:     "LEFT JOIN badst d ON d.keybadst = r.keybadst",
}

// canonicalJoinOrder fixes the emission order of join clauses so the rendered
// SQL does not depend on which filter happened to request a join first.
var canonicalJoinOrder = []joinName{
	joinLeaseType,
	joinRentalObject,
	joinAddress,
	joinRentalUnit,
	joinProperty,
	joinArea,
	joinDistrict,
}

// predicate is one conjunctive WHERE term. Placeholders are written as `?`
// and renumbered to positional `$n` only when the query is rendered, which
// keeps predicates comparable as plain values independent of apply order.
type predicate struct {
	expr string
	args []interface{}
}

// composer accumulates joins, predicates and selectable column groups for a
// single request. One composer is built per request and discarded.
type composer struct {
	joins map[joinName]bool
	preds []predicate
}

func newComposer() *composer {
	c := &composer{joins: make(map[joinName]bool)}
	// Core projection columns: lease type caption, object type code and the
	// (nullable) address are always part of the output shape.
	c.ensureJoin(joinLeaseType)
	c.ensureJoin(joinRentalObject)
	c.ensureJoin(joinAddress)
	return c
}

// ensureJoin registers a join and, transitively, its prerequisite chain.
// Calling it again for a present join leaves the query unchanged.
func (c *composer) ensureJoin(name joinName) {
	if c.joins[name] {
		return
	}
	if prereq, ok := joinPrereq[name]; ok {
		c.ensureJoin(prereq)
	}
	c.joins[name] = true
}

func (c *composer) addPredicate(expr string, args ...interface{}) {
	c.preds = append(c.preds, predicate{expr: expr, args: args})
}

// ---------------------------------------------------------------------------
// Filter methods. Each is a no-op on absent input.
// ---------------------------------------------------------------------------

// applyFreeText adds a case-insensitive substring match over a column subset
// chosen from the shape of the input: digit-heavy strings search code and
// phone columns, alphabetic strings search name and address columns. Contact
// columns are matched through an EXISTS sub-query so a multi-tenant lease is
// never duplicated in the result set.
func (c *composer) applyFreeText(q string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return
	}
	pattern := "%" + q + "%"

	if isDigitHeavy(q) {
		c.addPredicate(
			`(h.hyavkben ILIKE ? OR o.hyobjben ILIKE ? OR EXISTS (
				SELECT 1 FROM hyctc hc
				JOIN cmctc cc ON cc.keycmctc = hc.keycmctc
				WHERE hc.keyhyavk = h.keyhyavk AND (cc.cmctcben ILIKE ? OR EXISTS (
					SELECT 1 FROM cmtel te WHERE te.keycmobj = cc.keycmobj AND te.cmtelben ILIKE ?
				))
			))`,
			pattern, pattern, pattern, pattern,
		)
		return
	}

	c.addPredicate(
		`(a.adress ILIKE ? OR a.ort ILIKE ? OR EXISTS (
			SELECT 1 FROM hyctc hc
			JOIN cmctc cc ON cc.keycmctc = hc.keycmctc
			WHERE hc.keyhyavk = h.keyhyavk AND (cc.fnamn ILIKE ? OR cc.enamn ILIKE ?)
		))`,
		pattern, pattern, pattern, pattern,
	)
}

// isDigitHeavy reports whether at least half of the significant characters
// are digits. Lease codes, object codes and phone numbers are digit-heavy;
// tenant and street names are not.
func isDigitHeavy(s string) bool {
	digits, letters := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '/':
			// separators common to both shapes carry no signal
		default:
			letters++
		}
	}
	return digits >= letters && digits > 0
}

func (c *composer) applyObjectTypes(codes []string) {
	if len(codes) == 0 {
		return
	}
	c.addPredicate("o.hyobjtyp = ANY(?)", codes)
}

// applyStatuses adds the OR-combination of the requested status predicates.
// The predicates come from the same Status values used to classify output
// rows, keeping SQL filtering and in-memory classification in agreement.
func (c *composer) applyStatuses(statuses []Status, today time.Time) {
	if len(statuses) == 0 {
		return
	}

	exprs := make([]string, 0, len(statuses))
	var args []interface{}
	for _, status := range statuses {
		p := status.predicate(today)
		exprs = append(exprs, "("+p.expr+")")
		args = append(args, p.args...)
	}
	c.addPredicate("("+strings.Join(exprs, " OR ")+")", args...)
}

func (c *composer) applyStartDateRange(from, to *time.Time) {
	if from != nil {
		c.addPredicate("h.avtbeg >= ?", *from)
	}
	if to != nil {
		c.addPredicate("h.avtbeg <= ?", *to)
	}
}

func (c *composer) applyEndDateRange(from, to *time.Time) {
	if from != nil {
		c.addPredicate("h.sistadeb >= ?", *from)
	}
	if to != nil {
		c.addPredicate("h.sistadeb <= ?", *to)
	}
}

func (c *composer) applyProperties(designations []string) {
	if len(designations) == 0 {
		return
	}
	c.ensureJoin(joinProperty)
	c.addPredicate("p.bafstben = ANY(?)", designations)
}

func (c *composer) applyBuildings(codes []string) {
	if len(codes) == 0 {
		return
	}
	c.ensureJoin(joinRentalUnit)
	c.addPredicate("u.babufben = ANY(?)", codes)
}

func (c *composer) applyAreas(codes []string) {
	if len(codes) == 0 {
		return
	}
	c.ensureJoin(joinArea)
	c.addPredicate("r.baomrkod = ANY(?)", codes)
}

func (c *composer) applyDistricts(names []string) {
	if len(names) == 0 {
		return
	}
	c.ensureJoin(joinDistrict)
	c.addPredicate("d.badstben = ANY(?)", names)
}

func (c *composer) applyManagers(managers []string) {
	if len(managers) == 0 {
		return
	}
	c.ensureJoin(joinRentalUnit)
	c.addPredicate("u.fvaltare = ANY(?)", managers)
}

// ---------------------------------------------------------------------------
// Select composition. Runs only after all filters have been applied: an
// optional column group is projected exactly when some filter added its join.
// ---------------------------------------------------------------------------

var coreColumns = []string{
	"h.keyhyavk",
	"h.hyavkben",
	"h.avtbeg",
	"h.sistadeb",
	"o.hyobjtyp",
	"t.hyavtben",
	"a.adress",
	"a.postnr",
	"a.ort",
}

// optionalGroup ties a join to the columns it makes projectable.
type optionalGroup struct {
	join    joinName
	columns []string
}

// canonical order again, so column position never depends on filter order.
var optionalGroups = []optionalGroup{
	{joinRentalUnit, []string{"u.babufben", "u.fvaltare"}},
	{joinProperty, []string{"p.bafstben"}},
	{joinArea, []string{"r.baomrkod"}},
	{joinDistrict, []string{"d.badstben"}},
}

// GroupSet records which optional column groups are present on a built query.
// Scanning and output shaping both key off it.
type GroupSet struct {
	RentalUnit bool
	Property   bool
	Area       bool
	District   bool
}

func (c *composer) groups() GroupSet {
	return GroupSet{
		RentalUnit: c.joins[joinRentalUnit],
		Property:   c.joins[joinProperty],
		Area:       c.joins[joinArea],
		District:   c.joins[joinDistrict],
	}
}

func (c *composer) selectColumns() []string {
	columns := append([]string{}, coreColumns...)
	for _, group := range optionalGroups {
		if c.joins[group.join] {
			columns = append(columns, group.columns...)
		}
	}
	return columns
}

func (c *composer) joinSQL() string {
	var clauses []string
	for _, name := range canonicalJoinOrder {
		if c.joins[name] {
			clauses = append(clauses, joinClause[name])
		}
	}
	return strings.Join(clauses, "\n\t\t")
}

// whereSQL renders the conjunctive predicates, renumbering `?` placeholders
// to sequential positional parameters starting at startIdx.
func (c *composer) whereSQL(startIdx int) (string, []interface{}, int) {
	if len(c.preds) == 0 {
		return "1 = 1", nil, startIdx
	}

	var (
		terms []string
		args  []interface{}
		idx   = startIdx
	)
	for _, p := range c.preds {
		expr := p.expr
		for range p.args {
			expr = strings.Replace(expr, "?", fmt.Sprintf("$%d", idx), 1)
			idx++
		}
		terms = append(terms, expr)
		args = append(args, p.args...)
	}
	return strings.Join(terms, " AND "), args, idx
}

// ---------------------------------------------------------------------------
// Query rendering
// ---------------------------------------------------------------------------

// mapSortColumn is the fixed allow-list from public sort keys to physical
// columns. Unrecognized keys fall back to the lease code, never to raw input.
func mapSortColumn(sortBy string) string {
	switch sortBy {
	case "leaseCode":
		return "h.hyavkben"
	case "startDate":
		return "h.avtbeg"
	case "lastDebitDate":
		return "h.sistadeb"
	case "objectType":
		return "o.hyobjtyp"
	case "leaseType":
		return "t.hyavtben"
	case "address":
		return "a.adress"
	default:
		return "h.hyavkben"
	}
}

func orderSQL(sortBy, sortOrder string) string {
	direction := "ASC"
	if sortOrder == "desc" {
		direction = "DESC"
	}
	column := mapSortColumn(sortBy)
	if column == "h.hyavkben" {
		return column + " " + direction
	}
	// Non-unique columns get the lease code as a tiebreaker so paging over
	// tied rows stays deterministic across requests.
	return column + " " + direction + ", h.hyavkben ASC"
}

// buildSearch renders the paged search query.
func (c *composer) buildSearch(sortBy, sortOrder string, limit, offset int) (string, []interface{}) {
	where, args, idx := c.whereSQL(1)
	query := fmt.Sprintf(`
		SELECT %s
		FROM hyavk h
		%s
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, strings.Join(c.selectColumns(), ", "), c.joinSQL(), where, orderSQL(sortBy, sortOrder), idx, idx+1)
	return query, append(args, limit, offset)
}

// buildCount renders the COUNT query reusing all WHERE/JOIN state while
// discarding ORDER BY and LIMIT.
func (c *composer) buildCount() (string, []interface{}) {
	where, args, _ := c.whereSQL(1)
	query := fmt.Sprintf(`
		SELECT COUNT(h.keyhyavk)
		FROM hyavk h
		%s
		WHERE %s
	`, c.joinSQL(), where)
	return query, args
}

// buildExport renders the unpaged query for export; search and export share
// the same filter application, so they always agree on which rows match.
func (c *composer) buildExport(sortBy, sortOrder string) (string, []interface{}) {
	where, args, _ := c.whereSQL(1)
	query := fmt.Sprintf(`
		SELECT %s
		FROM hyavk h
		%s
		WHERE %s
		ORDER BY %s
	`, strings.Join(c.selectColumns(), ", "), c.joinSQL(), where, orderSQL(sortBy, sortOrder))
	return query, args
}
