package service

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"lease_portal_backend/internal/leases/repository"
)

func day(value string) time.Time {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(value string) *time.Time {
	t := day(value)
	return &t
}

func strPtr(value string) *string {
	return &value
}

func TestToLeaseResponseCoreFields(t *testing.T) {
	today := day("2026-08-26")
	row := repository.LeaseRow{
		Key:            1,
		LeaseCode:      "0101-0042-01",
		StartDate:      day("2024-03-01"),
		LastDebitDate:  dayPtr("2026-12-31"),
		ObjectTypeCode: "STD",
		LeaseType:      strPtr("Bostadskontrakt"),
		Street:         strPtr("Storgatan 12"),
		PostalCode:     strPtr("11122"),
		City:           strPtr("Stockholm"),
	}

	resp := toLeaseResponse(row, today, nil)

	if resp.LeaseCode != "0101-0042-01" || resp.StartDate != "2024-03-01" {
		t.Errorf("unexpected core fields: %+v", resp)
	}
	if resp.LastDebitDate == nil || *resp.LastDebitDate != "2026-12-31" {
		t.Errorf("unexpected last debit date: %v", resp.LastDebitDate)
	}
	if resp.Status != "aboutToEnd" {
		t.Errorf("expected aboutToEnd, got %q", resp.Status)
	}
	if resp.Address == nil || *resp.Address.Street != "Storgatan 12" {
		t.Errorf("unexpected address: %+v", resp.Address)
	}
	if resp.Contacts == nil || len(resp.Contacts) != 0 {
		t.Errorf("contacts should be an empty list, got %+v", resp.Contacts)
	}
}

func TestToLeaseResponseAddressNilWhenUnknown(t *testing.T) {
	row := repository.LeaseRow{
		LeaseCode:      "0101-0042-01",
		StartDate:      day("2024-03-01"),
		ObjectTypeCode: "STD",
	}

	resp := toLeaseResponse(row, day("2026-08-26"), nil)
	if resp.Address != nil {
		t.Errorf("address should be nil when no part is known, got %+v", resp.Address)
	}
	if resp.Status != "current" {
		t.Errorf("open-ended started lease should be current, got %q", resp.Status)
	}
}

// Grouped fields have three states: omitted when the group was never joined,
// null when joined but empty in the store, and a value otherwise.
func TestGroupedFieldJSONStates(t *testing.T) {
	today := day("2026-08-26")
	base := repository.LeaseRow{
		LeaseCode:      "0101-0042-01",
		StartDate:      day("2024-03-01"),
		ObjectTypeCode: "STD",
	}

	unjoined, err := json.Marshal(toLeaseResponse(base, today, nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(unjoined), `"property"`) {
		t.Errorf("unjoined group should be omitted entirely: %s", unjoined)
	}

	joined := base
	joined.Groups = repository.GroupSet{Property: true}
	withNull, err := json.Marshal(toLeaseResponse(joined, today, nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(withNull), `"property":null`) {
		t.Errorf("joined-but-empty group should be null: %s", withNull)
	}

	joined.Property = strPtr("Fastighet A")
	withValue, err := json.Marshal(toLeaseResponse(joined, today, nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(withValue), `"property":"Fastighet A"`) {
		t.Errorf("joined group with value should carry it: %s", withValue)
	}
	if strings.Contains(string(withValue), `"area"`) {
		t.Errorf("unrequested area group leaked into output: %s", withValue)
	}
}

// Three leases in Fastighet A, two current and one upcoming: a current-status
// search returns exactly the two current ones, each with a non-null property
// and no area key.
func TestPropertyScenarioShapesOutput(t *testing.T) {
	today := day("2026-08-26")
	propertyGroups := repository.GroupSet{RentalUnit: true, Property: true}

	rows := []repository.LeaseRow{
		{Key: 1, LeaseCode: "A-01", StartDate: day("2024-01-01"), ObjectTypeCode: "STD", Groups: propertyGroups, Property: strPtr("Fastighet A")},
		{Key: 2, LeaseCode: "A-02", StartDate: day("2025-06-01"), ObjectTypeCode: "STD", Groups: propertyGroups, Property: strPtr("Fastighet A")},
		{Key: 3, LeaseCode: "A-03", StartDate: day("2026-10-01"), ObjectTypeCode: "STD", Groups: propertyGroups, Property: strPtr("Fastighet A")},
	}

	var matched []repository.LeaseRow
	for _, row := range rows {
		if repository.StatusCurrent.Matches(row.StartDate, row.LastDebitDate, today) {
			matched = append(matched, row)
		}
	}
	if len(matched) != 2 {
		t.Fatalf("expected 2 current leases, got %d", len(matched))
	}

	for _, row := range matched {
		data, err := json.Marshal(toLeaseResponse(row, today, nil))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body := string(data)
		if !strings.Contains(body, `"status":"current"`) {
			t.Errorf("lease %s should be current: %s", row.LeaseCode, body)
		}
		if !strings.Contains(body, `"property":"Fastighet A"`) {
			t.Errorf("lease %s should carry its property: %s", row.LeaseCode, body)
		}
		if strings.Contains(body, `"area"`) {
			t.Errorf("lease %s should have no area key: %s", row.LeaseCode, body)
		}
	}
}

func TestToContactResponses(t *testing.T) {
	contacts := []repository.Contact{
		{ContactCode: "K-100", FullName: "Anna Lindqvist", Email: strPtr("anna@example.se")},
		{ContactCode: "K-101", FullName: "Erik Holm", Phone: strPtr("+46701234567")},
	}

	result := toContactResponses(contacts)
	if len(result) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(result))
	}
	if result[0].Name != "Anna Lindqvist" || result[0].Email == nil {
		t.Errorf("unexpected first contact: %+v", result[0])
	}
	if result[1].Phone == nil || *result[1].Phone != "+46701234567" {
		t.Errorf("unexpected second contact: %+v", result[1])
	}
	if result[0].Phone != nil || result[1].Email != nil {
		t.Errorf("missing channels should stay nil: %+v", result)
	}
}
