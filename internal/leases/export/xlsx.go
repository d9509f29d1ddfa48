// Package export serializes lease projections into a binary spreadsheet.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"lease_portal_backend/internal/leases/transport"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Leases"

var headers = []string{
	"Lease code",
	"Start date",
	"Last debit date",
	"Object type",
	"Lease type",
	"Street",
	"Postal code",
	"City",
	"Status",
	"Building",
	"Building manager",
	"Property",
	"Area",
	"District",
	"Contacts",
	"Contact emails",
	"Contact phones",
}

// WriteWorkbook renders one row per lease. Multi-contact fields are
// semicolon-joined; absent grouped fields render as empty cells.
func WriteWorkbook(leases []transport.LeaseResponse) (*bytes.Buffer, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	if err := file.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return nil, err
	}

	for i, lease := range leases {
		row := []interface{}{
			lease.LeaseCode,
			lease.StartDate,
			derefOrEmpty(lease.LastDebitDate),
			lease.ObjectType,
			derefOrEmpty(lease.LeaseType),
			addressPart(lease, func(a *transport.AddressResponse) *string { return a.Street }),
			addressPart(lease, func(a *transport.AddressResponse) *string { return a.PostalCode }),
			addressPart(lease, func(a *transport.AddressResponse) *string { return a.City }),
			lease.Status,
			optionalCell(lease.BuildingCode),
			optionalCell(lease.BuildingManager),
			optionalCell(lease.Property),
			optionalCell(lease.Area),
			optionalCell(lease.DistrictName),
			joinContacts(lease.Contacts, func(c transport.ContactResponse) string { return c.Name }),
			joinContacts(lease.Contacts, func(c transport.ContactResponse) string { return derefOrEmpty(c.Email) }),
			joinContacts(lease.Contacts, func(c transport.ContactResponse) string { return derefOrEmpty(c.Phone) }),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := file.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	buffer, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer, nil
}

func derefOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func addressPart(lease transport.LeaseResponse, pick func(*transport.AddressResponse) *string) string {
	if lease.Address == nil {
		return ""
	}
	return derefOrEmpty(pick(lease.Address))
}

func optionalCell(value transport.OptionalString) string {
	if !value.Set {
		return ""
	}
	return derefOrEmpty(value.Value)
}

func joinContacts(contacts []transport.ContactResponse, pick func(transport.ContactResponse) string) string {
	parts := make([]string, 0, len(contacts))
	for _, contact := range contacts {
		parts = append(parts, pick(contact))
	}
	return strings.Join(parts, "; ")
}
