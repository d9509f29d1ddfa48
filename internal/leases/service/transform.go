package service

import (
	"time"

	"lease_portal_backend/internal/leases/repository"
	"lease_portal_backend/internal/leases/transport"
)

const dateLayout = "2006-01-02"

// toLeaseResponse maps a raw row into the public projection. The derived
// status uses the same reference date the SQL predicates were built with, so
// a filtered search can never return a lease whose attached status disagrees
// with the filter.
func toLeaseResponse(row repository.LeaseRow, today time.Time, contacts []repository.Contact) transport.LeaseResponse {
	resp := transport.LeaseResponse{
		LeaseCode:  row.LeaseCode,
		StartDate:  row.StartDate.Format(dateLayout),
		ObjectType: row.ObjectTypeCode,
		LeaseType:  row.LeaseType,
		Status:     string(repository.Classify(row.StartDate, row.LastDebitDate, today)),
		Contacts:   toContactResponses(contacts),
	}

	if row.LastDebitDate != nil {
		formatted := row.LastDebitDate.Format(dateLayout)
		resp.LastDebitDate = &formatted
	}

	if row.Street != nil || row.PostalCode != nil || row.City != nil {
		resp.Address = &transport.AddressResponse{
			Street:     row.Street,
			PostalCode: row.PostalCode,
			City:       row.City,
		}
	}

	// Grouped fields: set only when the group's join was added by a filter,
	// null when joined but empty in the store, omitted entirely otherwise.
	if row.HasRentalUnit() {
		resp.BuildingCode = transport.Some(row.BuildingCode)
		resp.BuildingManager = transport.Some(row.BuildingManager)
	}
	if row.HasProperty() {
		resp.Property = transport.Some(row.Property)
	}
	if row.HasArea() {
		resp.Area = transport.Some(row.AreaCode)
	}
	if row.HasDistrict() {
		resp.DistrictName = transport.Some(row.DistrictName)
	}

	return resp
}

func toContactResponses(contacts []repository.Contact) []transport.ContactResponse {
	result := make([]transport.ContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		result = append(result, transport.ContactResponse{
			ContactCode: contact.ContactCode,
			Name:        contact.FullName,
			Email:       contact.Email,
			Phone:       contact.Phone,
		})
	}
	return result
}
