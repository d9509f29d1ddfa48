package transport

// Request DTOs

// SearchLeasesQuery is the validated query-string shape for lease search and
// export. Every parameter is optional; repeated keys bind to slices.
type SearchLeasesQuery struct {
	Q               string   `form:"q" validate:"omitempty,max=200"`
	ObjectType      []string `form:"objectType" validate:"omitempty,dive,min=1,max=10"`
	Status          []string `form:"status" validate:"omitempty,dive,oneof=current upcoming aboutToEnd ended"`
	StartDateFrom   string   `form:"startDateFrom" validate:"omitempty,datetime=2006-01-02"`
	StartDateTo     string   `form:"startDateTo" validate:"omitempty,datetime=2006-01-02"`
	EndDateFrom     string   `form:"endDateFrom" validate:"omitempty,datetime=2006-01-02"`
	EndDateTo       string   `form:"endDateTo" validate:"omitempty,datetime=2006-01-02"`
	Property        []string `form:"property" validate:"omitempty,dive,min=1,max=100"`
	BuildingCodes   []string `form:"buildingCodes" validate:"omitempty,dive,min=1,max=50"`
	AreaCodes       []string `form:"areaCodes" validate:"omitempty,dive,min=1,max=50"`
	DistrictNames   []string `form:"districtNames" validate:"omitempty,dive,min=1,max=100"`
	BuildingManager []string `form:"buildingManager" validate:"omitempty,dive,min=1,max=100"`
	Page            int      `form:"page" validate:"omitempty,min=1"`
	Limit           int      `form:"limit" validate:"omitempty,min=1"`
	SortBy          string   `form:"sortBy" validate:"omitempty,max=40"`
	SortOrder       string   `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// Response DTOs

type AddressResponse struct {
	Street     *string `json:"street"`
	PostalCode *string `json:"postalCode"`
	City       *string `json:"city"`
}

type ContactResponse struct {
	ContactCode string  `json:"contactCode"`
	Name        string  `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
}

// LeaseResponse is one lease projection. Core fields are always present;
// grouped fields appear only when the request filtered on their group, and
// are explicitly null when joined but empty in the store.
type LeaseResponse struct {
	LeaseCode       string            `json:"leaseCode"`
	StartDate       string            `json:"startDate"`
	LastDebitDate   *string           `json:"lastDebitDate"`
	ObjectType      string            `json:"objectType"`
	LeaseType       *string           `json:"leaseType"`
	Address         *AddressResponse  `json:"address"`
	Status          string            `json:"status"`
	BuildingCode    OptionalString    `json:"buildingCode,omitzero"`
	BuildingManager OptionalString    `json:"buildingManager,omitzero"`
	Property        OptionalString    `json:"property,omitzero"`
	Area            OptionalString    `json:"area,omitzero"`
	DistrictName    OptionalString    `json:"districtName,omitzero"`
	Contacts        []ContactResponse `json:"contacts"`
}

// NavigationLinks carry page navigation URLs; absent directions are null.
type NavigationLinks struct {
	First    string  `json:"first"`
	Previous *string `json:"previous"`
	Next     *string `json:"next"`
	Last     string  `json:"last"`
}

type SearchLeasesResponse struct {
	Content      []LeaseResponse `json:"content"`
	Page         int             `json:"page"`
	Limit        int             `json:"limit"`
	Count        int             `json:"count"`
	TotalRecords int             `json:"totalRecords"`
	Links        NavigationLinks `json:"links"`
}
