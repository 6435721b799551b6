package entity

// PropertyFilter is a domain-level filter for querying listings.
// Used by repository layer to avoid coupling with delivery DTOs.
type PropertyFilter struct {
	City          string // Filter by city (ILIKE)
	PropertyType  string
	MinBedrooms   int
	MaxRent       string // Decimal string, "" means unbounded
	AvailableOnly bool
}
