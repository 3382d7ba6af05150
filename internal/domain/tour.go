package domain

// Tour is read-only from the client's perspective; the backend owns it.
// Dates are kept as the backend's ISO date strings since the client only
// displays them.
type Tour struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
	CountryName string  `json:"countryName"`
	GuideID     int64   `json:"guideId"`
	GuideName   string  `json:"guideName"`
}
