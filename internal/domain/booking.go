package domain

// PassengerDetails is the mutable draft collected during the first booking
// step. It is seeded from the client profile and submitted once per flow.
type PassengerDetails struct {
	Name           string
	PassportNumber string
	Phone          string
}

// Complete reports whether every required passenger field is filled in.
func (d PassengerDetails) Complete() bool {
	return d.Name != "" && d.PassportNumber != "" && d.Phone != ""
}

// BookingRequest is the only payload ever transmitted to create a
// reservation. Payment input is simulated locally and must never appear
// here.
type BookingRequest struct {
	TourID int64 `json:"tourId"`
}

// Booking is a created reservation as returned by the backend.
type Booking struct {
	ID   int64 `json:"id"`
	Tour Tour  `json:"tour"`
}
