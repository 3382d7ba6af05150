package stub

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/eIIka/tour-agency/internal/domain"
)

type registerRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	Phone          string `json:"phone"`
	PassportNumber string `json:"passportNumber"`
	Language       string `json:"language"`
}

type accountResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role, ok := domain.ParseRole(req.Role)
	if !ok || role == domain.RoleAdmin {
		writeMessage(w, http.StatusBadRequest, "invalid role")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		writeMessage(w, http.StatusBadRequest, "email, password and name are required")
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[req.Email]; exists {
		s.mu.Unlock()
		writeMessage(w, http.StatusConflict, "Email already registered")
		return
	}
	acct := s.addAccountLocked(req.Email, req.Password, req.Name, role)
	switch role {
	case domain.RoleClient:
		acct.client.Phone = req.Phone
		acct.client.PassportNumber = req.PassportNumber
	case domain.RoleGuide:
		acct.guide.Language = req.Language
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, accountView(acct))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	acct := s.accounts[req.Email]
	s.mu.Unlock()
	if acct == nil || acct.password != req.Password {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := s.issueToken(acct)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  accountView(acct),
	})
}

func (s *Server) handleListTours(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")
	guide := r.URL.Query().Get("guide")
	maxPrice, _ := strconv.ParseFloat(r.URL.Query().Get("maxPrice"), 64)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Tour, 0, len(s.tours))
	for _, t := range s.tours {
		if country != "" && !strings.EqualFold(t.CountryName, country) {
			continue
		}
		if guide != "" && !strings.EqualFold(t.GuideName, guide) {
			continue
		}
		if maxPrice > 0 && t.Price > maxPrice {
			continue
		}
		out = append(out, t.Tour)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTour(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid tour id")
		return
	}

	s.mu.Lock()
	t, ok := s.tours[id]
	s.mu.Unlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "Tour not found")
		return
	}
	writeJSON(w, http.StatusOK, t.Tour)
}

func (s *Server) handleListToursByGuide(w http.ResponseWriter, r *http.Request) {
	guideID, err := strconv.ParseInt(chi.URLParam(r, "guideID"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid guide id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Tour, 0)
	for _, t := range s.tours {
		if t.GuideID == guideID {
			out = append(out, t.Tour)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCurrentClient(w http.ResponseWriter, r *http.Request) {
	acct := requester(r)
	if acct.client == nil {
		writeMessage(w, http.StatusNotFound, "No client profile for this account")
		return
	}
	writeJSON(w, http.StatusOK, acct.client)
}

func (s *Server) handleCurrentGuide(w http.ResponseWriter, r *http.Request) {
	acct := requester(r)
	if acct.guide == nil {
		writeMessage(w, http.StatusNotFound, "No guide profile for this account")
		return
	}
	writeJSON(w, http.StatusOK, acct.guide)
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	acct := requester(r)
	if acct.role != domain.RoleClient || acct.client == nil {
		writeMessage(w, http.StatusForbidden, "Only clients may book tours")
		return
	}

	var req domain.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tours[req.TourID]
	if !ok {
		writeMessage(w, http.StatusNotFound, "Tour not found")
		return
	}

	seats := 0
	for _, b := range s.bookings {
		if b.tourID == req.TourID {
			if b.clientID == acct.client.ID {
				writeMessage(w, http.StatusConflict, "Tour is already booked")
				return
			}
			seats++
		}
	}
	if t.MaxSeats > 0 && seats >= t.MaxSeats {
		writeMessage(w, http.StatusConflict, "Tour is fully booked")
		return
	}

	s.nextBookingID++
	s.bookings = append(s.bookings, storedBooking{
		id:       s.nextBookingID,
		clientID: acct.client.ID,
		tourID:   req.TourID,
	})

	writeJSON(w, http.StatusOK, domain.Booking{ID: s.nextBookingID, Tour: t.Tour})
}

func (s *Server) handleListClientBookings(w http.ResponseWriter, r *http.Request) {
	acct := requester(r)
	clientID, err := strconv.ParseInt(chi.URLParam(r, "clientID"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid client id")
		return
	}

	ownID := int64(0)
	if acct.client != nil {
		ownID = acct.client.ID
	}
	if acct.role != domain.RoleAdmin && clientID != ownID {
		writeMessage(w, http.StatusForbidden, "Cannot view another client's bookings")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Booking, 0)
	for _, b := range s.bookings {
		if b.clientID != clientID {
			continue
		}
		if t, ok := s.tours[b.tourID]; ok {
			out = append(out, domain.Booking{ID: b.id, Tour: t.Tour})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func accountView(acct *account) accountResponse {
	return accountResponse{
		ID:    acct.id,
		Email: acct.email,
		Name:  acct.name,
		Role:  string(acct.role),
	}
}
