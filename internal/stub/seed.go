package stub

import "github.com/eIIka/tour-agency/internal/domain"

func (s *Server) addAccountLocked(email, password, name string, role domain.Role) *account {
	s.nextUserID++
	acct := &account{
		id:       s.nextUserID,
		email:    email,
		password: password,
		name:     name,
		role:     role,
	}
	switch role {
	case domain.RoleClient:
		s.nextProfileID++
		acct.client = &domain.ClientProfile{ID: s.nextProfileID, Name: name, Email: email}
	case domain.RoleGuide:
		s.nextProfileID++
		acct.guide = &domain.GuideProfile{ID: s.nextProfileID, Name: name, Email: email}
	}
	s.accounts[email] = acct
	return acct
}

// AddAccount registers an account directly, bypassing the HTTP surface.
// Returns the profile id (client or guide), zero for admins.
func (s *Server) AddAccount(email, password, name string, role domain.Role) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.addAccountLocked(email, password, name, role)
	switch {
	case acct.client != nil:
		return acct.client.ID
	case acct.guide != nil:
		return acct.guide.ID
	}
	return 0
}

// SetClientDetails fills the stored passport and phone for a client
// account, as the real backend would after profile editing.
func (s *Server) SetClientDetails(email, passportNumber, phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct := s.accounts[email]; acct != nil && acct.client != nil {
		acct.client.PassportNumber = passportNumber
		acct.client.Phone = phone
	}
}

// AddTour registers a tour. maxSeats of zero means unlimited.
func (s *Server) AddTour(t domain.Tour, maxSeats int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tours[t.ID] = &tour{Tour: t, MaxSeats: maxSeats}
}

// SeedDemoData loads a small fixture set for local development.
func (s *Server) SeedDemoData() {
	guideID := s.AddAccount("vlad@tour.agency", "guide123", "Vlad", domain.RoleGuide)
	s.AddAccount("admin@tour.agency", "admin123", "Admin", domain.RoleAdmin)
	s.AddAccount("anna@example.com", "client123", "Anna Rossi", domain.RoleClient)
	s.SetClientDetails("anna@example.com", "P123", "+1234567")

	s.AddTour(domain.Tour{
		ID: 1, Name: "Italian Riviera", Price: 1200,
		StartDate: "2026-09-10", EndDate: "2026-09-17",
		CountryName: "Italy", GuideID: guideID, GuideName: "Vlad",
	}, 10)
	s.AddTour(domain.Tour{
		ID: 2, Name: "Nile Cruise", Price: 950,
		StartDate: "2026-10-02", EndDate: "2026-10-09",
		CountryName: "Egypt", GuideID: guideID, GuideName: "Vlad",
	}, 1)
	s.AddTour(domain.Tour{
		ID: 3, Name: "Alpine Trek", Price: 800,
		StartDate: "2026-11-05", EndDate: "2026-11-12",
		CountryName: "Switzerland", GuideID: guideID, GuideName: "Vlad",
	}, 0)
}
