// Package stub is an in-memory implementation of the Tour Agency backend
// contract, used for local development and as the fake in gateway tests.
// It issues real signed tokens so the client's session decoder sees the
// same credential shape as in production.
package stub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/eIIka/tour-agency/internal/domain"
	"github.com/eIIka/tour-agency/pkg/logger"
)

type account struct {
	id       int64
	email    string
	password string
	name     string
	role     domain.Role
	client   *domain.ClientProfile
	guide    *domain.GuideProfile
}

type storedBooking struct {
	id       int64
	clientID int64
	tourID   int64
}

type tour struct {
	domain.Tour
	MaxSeats int
}

type Server struct {
	secret []byte
	ttl    time.Duration

	mu            sync.Mutex
	accounts      map[string]*account // keyed by email
	tours         map[int64]*tour
	bookings      []storedBooking
	nextUserID    int64
	nextProfileID int64
	nextBookingID int64
}

func NewServer(secret string, ttl time.Duration) *Server {
	return &Server{
		secret:   []byte(secret),
		ttl:      ttl,
		accounts: make(map[string]*account),
		tours:    make(map[int64]*tour),
	}
}

// Handler builds the backend surface under /v1, mirroring the real API's
// paths.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Get("/tour", s.handleListTours)
		r.Get("/tour/{id}", s.handleGetTour)
		r.Get("/tour/guide/id/{guideID}", s.handleListToursByGuide)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/client/me", s.handleCurrentClient)
			r.Get("/guide/me", s.handleCurrentGuide)
			r.Post("/booking", s.handleCreateBooking)
			r.Get("/booking/client/{clientID}", s.handleListClientBookings)
		})
	})
	return r
}

type ctxKey string

const ctxAccount ctxKey = "account"

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			writeMessage(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(strings.TrimPrefix(authz, "Bearer "), claims, func(*jwt.Token) (interface{}, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}

		email, _ := claims.GetSubject()
		s.mu.Lock()
		acct := s.accounts[email]
		s.mu.Unlock()
		if acct == nil {
			writeMessage(w, http.StatusUnauthorized, "unknown account")
			return
		}

		ctx := context.WithValue(r.Context(), ctxAccount, acct)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requester(r *http.Request) *account {
	acct, _ := r.Context().Value(ctxAccount).(*account)
	return acct
}

func (s *Server) issueToken(acct *account) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti":   fmt.Sprintf("%d", acct.id),
		"sub":   acct.email,
		"roles": []string{string(acct.role)},
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
