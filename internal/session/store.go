package session

import (
	"errors"
	"sync"
	"time"

	"github.com/eIIka/tour-agency/internal/auth"
	"github.com/eIIka/tour-agency/internal/domain"
	"github.com/eIIka/tour-agency/pkg/logger"
)

// Subscriber is invoked after the session changes. The identity passed is
// the new current one (anonymous after logout or detected expiry).
type Subscriber func(domain.Identity)

// Store holds the current identity together with the persisted credential.
// There is exactly one writer at a time; readers never observe an identity
// that disagrees with the persisted slot.
type Store struct {
	mu         sync.Mutex
	creds      CredentialStore
	credential string
	identity   domain.Identity
	subs       []Subscriber
	now        func() time.Time
}

// New restores the session from the credential slot. A malformed or
// expired credential is discarded and the session starts anonymous; only a
// failing slot itself is an error.
func New(creds CredentialStore) (*Store, error) {
	s := &Store{
		creds: creds,
		now:   time.Now,
	}

	credential, err := creds.Load()
	if err != nil {
		return nil, err
	}
	if credential == "" {
		return s, nil
	}

	identity, err := auth.Decode(credential, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredential) || errors.Is(err, domain.ErrCredentialExpired) {
			logger.Warn("discarding stored credential", "reason", err)
			if clearErr := creds.Clear(); clearErr != nil {
				return nil, clearErr
			}
			return s, nil
		}
		return nil, err
	}

	s.credential = credential
	s.identity = identity
	return s, nil
}

// Login persists the credential and installs the identity. The slot is
// written first so a persistence failure leaves the session unchanged.
func (s *Store) Login(credential string, identity domain.Identity) error {
	s.mu.Lock()
	if err := s.creds.Save(credential); err != nil {
		s.mu.Unlock()
		return err
	}
	s.credential = credential
	s.identity = identity
	subs := s.subscribers()
	s.mu.Unlock()

	logger.Info("session established", "user", identity.Subject, "role", identity.Role)
	notify(subs, identity)
	return nil
}

// Logout clears the slot and drops the identity.
func (s *Store) Logout() error {
	s.mu.Lock()
	if err := s.creds.Clear(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.credential = ""
	s.identity = domain.Anonymous()
	subs := s.subscribers()
	s.mu.Unlock()

	logger.Info("session cleared")
	notify(subs, domain.Anonymous())
	return nil
}

// Current returns the identity, or anonymous when there is none. Expiry is
// detected lazily here: a credential that ran out since the last call is
// discarded exactly as at startup.
func (s *Store) Current() domain.Identity {
	s.mu.Lock()
	if s.identity.IsAnonymous() || !s.identity.ExpiredAt(s.now()) {
		identity := s.identity
		s.mu.Unlock()
		return identity
	}

	logger.Warn("session expired", "user", s.identity.Subject)
	if err := s.creds.Clear(); err != nil {
		logger.Error("failed to clear expired credential", "error", err)
	}
	s.credential = ""
	s.identity = domain.Anonymous()
	subs := s.subscribers()
	s.mu.Unlock()

	notify(subs, domain.Anonymous())
	return domain.Anonymous()
}

// Credential returns the raw bearer value for outgoing requests, or empty
// when the session is anonymous.
func (s *Store) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

// Subscribe registers a callback for session changes.
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) subscribers() []Subscriber {
	subs := make([]Subscriber, len(s.subs))
	copy(subs, s.subs)
	return subs
}

func notify(subs []Subscriber, identity domain.Identity) {
	for _, fn := range subs {
		fn(identity)
	}
}
