package sandbox

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/dayof/internal/core/event"
)

// vendor is a registered sandbox account.
type vendor struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	HashedPassword string `json:"-"`
}

// record is a stored event plus the data the client never sees.
type record struct {
	event       event.Event
	vendorID    string
	deleted     bool
	startCode   string
	closingCode string
}

// store keeps every sandbox entity in memory.
type store struct {
	mu      sync.Mutex
	vendors map[string]*vendor // by id
	emails  map[string]string  // lower-case email -> vendor id
	events  map[string]*record
}

func newStore() *store {
	return &store{
		vendors: make(map[string]*vendor),
		emails:  make(map[string]string),
		events:  make(map[string]*record),
	}
}

// addVendor registers a vendor with a bcrypt-hashed password.
func (s *store) addVendor(name, email, phone, password string) (*vendor, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := s.emails[key]; exists {
		return nil, errVendorExists
	}
	v := &vendor{
		ID:             uuid.NewString(),
		Name:           name,
		Email:          email,
		Phone:          phone,
		HashedPassword: string(hashed),
	}
	s.vendors[v.ID] = v
	s.emails[key] = v.ID
	return v, nil
}

// authenticate returns the vendor whose email and password match.
func (s *store) authenticate(email, password string) (*vendor, bool) {
	s.mu.Lock()
	id, ok := s.emails[strings.ToLower(email)]
	v := s.vendors[id]
	s.mu.Unlock()
	if !ok || v == nil {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword([]byte(v.HashedPassword), []byte(password)) != nil {
		return nil, false
	}
	return v, true
}

func (s *store) vendor(id string) (*vendor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vendors[id]
	return v, ok
}

// newOTPCode returns a uniformly random six digit code.
func newOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// sortEvents orders newest event date first, undated last.
func sortEvents(events []event.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].EventDate, events[j].EventDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(*b)
	})
}
