package mock

import (
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/jeevanteja1304/VitalValue/internal/client"
)

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrEmailTaken    = errors.New("email already registered")
)

type user struct {
	name   string
	phone  string
	gender string
	hash   []byte
}

// Users is an in-memory account registry keyed by normalized email.
// Passwords are stored as bcrypt hashes.
type Users struct {
	mu      sync.RWMutex
	byEmail map[string]user
	cost    int
}

// NewUsers creates an empty registry. A cost of 0 uses bcrypt.DefaultCost.
func NewUsers(cost int) *Users {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Users{byEmail: make(map[string]user), cost: cost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register adds an account. Every field is required.
func (u *Users) Register(r client.SignupRequest) error {
	email := normalizeEmail(r.Email)
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Phone) == "" || email == "" ||
		strings.TrimSpace(r.Gender) == "" || r.Password == "" {
		return ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), u.cost)
	if err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.byEmail[email]; ok {
		return ErrEmailTaken
	}
	u.byEmail[email] = user{name: r.Name, phone: r.Phone, gender: r.Gender, hash: hash}
	return nil
}

// Authenticate reports whether the credentials match a registered account.
func (u *Users) Authenticate(email, password string) bool {
	u.mu.RLock()
	acct, ok := u.byEmail[normalizeEmail(email)]
	u.mu.RUnlock()
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(acct.hash, []byte(password)) == nil
}

func (u *Users) Count() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.byEmail)
}
