package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordTooShort   = errors.New("password is too short")
)

// MinPasswordLength is the minimum length accepted by HashPassword.
const MinPasswordLength = 8

// User is a configured API user. Passwords are stored as bcrypt hashes.
type User struct {
	Username     string `mapstructure:"username" yaml:"username" json:"username" validate:"required"`
	PasswordHash string `mapstructure:"password_hash" yaml:"password_hash" json:"password_hash" validate:"required"`
	Role         Role   `mapstructure:"role" yaml:"role" json:"role,omitempty" validate:"omitempty,oneof=admin user"`
}

// UserStore authenticates the users listed in the server configuration.
type UserStore struct {
	users map[string]User

	// dummyHash is compared against when a user does not exist so that
	// lookups of unknown and known users take the same time.
	dummyHash []byte
}

// NewUserStore indexes users by name. A missing role defaults to RoleUser.
func NewUserStore(users []User) (*UserStore, error) {
	s := &UserStore{users: make(map[string]User, len(users))}
	for _, u := range users {
		if u.Username == "" {
			return nil, errors.New("user without a username")
		}
		if _, dup := s.users[u.Username]; dup {
			return nil, fmt.Errorf("duplicate user %q", u.Username)
		}
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			return nil, fmt.Errorf("user %q: password_hash is not a bcrypt hash: %w", u.Username, err)
		}
		if u.Role == "" {
			u.Role = RoleUser
		}
		if !u.Role.Valid() {
			return nil, fmt.Errorf("user %q: %w %q", u.Username, ErrInvalidRole, u.Role)
		}
		s.users[u.Username] = u
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("ecfs-timing-equalizer"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	s.dummyHash = hash
	return s, nil
}

// Len returns the number of configured users.
func (s *UserStore) Len() int {
	return len(s.users)
}

// Get returns the named user.
func (s *UserStore) Get(username string) (*User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// ValidateCredentials returns the user if password matches its hash.
func (s *UserStore) ValidateCredentials(username, password string) (*User, error) {
	u, ok := s.users[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// HashPassword returns the bcrypt hash of password for use in the
// configuration file.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("%w: need at least %d characters", ErrPasswordTooShort, MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
