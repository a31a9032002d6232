package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf16"

	"calculator-saas/internal/httputil"
	"calculator-saas/internal/models"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLength is counted in UTF-16 code units, so an astral-plane
// character such as an emoji counts as two.
const MinPasswordLength = 6

// bcrypt only looks at the first 72 bytes of a password.
const maxPasswordBytes = 72

var (
	ErrDuplicateIdentity  = errors.New("username or email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Store owns user identity records.
type Store struct {
	db   *gorm.DB
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewStore returns a Store hashing passwords with the given bcrypt cost.
func NewStore(db *gorm.DB, cost int) *Store {
	return &Store{db: db, cost: cost}
}

// CreateUser validates the input, hashes the password and inserts the user.
// Username and email uniqueness is enforced by the database, so concurrent
// registrations of the same identity cannot both succeed.
func (s *Store) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, httputil.Validation("All fields are required")
	}
	if passwordLength(password) < MinPasswordLength {
		return nil, httputil.Validation(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword(passwordBytes(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

// FindByUsernameOrEmail looks identifier up against both unique keys.
func (s *Store) FindByUsernameOrEmail(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// VerifyPassword compares candidate against the stored hash in constant time.
func (s *Store) VerifyPassword(user *models.User, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordBytes(candidate)) == nil
}

// Authenticate resolves identifier and checks password. An unknown identifier
// and a wrong password both return ErrInvalidCredentials, and both pay for one
// bcrypt comparison.
func (s *Store) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	user, err := s.FindByUsernameOrEmail(ctx, identifier)
	if errors.Is(err, ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummy(), passwordBytes(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.VerifyPassword(user, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func passwordLength(password string) int {
	return len(utf16.Encode([]rune(password)))
}

// passwordBytes is the form handed to bcrypt on both the hash and the compare
// path: the first 72 bytes, everything after them is ignored.
func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

func (s *Store) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost)
	})
	return s.dummyHash
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
