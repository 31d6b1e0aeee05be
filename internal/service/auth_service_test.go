package service

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vz415/BridgeVentilator/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const testSigningKey = "unit-test-signing-key"

// userStore is an in-memory repository.Authorization.
type userStore struct {
	users     map[string]*models.User
	nextID    int
	createErr error
	getErr    error

	created []models.User
}

func newUserStore() *userStore {
	return &userStore{users: map[string]*models.User{}, nextID: 1}
}

func (s *userStore) Create(username, hash string) (int, error) {
	if s.createErr != nil {
		return 0, s.createErr
	}
	id := s.nextID
	s.nextID++
	u := &models.User{ID: id, Username: username, PasswordHash: hash}
	s.users[username] = u
	s.created = append(s.created, *u)
	return id, nil
}

func (s *userStore) GetByUsername(username string) (*models.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.users[username], nil
}

func newAuthUnderTest(store *userStore) *AuthService {
	return NewAuthService(store, testSigningKey, time.Hour)
}

func TestAuthService_SignUpStoresBcryptHash(t *testing.T) {
	store := newUserStore()
	svc := newAuthUnderTest(store)

	id, err := svc.SignUp("operator1", "swordfish")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if id != 1 {
		t.Fatalf("id: got %d; want 1", id)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d users; want 1", len(store.created))
	}

	stored := store.created[0]
	if stored.PasswordHash == "swordfish" {
		t.Fatalf("password stored in the clear")
	}
	if !strings.HasPrefix(stored.PasswordHash, "$2") {
		t.Fatalf("hash is not bcrypt: %q", stored.PasswordHash)
	}
	if err := verifyPassword(stored.PasswordHash, "swordfish"); err != nil {
		t.Fatalf("stored hash rejects the original password: %v", err)
	}
}

func TestAuthService_SignUpRejectsBlankPassword(t *testing.T) {
	store := newUserStore()
	svc := newAuthUnderTest(store)

	if _, err := svc.SignUp("operator1", "   "); err == nil {
		t.Fatalf("expected error for blank password")
	}
	if len(store.created) != 0 {
		t.Fatalf("blank password reached the repository")
	}
}

func TestAuthService_SignUpRepoErrorPropagates(t *testing.T) {
	store := newUserStore()
	store.createErr = errors.New("constraint violation")
	svc := newAuthUnderTest(store)

	if _, err := svc.SignUp("operator1", "swordfish"); err == nil {
		t.Fatalf("expected repo error")
	}
}

func TestAuthService_GenerateTokenRoundTrip(t *testing.T) {
	store := newUserStore()
	svc := newAuthUnderTest(store)

	if _, err := svc.SignUp("operator2", "letmein"); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	token, err := svc.GenerateToken("operator2", "letmein")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	uid, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if uid != 1 {
		t.Fatalf("round-trip user id: got %d; want 1", uid)
	}
}

func TestAuthService_GenerateTokenFailures(t *testing.T) {
	store := newUserStore()
	svc := newAuthUnderTest(store)
	if _, err := svc.SignUp("operator3", "correct"); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.GenerateToken("nobody", "pw")
		if !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("want ErrUserNotFound; got %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.GenerateToken("operator3", "incorrect")
		if !errors.Is(err, ErrInvalidPassword) {
			t.Fatalf("want ErrInvalidPassword; got %v", err)
		}
	})

	t.Run("repo failure", func(t *testing.T) {
		store.getErr = errors.New("db gone")
		defer func() { store.getErr = nil }()
		if _, err := svc.GenerateToken("operator3", "correct"); err == nil {
			t.Fatalf("expected repo error")
		}
	})
}

func TestAuthService_ParseTokenRejectsForgeries(t *testing.T) {
	svc := newAuthUnderTest(newUserStore())

	now := time.Now()
	claims := func(uid int, exp time.Time) *Claims {
		return &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(exp),
				IssuedAt:  jwt.NewNumericDate(now),
			},
			UserID: uid,
		}
	}

	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}

	sign := func(method jwt.SigningMethod, c *Claims, key any) string {
		s, err := jwt.NewWithClaims(method, c).SignedString(key)
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		return s
	}

	cases := []struct {
		name  string
		token string
	}{
		{name: "not a jwt", token: "three.word.salad"},
		{name: "foreign signing key", token: sign(jwt.SigningMethodHS256, claims(5, now.Add(time.Hour)), []byte("someone-elses-key"))},
		{name: "expired", token: sign(jwt.SigningMethodHS256, claims(6, now.Add(-time.Hour)), []byte(testSigningKey))},
		{name: "non-HMAC algorithm", token: sign(jwt.SigningMethodRS256, claims(7, now.Add(time.Hour)), rsaKey)},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.ParseToken(tc.token); err == nil {
				t.Fatalf("token accepted: %q", tc.token)
			}
		})
	}
}

func TestAuthService_IssueTokenCarriesUserID(t *testing.T) {
	svc := newAuthUnderTest(newUserStore())

	token, err := svc.issueToken(99)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	uid, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if uid != 99 {
		t.Fatalf("user id: got %d; want 99", uid)
	}
}
