// Package auth guards the admin surface with a single stored credential and
// a bearer token that is rotated on every login and credential change.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/catalog"
	"storefront/internal/mask"
)

// CredentialStore is the slice of catalog.Store auth needs.
type CredentialStore interface {
	Credential(ctx context.Context) (catalog.Credential, error)
	SaveCredential(ctx context.Context, c catalog.Credential) error
}

// Service checks and rotates the admin credential.
type Service struct {
	store CredentialStore
	cost  int
}

// New returns a Service hashing with bcrypt.DefaultCost.
func New(store CredentialStore) *Service {
	return &Service{store: store, cost: bcrypt.DefaultCost}
}

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

// Change is the body of a username or password change.
type Change struct {
	Change   string `json:"change"`
	Confirm  string `json:"confirm"`
	Password string `json:"password"`
}

var errBadLogin = catalog.Unauthorized("invalid username or password")

// Login checks both hashes and issues a new token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	cred, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	if !matches(cred.UsernameHash, username) || !matches(cred.PasswordHash, password) {
		return "", errBadLogin
	}
	cred.Token, err = newToken()
	if err != nil {
		return "", err
	}
	if err := s.store.SaveCredential(ctx, cred); err != nil {
		return "", fmt.Errorf("save token: %w", err)
	}
	log.Printf("admin login: token rotated")
	return cred.Token, nil
}

// Authenticate accepts token when it equals the stored one. An empty token is
// a 401, a wrong one a 403.
func (s *Service) Authenticate(ctx context.Context, token string) error {
	if token == "" {
		return catalog.Unauthorized("missing credentials")
	}
	cred, err := s.store.Credential(ctx)
	if errors.Is(err, catalog.ErrNotFound) {
		return catalog.Forbidden("invalid token")
	}
	if err != nil {
		return fmt.Errorf("load credential: %w", err)
	}
	if cred.Token == "" || subtle.ConstantTimeCompare([]byte(cred.Token), []byte(token)) != 1 {
		return catalog.Forbidden("invalid token")
	}
	return nil
}

// ChangeUsername replaces the username and returns the new token.
func (s *Service) ChangeUsername(ctx context.Context, c Change) (string, error) {
	return s.change(ctx, c, "username", mask.Username, func(cred *catalog.Credential) *string {
		return &cred.UsernameHash
	})
}

// ChangePassword replaces the password and returns the new token.
func (s *Service) ChangePassword(ctx context.Context, c Change) (string, error) {
	return s.change(ctx, c, "password", mask.Password, func(cred *catalog.Credential) *string {
		return &cred.PasswordHash
	})
}

func (s *Service) change(ctx context.Context, c Change, what string, check func(string) error, hash func(*catalog.Credential) *string) (string, error) {
	cred, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	if !matches(cred.PasswordHash, c.Password) {
		return "", catalog.Unauthorized("current password is incorrect")
	}
	if err := check(c.Change); err != nil {
		return "", err
	}
	if c.Confirm != c.Change {
		return "", catalog.Invalid("%s confirmation does not match", what)
	}
	target := hash(&cred)
	if matches(*target, c.Change) {
		return "", catalog.Invalid("new %s must differ from the current one", what)
	}
	if *target, err = s.hash(c.Change); err != nil {
		return "", err
	}
	if cred.Token, err = newToken(); err != nil {
		return "", err
	}
	if err := s.store.SaveCredential(ctx, cred); err != nil {
		return "", fmt.Errorf("save credential: %w", err)
	}
	log.Printf("admin %s changed: token rotated", what)
	return cred.Token, nil
}

// SetCredentials replaces the credential outright. Any existing token is
// dropped, so every session has to log in again.
func (s *Service) SetCredentials(ctx context.Context, username, password string) error {
	if err := mask.Username(username); err != nil {
		return err
	}
	if err := mask.Password(password); err != nil {
		return err
	}
	var (
		cred catalog.Credential
		err  error
	)
	if cred.UsernameHash, err = s.hash(username); err != nil {
		return err
	}
	if cred.PasswordHash, err = s.hash(password); err != nil {
		return err
	}
	if err := s.store.SaveCredential(ctx, cred); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *Service) load(ctx context.Context) (catalog.Credential, error) {
	cred, err := s.store.Credential(ctx)
	if errors.Is(err, catalog.ErrNotFound) {
		return catalog.Credential{}, errBadLogin
	}
	if err != nil {
		return catalog.Credential{}, fmt.Errorf("load credential: %w", err)
	}
	return cred, nil
}

func (s *Service) hash(v string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(v), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return string(h), nil
}

func matches(hash, v string) bool {
	return hash != "" && bcrypt.CompareHashAndPassword([]byte(hash), []byte(v)) == nil
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
