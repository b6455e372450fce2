package loja

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AccountRepo defines the store for accounts allowed to manage the catalog.
type AccountRepo interface {
	// Create stores a new account. Returns ErrAlreadyExists if the email is taken.
	Create(ctx context.Context, email, passwordHash string) (Account, error)

	// Get returns the account with the given ID, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (Account, error)

	// GetByEmail returns the account with the given email, or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (Account, error)
}

// PasswordCost is the bcrypt cost used for new accounts.
const PasswordCost = 10

// MinPasswordLength is the shortest password CreateAccount accepts.
const MinPasswordLength = 6

type credentials struct {
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=6,max=72"`
}

// Identity verifies credentials and creates accounts.
type Identity struct {
	accounts AccountRepo
}

func NewIdentity(accounts AccountRepo) (*Identity, error) {
	if accounts == nil {
		return nil, errors.New("new identity: account repo is required")
	}
	return &Identity{accounts: accounts}, nil
}

// SignIn returns the account matching email and password. An unknown email
// and a wrong password both yield ErrInvalidCredentials.
func (i *Identity) SignIn(ctx context.Context, email, password string) (Account, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Account{}, fmt.Errorf("sign in: %w", ErrInvalidCredentials)
	}

	acc, err := i.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Compare anyway so both failure paths cost the same.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return Account{}, fmt.Errorf("sign in: %w", ErrInvalidCredentials)
		}
		return Account{}, fmt.Errorf("sign in: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return Account{}, fmt.Errorf("sign in: %w", ErrInvalidCredentials)
	}

	return acc, nil
}

// CreateAccount validates the credentials, hashes the password and stores a
// new account.
func (i *Identity) CreateAccount(ctx context.Context, email, password string) (Account, error) {
	c := credentials{Email: normalizeEmail(email), Password: password}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return Account{}, fmt.Errorf("create account: %w: %s failed on %s", ErrInvalidInput, strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		return Account{}, fmt.Errorf("create account: %w: %w", ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), PasswordCost)
	if err != nil {
		return Account{}, fmt.Errorf("create account: hash password: %w", err)
	}

	acc, err := i.accounts.Create(ctx, c.Email, string(hash))
	if err != nil {
		return Account{}, fmt.Errorf("create account: %w", err)
	}

	return acc, nil
}

// Lookup re-reads an account by ID. Sessions resolve their account through
// it on every request so that a removed account stops working at once.
func (i *Identity) Lookup(ctx context.Context, id uuid.UUID) (Account, error) {
	acc, err := i.accounts.Get(ctx, id)
	if err != nil {
		return Account{}, fmt.Errorf("lookup account %s: %w", id, err)
	}
	return acc, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// dummyHash is a bcrypt hash of a random string at PasswordCost.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z1bJY7ay.9yVLRrJzlCCW6vO")
