package service

import (
	"context"
	"errors"
	"fmt"

	"beautypos/internal/authgate"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation failed")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAuthorizationRequired = errors.New("manager authorization required")
	ErrConflict              = errors.New("conflict")
)

// AuthorizationRequiredError is returned when an action has been parked on
// the caller's authorization gate. The client confirms it with manager
// credentials through the authorizations endpoints.
type AuthorizationRequiredError struct {
	Request authgate.Request
}

func (e *AuthorizationRequiredError) Error() string {
	return fmt.Sprintf("manager authorization required for %s", e.Request.Action)
}

func (e *AuthorizationRequiredError) Is(target error) bool {
	return target == ErrAuthorizationRequired
}

// Gatekeeper parks an action until a manager approves it.
type Gatekeeper interface {
	Begin(ctx context.Context, userID uuid.UUID, action authgate.Action, payload any) (authgate.Request, error)
}

// requireApproval parks the action and returns the error the caller must
// hand back to the client.
func requireApproval(ctx context.Context, gk Gatekeeper, userID uuid.UUID, action authgate.Action, payload any) error {
	req, err := gk.Begin(ctx, userID, action, payload)
	if err != nil {
		return err
	}
	return &AuthorizationRequiredError{Request: req}
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// lookup turns gorm's missing-record error into ErrNotFound.
func lookup(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return err
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
