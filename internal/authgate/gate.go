// Package authgate suspends a privileged action until a manager or admin
// confirms it with their credentials.
//
// The gate is a small state machine:
//
//	Idle → AwaitingCredentials → Authorized | Rejected → Idle
//
// A pending request is a plain value (action tag + JSON payload) and the
// work it unlocks is looked up in a handler table when credentials match.
package authgate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"beautypos/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNoPendingRequest = errors.New("no authorization request is pending")
	ErrUnknownAction    = errors.New("unknown authorization action")
)

// Action tags the privileged operation waiting for approval.
type Action string

const (
	ActionRemoveManualDiscount Action = "remove_manual_discount"
	ActionRemovePromotion      Action = "remove_promotion"
	ActionRemoveCartItem       Action = "remove_cart_item"
	ActionClearCart            Action = "clear_cart"
	ActionCloseWithShortage    Action = "close_cashier_shortage"
	ActionLogoutOpenCashier    Action = "logout_open_cashier"
)

type State string

const (
	StateIdle                State = "idle"
	StateAwaitingCredentials State = "awaiting_credentials"
)

// Request is the action waiting for approval.
type Request struct {
	ID          uuid.UUID       `json:"id"`
	Action      Action          `json:"action"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	RequestedBy uuid.UUID       `json:"requested_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Credentials identify the approving user by id or username.
type Credentials struct {
	Identifier string
	Password   string
}

// Approval is the audit record handed to the unlocked action.
type Approval struct {
	RequestID   uuid.UUID `json:"request_id"`
	Action      Action    `json:"action"`
	ManagerID   uuid.UUID `json:"manager_id"`
	ManagerName string    `json:"manager_name"`
	ApprovedAt  time.Time `json:"approved_at"`
}

// Outcome reports how a submission was resolved. A rejection is not an
// error: Authorized is false and Message explains why.
type Outcome struct {
	Authorized bool      `json:"authorized"`
	Message    string    `json:"message"`
	Request    Request   `json:"request"`
	Approval   *Approval `json:"approval,omitempty"`
	Result     any       `json:"result,omitempty"`
}

// Directory looks users up for a credential check.
type Directory interface {
	FindByIdentifier(ctx context.Context, identifier string) (*model.User, error)
}

// Handler runs the approved action.
type Handler func(ctx context.Context, req Request, approval Approval) (any, error)

type Gate struct {
	mu       sync.Mutex
	dir      Directory
	handlers map[Action]Handler
	pending  *Request
	now      func() time.Time
}

func New(dir Directory, handlers map[Action]Handler) *Gate {
	return &Gate{dir: dir, handlers: handlers, now: time.Now}
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return StateIdle
	}
	return StateAwaitingCredentials
}

// Pending returns the request waiting for credentials, if any.
func (g *Gate) Pending() (Request, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return Request{}, false
	}
	return *g.pending, true
}

// Begin stores a new pending request. Only one request is held at a time;
// a new one replaces whatever was waiting.
func (g *Gate) Begin(requestedBy uuid.UUID, action Action, payload any) (Request, error) {
	if _, ok := g.handlers[action]; !ok {
		return Request{}, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return Request{}, fmt.Errorf("authgate: encode payload: %w", err)
		}
		raw = b
	}
	req := Request{
		ID:          uuid.New(),
		Action:      action,
		Payload:     raw,
		RequestedBy: requestedBy,
		CreatedAt:   g.now(),
	}
	g.mu.Lock()
	g.pending = &req
	g.mu.Unlock()
	return req, nil
}

// Cancel drops the pending request. It reports whether one was pending.
func (g *Gate) Cancel() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	had := g.pending != nil
	g.pending = nil
	return had
}

// Submit checks the credentials and resolves the pending request. The gate
// is back to Idle afterwards whatever the outcome. The returned error is
// only set when the approved action itself fails.
func (g *Gate) Submit(ctx context.Context, creds Credentials) (Outcome, error) {
	g.mu.Lock()
	if g.pending == nil {
		g.mu.Unlock()
		return Outcome{}, ErrNoPendingRequest
	}
	req := *g.pending
	g.pending = nil
	g.mu.Unlock()

	manager, msg := g.verify(ctx, creds)
	if manager == nil {
		return Outcome{Authorized: false, Message: msg, Request: req}, nil
	}

	approval := Approval{
		RequestID:   req.ID,
		Action:      req.Action,
		ManagerID:   manager.ID,
		ManagerName: manager.Name,
		ApprovedAt:  g.now(),
	}
	out := Outcome{Authorized: true, Message: "authorized", Request: req, Approval: &approval}
	result, err := g.handlers[req.Action](ctx, req, approval)
	if err != nil {
		return out, err
	}
	out.Result = result
	return out, nil
}

func (g *Gate) verify(ctx context.Context, creds Credentials) (*model.User, string) {
	const invalid = "invalid manager credentials"
	if creds.Identifier == "" || creds.Password == "" {
		return nil, invalid
	}
	u, err := g.dir.FindByIdentifier(ctx, creds.Identifier)
	if err != nil || u == nil || !u.Active {
		return nil, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(creds.Password)) != nil {
		return nil, invalid
	}
	if !u.Role.Can(model.CapAuthorizeOverrides) {
		return nil, "user is not allowed to authorize this action"
	}
	return u, ""
}
