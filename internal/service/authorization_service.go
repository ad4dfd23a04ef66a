package service

import (
	"context"
	"sync"

	"beautypos/internal/authgate"
	"beautypos/internal/dto"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AuthorizationService keeps one authorization gate per logged-in user, so
// every terminal holds at most one pending request.
type AuthorizationService interface {
	Gatekeeper
	// Register installs the handler that runs action once approved. All
	// handlers must be registered before the first request is served.
	Register(action authgate.Action, h authgate.Handler)
	Pending(userID uuid.UUID) dto.PendingAuthorizationResponse
	Cancel(userID uuid.UUID) bool
	Confirm(ctx context.Context, userID uuid.UUID, req dto.ConfirmAuthorizationRequest) (authgate.Outcome, error)
}

type authorizationService struct {
	dir      authgate.Directory
	mu       sync.Mutex
	handlers map[authgate.Action]authgate.Handler
	gates    map[uuid.UUID]*authgate.Gate
}

func NewAuthorizationService(dir authgate.Directory) AuthorizationService {
	return &authorizationService{
		dir:      dir,
		handlers: make(map[authgate.Action]authgate.Handler),
		gates:    make(map[uuid.UUID]*authgate.Gate),
	}
}

func (s *authorizationService) Register(action authgate.Action, h authgate.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[action] = h
}

func (s *authorizationService) gate(userID uuid.UUID) *authgate.Gate {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gates[userID]
	if !ok {
		g = authgate.New(s.dir, s.handlers)
		s.gates[userID] = g
	}
	return g
}

func (s *authorizationService) Begin(_ context.Context, userID uuid.UUID, action authgate.Action, payload any) (authgate.Request, error) {
	req, err := s.gate(userID).Begin(userID, action, payload)
	if err != nil {
		return req, err
	}
	log.Info().Str("user_id", userID.String()).Str("action", string(action)).
		Str("request_id", req.ID.String()).Msg("authorization requested")
	return req, nil
}

func (s *authorizationService) Pending(userID uuid.UUID) dto.PendingAuthorizationResponse {
	g := s.gate(userID)
	resp := dto.PendingAuthorizationResponse{State: g.State()}
	if req, ok := g.Pending(); ok {
		resp.Request = &req
	}
	return resp
}

func (s *authorizationService) Cancel(userID uuid.UUID) bool {
	return s.gate(userID).Cancel()
}

func (s *authorizationService) Confirm(ctx context.Context, userID uuid.UUID, req dto.ConfirmAuthorizationRequest) (authgate.Outcome, error) {
	out, err := s.gate(userID).Submit(ctx, authgate.Credentials{Identifier: req.Identifier, Password: req.Password})
	if err != nil && out.Approval == nil {
		return out, err
	}
	ev := log.Info()
	if !out.Authorized {
		ev = log.Warn()
	}
	if out.Approval != nil {
		ev = ev.Str("manager", out.Approval.ManagerName)
	}
	ev.Str("user_id", userID.String()).
		Str("action", string(out.Request.Action)).
		Bool("authorized", out.Authorized).
		Msg("authorization resolved")
	return out, err
}
