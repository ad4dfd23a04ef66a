package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"beautypos/internal/authgate"
	"beautypos/internal/config"
	"beautypos/internal/dto"
	"beautypos/internal/model"
	"beautypos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenAccess  = "access"
	tokenRefresh = "refresh"

	// PasswordCost is the bcrypt cost of every stored password hash.
	PasswordCost = 12
)

// OpenSessionFinder reports the tills a user currently has open.
type OpenSessionFinder interface {
	OpenSessionsByUser(ctx context.Context, userID uuid.UUID) ([]model.Cashier, error)
}

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	// Logout needs a manager approval while the user still has a till open.
	Logout(ctx context.Context, userID uuid.UUID, approval *authgate.Approval) (*dto.LogoutResponse, error)
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, includeInactive bool) ([]dto.UserResponse, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeactivateUser(ctx context.Context, id uuid.UUID) error
	ReactivateUser(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	repo     repository.UserRepository
	sessions OpenSessionFinder
	gate     Gatekeeper
	cfg      *config.Config
}

func NewAuthService(repo repository.UserRepository, sessions OpenSessionFinder, gate Gatekeeper, cfg *config.Config) AuthService {
	return &authService{repo: repo, sessions: sessions, gate: gate, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: refresh token is invalid or expired", ErrInvalidCredentials)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["type"] != tokenRefresh {
		return nil, fmt.Errorf("%w: not a refresh token", ErrInvalidCredentials)
	}
	userIDStr, _ := claims["user_id"].(string)
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed token", ErrInvalidCredentials)
	}
	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Active {
		return nil, fmt.Errorf("%w: user not found or inactive", ErrInvalidCredentials)
	}
	return s.issue(user)
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID, approval *authgate.Approval) (*dto.LogoutResponse, error) {
	open, err := s.sessions.OpenSessionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(open) > 0 && approval == nil {
		return nil, requireApproval(ctx, s.gate, userID, authgate.ActionLogoutOpenCashier, nil)
	}
	resp := &dto.LogoutResponse{LoggedOut: true}
	if approval != nil {
		resp.Manager = approval.ManagerName
	}
	ev := log.Info().Str("user_id", userID.String()).Int("open_cashiers", len(open))
	if approval != nil {
		ev = ev.Str("manager", approval.ManagerName)
	}
	ev.Msg("user logged out")
	return resp, nil
}

func (s *authService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), PasswordCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	resp := userResponse(user)
	return &resp, nil
}

func (s *authService) ListUsers(ctx context.Context, includeInactive bool) ([]dto.UserResponse, error) {
	var users []model.User
	var err error
	if includeInactive {
		users, err = s.repo.ListAll(ctx)
	} else {
		users, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = userResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) UpdateUser(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup("user", err)
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.Role != "" {
		role, err := model.ParseRole(req.Role)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		user.Role = role
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), PasswordCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := userResponse(user)
	return &resp, nil
}

func (s *authService) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	return lookup("user", s.repo.SoftDelete(ctx, id))
}

func (s *authService) ReactivateUser(ctx context.Context, id uuid.UUID) error {
	return lookup("user", s.repo.Reactivate(ctx, id))
}

func (s *authService) issue(user *model.User) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, tokenAccess, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, tokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         userResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.User, kind string, duration time.Duration) (string, error) {
	if s.cfg.JWTSecret == "" {
		return "", errors.New("jwt secret is not configured")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"name":     user.Name,
		"role":     string(user.Role),
		"type":     kind,
		"exp":      now.Add(duration).Unix(),
		"iat":      now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func userResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
		Role:     string(u.Role),
		Active:   u.Active,
	}
}
