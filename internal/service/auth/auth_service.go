// internal/service/auth/auth_service.go
package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"softmarket-service/internal/domain/user"
	xerrors "softmarket-service/internal/pkg/errors"
	"softmarket-service/internal/pkg/jwt"
	"softmarket-service/internal/repository/postgres"
)

type Service struct {
	userRepo *postgres.UserRepository
	tokens   *jwt.Manager
	logger   *zap.Logger
}

func NewService(userRepo *postgres.UserRepository, tokens *jwt.Manager, logger *zap.Logger) *Service {
	return &Service{userRepo: userRepo, tokens: tokens, logger: logger}
}

// Register creates a user account. Admin accounts cannot be self-registered.
func (s *Service) Register(ctx context.Context, req *user.RegisterRequest) (*user.AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = user.RoleUser
	}
	if role == user.RoleAdmin {
		return nil, xerrors.Wrap(xerrors.ErrForbidden, "cannot self-register as admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInternal, "failed to hash password")
	}

	u := &user.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		if xerrors.Is(err, xerrors.ErrDuplicateEntry) {
			return nil, xerrors.Wrap(xerrors.ErrConflict, "email or username already taken")
		}
		return nil, err
	}

	token, err := s.tokens.Generate(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.Int64("user_id", u.ID),
		zap.String("role", string(u.Role)))
	return &user.AuthResponse{AccessToken: token, User: u}, nil
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password produce the same error.
func (s *Service) Login(ctx context.Context, req *user.LoginRequest) (*user.AuthResponse, error) {
	u, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.Wrap(xerrors.ErrUnauthorized, "invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrUnauthorized, "invalid email or password")
	}

	token, err := s.tokens.Generate(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &user.AuthResponse{AccessToken: token, User: u}, nil
}

// Me returns the authenticated user's own record.
func (s *Service) Me(ctx context.Context, userID int64) (*user.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// Principal resolves the JWT claims into the caller identity used by the
// core services, including the seller profile id when one exists.
func (s *Service) Principal(ctx context.Context, claims *jwt.Claims) (user.Principal, error) {
	p := user.Principal{UserID: claims.UserID, Role: user.Role(claims.Role)}
	if p.Role == user.RoleSeller || p.Role == user.RoleAdmin {
		u, err := s.userRepo.FindByID(ctx, claims.UserID)
		if err != nil {
			return user.Principal{}, err
		}
		if u.SellerID.Valid {
			p.SellerID = u.SellerID.Int64
		}
	}
	return p, nil
}
