package userapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"snippets/internal/core/apperr"
	postEntity "snippets/internal/core/post"
	"snippets/internal/core/session"
	userEntity "snippets/internal/core/user"
	postPort "snippets/internal/ports/post"
	userPort "snippets/internal/ports/user"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofrs/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "snippets"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired session")
)

type UserService struct {
	UserRepository    userPort.UserRepository
	ProfileRepository postPort.ProfileRepository
	SessionStore      userPort.SessionStore
	AdminEmails       []string
	TokenTTL          time.Duration
	Logger            *zap.Logger
	jwtKey            []byte
}

// NewUserService normalizes adminEmails once.
func NewUserService(
	repo userPort.UserRepository,
	profiles postPort.ProfileRepository,
	sessions userPort.SessionStore,
	jwtKey []byte,
	ttl time.Duration,
	adminEmails []string,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		UserRepository:    repo,
		ProfileRepository: profiles,
		SessionStore:      sessions,
		AdminEmails:       lo.Map(adminEmails, func(e string, _ int) string { return normalizeEmail(e) }),
		TokenTTL:          ttl,
		Logger:            logger,
		jwtKey:            jwtKey,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUser creates the account and its profile row. Addresses listed in
// AdminEmails are granted the admin role on the spot.
func (s *UserService) RegisterUser(ctx context.Context, email, password, displayName string) (*userPort.UserDTO, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.NewValidation("email", "Email and password are required")
	}
	if len(password) < 6 {
		return nil, apperr.NewValidation("password", "Password must be at least 6 characters")
	}

	if _, err := s.UserRepository.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := s.UserRepository.Create(ctx, &userEntity.User{
		ID:       uuid.Must(uuid.NewV4()),
		Email:    email,
		Password: string(hashedPassword),
	})
	if err != nil {
		return nil, err
	}

	var username *string
	if name := strings.TrimSpace(displayName); name != "" {
		username = &name
	}
	if err := s.ProfileRepository.SaveProfile(ctx, &postEntity.Profile{UserID: u.ID, Username: username}); err != nil {
		// Without the user row gone the address could never sign up again.
		if derr := s.UserRepository.Delete(context.WithoutCancel(ctx), u.ID.String()); derr != nil {
			s.Logger.Error("could not undo sign-up", zap.String("userID", u.ID.String()), zap.Error(derr))
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}

	admin := lo.Contains(s.AdminEmails, email)
	if admin {
		// EnsureAdmins grants the role again on the next start.
		if err := s.UserRepository.GrantRole(ctx, u.ID.String(), userEntity.RoleAdmin); err != nil {
			s.Logger.Error("could not grant admin role", zap.String("userID", u.ID.String()), zap.Error(err))
			admin = false
		}
	}

	s.Logger.Info("user registered", zap.String("userID", u.ID.String()), zap.Bool("admin", admin))
	return &userPort.UserDTO{ID: u.ID.String(), Email: u.Email, DisplayName: username, IsAdmin: admin}, nil
}

// LoginUser checks the password and issues a signed token.
func (s *UserService) LoginUser(ctx context.Context, email, password string) (*userPort.LoginResponse, error) {
	u, err := s.UserRepository.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		s.Logger.Info("invalid password", zap.String("userID", u.ID.String()))
		return nil, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.TokenTTL)
	token, err := s.generateJWT(u, expiresAt)
	if err != nil {
		s.Logger.Error("could not generate token", zap.Error(err))
		return nil, err
	}

	return &userPort.LoginResponse{Token: token, ExpiresAt: expiresAt.Unix()}, nil
}

func (s *UserService) generateJWT(u *userEntity.User, expiresAt time.Time) (string, error) {
	claims := &jwt.StandardClaims{
		Id:        uuid.Must(uuid.NewV4()).String(),
		Subject:   u.ID.String(),
		Issuer:    issuer,
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtKey)
}

// ResolveToken implements session.Resolver.
func (s *UserService) ResolveToken(ctx context.Context, raw string) (*session.User, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtKey, nil
	})
	if err != nil || !token.Valid || claims.Issuer != issuer {
		return nil, ErrInvalidToken
	}

	revoked, err := s.SessionStore.IsRevoked(ctx, claims.Id)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	u, err := s.UserRepository.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	admin, err := s.UserRepository.HasRole(ctx, claims.Subject, userEntity.RoleAdmin)
	if err != nil {
		return nil, err
	}

	var displayName *string
	if p, err := s.ProfileRepository.FindProfile(ctx, claims.Subject); err == nil {
		displayName = p.Username
	}

	return &session.User{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: displayName,
		IsAdmin:     admin,
		TokenID:     claims.Id,
		ExpiresAt:   time.Unix(claims.ExpiresAt, 0),
	}, nil
}

// Revoke implements session.Resolver. The token id is remembered until the
// token would have expired anyway.
func (s *UserService) Revoke(ctx context.Context, u *session.User) error {
	ttl := time.Until(u.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.SessionStore.Revoke(ctx, u.TokenID, ttl); err != nil {
		return err
	}
	s.Logger.Info("session revoked", zap.String("userID", u.ID))
	return nil
}

// EnsureAdmins grants the admin role to every already registered address in
// AdminEmails.
func (s *UserService) EnsureAdmins(ctx context.Context) error {
	for _, email := range s.AdminEmails {
		u, err := s.UserRepository.FindByEmail(ctx, email)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := s.UserRepository.GrantRole(ctx, u.ID.String(), userEntity.RoleAdmin); err != nil {
			return err
		}
		s.Logger.Info("admin role ensured", zap.String("userID", u.ID.String()))
	}
	return nil
}
