package service

import (
	"context"
	"errors"
	"time"

	"github.com/ChristianJLC/web/internal/config"
	"github.com/ChristianJLC/web/internal/dto"
	"github.com/ChristianJLC/web/internal/model"
	"github.com/ChristianJLC/web/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenAcceso  = "access"
	TokenRefresh = "refresh"

	revocadoPrefix = "auth:revocado:"
)

// ErrCredenciales is returned for unknown users, inactive users and wrong passwords alike.
var (
	ErrCredenciales  = errors.New("Credenciales invalidas")
	ErrTokenInvalido = errors.New("Token invalido o expirado")
	ErrTokenRevocado = errors.New("Sesion cerrada")
)

// Claims are embedded in every access and refresh token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Nombre   string `json:"nombre"`
	Tipo     string `json:"type"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	Logout(ctx context.Context, claims *Claims) error
	Me(ctx context.Context, userID string) (*dto.UsuarioResponse, error)
	// ValidarToken checks signature, expiry, token type and revocation.
	ValidarToken(ctx context.Context, raw, tipo string) (*Claims, error)
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
	rdb  *redis.Client // nil disables revocation
	now  func() time.Time
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config, rdb *redis.Client) AuthService {
	return &authService{repo: repo, cfg: cfg, rdb: rdb, now: time.Now}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrCredenciales
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredenciales
	}
	log.Info().Str("username", user.Username).Msg("login")
	return s.emitir(user)
}

// Refresh rotates the pair: the presented refresh token is revoked.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := s.ValidarToken(ctx, refreshToken, TokenRefresh)
	if err != nil {
		return nil, err
	}
	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrTokenInvalido
	}
	user, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, ErrCredenciales
	}
	if err := s.Logout(ctx, claims); err != nil {
		log.Warn().Err(err).Msg("no se pudo revocar el refresh token")
	}
	return s.emitir(user)
}

// Logout stores the token id in Redis until the token would have expired anyway.
func (s *authService) Logout(ctx context.Context, claims *Claims) error {
	if s.rdb == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, revocadoPrefix+claims.ID, 1, ttl).Err()
}

func (s *authService) Me(ctx context.Context, userID string) (*dto.UsuarioResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrTokenInvalido
	}
	user, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, notFoundOr(err, "Usuario no encontrado.")
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) ValidarToken(ctx context.Context, raw, tipo string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.Tipo != tipo {
		return nil, ErrTokenInvalido
	}

	if s.rdb != nil && claims.ID != "" {
		n, err := s.rdb.Exists(ctx, revocadoPrefix+claims.ID).Result()
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("redis no disponible, se omite la verificacion de revocacion")
		case n > 0:
			return nil, ErrTokenRevocado
		}
	}
	return claims, nil
}

func (s *authService) emitir(user *model.Usuario) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, TokenAcceso, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, TokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         usuarioToResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, tipo string, duration time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Nombre:   user.Nombre,
		Tipo:     tipo,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{ID: u.ID.String(), Username: u.Username, Nombre: u.Nombre}
}
