package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stemsi/qrattend-backend/internal/cache"
	"github.com/stemsi/qrattend-backend/internal/config"
	"github.com/stemsi/qrattend-backend/internal/metrics"
	"github.com/stemsi/qrattend-backend/internal/model"
	"github.com/stemsi/qrattend-backend/internal/roster"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalidated = errors.New("session invalidated")
)

// TokenType distinguishes student vs teacher tokens.
type TokenType string

const (
	TokenTypeStudent TokenType = "student"
	TokenTypeTeacher TokenType = "teacher"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name,omitempty"`     // Student only
	ClassID   string    `json:"class_id,omitempty"` // Teacher only
}

// Student returns the student identity carried by the token.
func (c *Claims) Student() model.Student {
	return model.Student{ID: c.UserID, Name: c.Name}
}

// Teacher returns the teacher identity carried by the token.
func (c *Claims) Teacher() model.Teacher {
	return model.Teacher{Login: c.UserID, ClassID: c.ClassID}
}

// AuthService checks roster credentials, issues JWTs and tracks the single
// active session per principal.
type AuthService struct {
	cfg      *config.Config
	roster   *roster.Roster
	sessions cache.SessionStore
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, r *roster.Roster, sessions cache.SessionStore, m *metrics.Metrics) *AuthService {
	return &AuthService{cfg: cfg, roster: r, sessions: sessions, metrics: m, now: time.Now}
}

// HashPassword hashes a password with the given bcrypt cost.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hash), err
}

// checkPassword compares given against a roster entry. Lookups are exact:
// no trimming and no case folding. An empty stored secret never matches.
func checkPassword(plain, hash, given string) bool {
	if given == "" {
		return false
	}
	if hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(given)) == nil
	}
	if plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(plain), []byte(given)) == 1
}

// AuthenticateStudent resolves a student by exact id and password.
func (s *AuthService) AuthenticateStudent(id, password string) (model.Student, error) {
	if id == "" {
		return model.Student{}, ErrInvalidCredentials
	}
	st, ok := s.roster.Student(id)
	if !ok || !checkPassword(st.Password, st.PasswordHash, password) {
		return model.Student{}, ErrInvalidCredentials
	}
	return model.Student{ID: st.ID, Name: st.Name}, nil
}

// AuthenticateTeacher resolves the class a teacher login runs.
func (s *AuthService) AuthenticateTeacher(login, password string) (model.Teacher, error) {
	if login == "" {
		return model.Teacher{}, ErrInvalidCredentials
	}
	t, ok := s.roster.TeacherByLogin(login)
	if !ok || !checkPassword(t.Password, t.PasswordHash, password) {
		return model.Teacher{}, ErrInvalidCredentials
	}
	return model.Teacher{Login: t.Login, ClassID: t.ClassID}, nil
}

// LoginStudent authenticates a student and issues a token. Any earlier
// session of the same student is replaced.
func (s *AuthService) LoginStudent(ctx context.Context, id, password string) (*model.StudentLoginResponse, error) {
	st, err := s.AuthenticateStudent(id, password)
	s.metrics.Login(string(TokenTypeStudent), err == nil)
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(ctx, Claims{TokenType: TokenTypeStudent, UserID: st.ID, Name: st.Name})
	if err != nil {
		return nil, err
	}
	return &model.StudentLoginResponse{Token: token, Student: st}, nil
}

// LoginTeacher authenticates a teacher and issues a token bound to their class.
func (s *AuthService) LoginTeacher(ctx context.Context, login, password string) (*model.TeacherLoginResponse, error) {
	t, err := s.AuthenticateTeacher(login, password)
	s.metrics.Login(string(TokenTypeTeacher), err == nil)
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(ctx, Claims{TokenType: TokenTypeTeacher, UserID: t.Login, ClassID: t.ClassID})
	if err != nil {
		return nil, err
	}
	return &model.TeacherLoginResponse{Token: token, Teacher: t}, nil
}

func (s *AuthService) issueToken(ctx context.Context, claims Claims) (string, error) {
	jti := uuid.New().String()
	now := s.now()

	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        jti,
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	// Same expiry as the JWT; overwriting invalidates the previous login.
	key := config.CacheKey.LoginSessionKey(string(claims.TokenType), claims.UserID)
	if err := s.sessions.Put(ctx, key, jti, s.cfg.JWTExpiry); err != nil {
		return "", err
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.TokenType != TokenTypeStudent && claims.TokenType != TokenTypeTeacher {
		return nil, errors.New("unknown token type")
	}
	return claims, nil
}

// ValidateSession checks that the token is the principal's latest login.
func (s *AuthService) ValidateSession(ctx context.Context, claims *Claims) error {
	key := config.CacheKey.LoginSessionKey(string(claims.TokenType), claims.UserID)
	stored, err := s.sessions.Get(ctx, key)
	if errors.Is(err, cache.ErrNoSession) {
		return ErrSessionInvalidated
	}
	if err != nil {
		return err
	}
	if stored != claims.ID {
		return ErrSessionInvalidated
	}
	return nil
}

// Logout ends the session the token belongs to. A stale token leaves the
// newer session in place.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if err := s.ValidateSession(ctx, claims); err != nil {
		if errors.Is(err, ErrSessionInvalidated) {
			return nil
		}
		return err
	}
	key := config.CacheKey.LoginSessionKey(string(claims.TokenType), claims.UserID)
	return s.sessions.Delete(ctx, key)
}
