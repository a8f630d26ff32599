package services

import (
	"fmt"
	"time"

	"newsdesk/auth"
	"newsdesk/domain"
	"newsdesk/errors"
	"newsdesk/repositories"
)

type IAuthService interface {
	Register(email, password string) (Session, error)
	Login(email, password string) (Session, error)
	Identify(token string) (domain.Identity, error)
}

// Session is an issued identity plus its bearer token. Logout is a client
// concern: sessions are stateless and expire with the token.
type Session struct {
	Token    string
	Identity domain.Identity
}

type AuthService struct {
	userRepository repositories.IUserRepository
	secret         []byte
	tokenDuration  time.Duration
}

func NewAuthService(repo repositories.IUserRepository, secret []byte,
	tokenDuration time.Duration) IAuthService {
	return &AuthService{userRepository: repo, secret: secret, tokenDuration: tokenDuration}
}

func (s *AuthService) Register(email, password string) (Session, error) {
	valReq := auth.RegisterRequest{
		Email:    email,
		Password: password,
	}

	// 1. Validate business rules (email format, password complexity)
	// before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		return Session{}, fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// 2. Hash the password with Argon2id in the service layer, keeping the
	// repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return Session{}, fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the user with a generated pseudonymous display name.
	displayName := auth.GenerateDisplayName()
	userID, err := s.userRepository.CreateUser(email, hashedPassword, displayName)
	if err != nil {
		return Session{}, err // Propagates ErrUserAlreadyExists if the email is taken
	}

	return s.issue(domain.Identity{ID: userID, Email: email, DisplayName: displayName})
}

func (s *AuthService) Login(email, password string) (Session, error) {
	// 1. Retrieve user by email from storage
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return Session{}, errors.ErrInvalidCredentials
	}

	// 2. Compare the provided password with the stored hash
	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return Session{}, errors.ErrInvalidCredentials
	}

	return s.issue(domain.Identity{ID: user.ID, Email: user.Email, DisplayName: user.DisplayName})
}

// Identify resolves the current identity from a bearer token. The chat
// core treats the result as immutable input for the session's lifetime.
func (s *AuthService) Identify(token string) (domain.Identity, error) {
	claims, err := auth.ValidateToken(token, s.secret)
	if err != nil {
		return domain.Identity{}, errors.ErrInvalidCredentials
	}
	return domain.Identity{ID: claims.UserID, DisplayName: claims.DisplayName}, nil
}

func (s *AuthService) issue(identity domain.Identity) (Session, error) {
	token, err := auth.GenerateToken(identity.ID, identity.DisplayName, s.secret, s.tokenDuration)
	if err != nil {
		return Session{}, errors.ErrTokenGeneration
	}
	return Session{Token: token, Identity: identity}, nil
}
