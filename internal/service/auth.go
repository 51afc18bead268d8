package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/repository"
	"github.com/habitedge/habitedge/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrAccountExists       = errors.New("this server already has an account")
	ErrPasswordlessAccount = errors.New("this account uses passwordless login")
)

// AuthService handles sign-in for the single athlete account. The
// first magic link (or trainctl init) creates the account; after that
// the server is locked to it.
type AuthService struct {
	userRepository       repository.UserRepository
	profileRepository    repository.ProfileRepository
	tokenRepository      repository.TokenRepository
	emailService         *EmailService
	jwtSecret            string
	isProduction         bool
	jwtExpiry            time.Duration
	tokenMagicLinkExpiry time.Duration
}

func NewAuthService(
	userRepository repository.UserRepository,
	profileRepository repository.ProfileRepository,
	tokenRepository repository.TokenRepository,
	emailService *EmailService,
	jwtSecret string,
	isProduction bool,
	jwtExpiry time.Duration,
	tokenMagicLinkExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepository:       userRepository,
		profileRepository:    profileRepository,
		tokenRepository:      tokenRepository,
		emailService:         emailService,
		jwtSecret:            jwtSecret,
		isProduction:         isProduction,
		jwtExpiry:            jwtExpiry,
		tokenMagicLinkExpiry: tokenMagicLinkExpiry,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// Login checks the optional password. Both a wrong password and an
// unknown email come back as ErrInvalidCredentials so the response
// does not reveal which one it was.
func (s *AuthService) Login(email, password string) (*model.User, error) {
	user, err := s.userRepository.ByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if !user.HasPassword() {
		return nil, ErrPasswordlessAccount
	}

	if err := s.ComparePassword(password, *user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.EmailVerifiedAt == nil {
		return nil, ErrEmailNotVerified
	}

	return user, nil
}

func (s *AuthService) ValidatePassword(password string) error {
	return validation.ValidatePassword(password)
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateToken mints the random secret carried in sign-in links.
func (s *AuthService) GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(s.jwtExpiry).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (any, error) { return []byte(s.jwtSecret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, s.sessionCookie(token, expiry))
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, s.sessionCookie("", time.Unix(0, 0)))
}

func (s *AuthService) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     "auth_token",
		Value:    value,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateAccount creates the athlete account and its empty profile.
// passwordHash may be nil for passwordless accounts. Fails when an
// account already exists.
func (s *AuthService) CreateAccount(email string, passwordHash *string) (*model.User, error) {
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, ErrInvalidEmail
	}

	count, err := s.userRepository.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil, ErrAccountExists
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
	if err := s.userRepository.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Empty profile; name, sport and timezone come from onboarding.
	profile := &model.Profile{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		CreatedAt: now,
	}
	if err := s.profileRepository.Create(profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	slog.Info("account created", "email", email, "user_id", user.ID)
	return user, nil
}

// SetPassword adds a password to a passwordless account. Changing an
// existing password goes through UserService.UpdatePassword, which
// demands the current one.
func (s *AuthService) SetPassword(userID, newPassword string) error {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}

	if user.HasPassword() {
		return errors.New("a password is already set, change it instead")
	}

	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = &hash
	if err := s.userRepository.Update(user); err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}

	slog.Info("password added", "user_id", userID)
	return nil
}

// RemovePassword switches the account back to magic-link-only login.
func (s *AuthService) RemovePassword(userID string) error {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}

	if !user.HasPassword() {
		return errors.New("no password on this account")
	}

	user.PasswordHash = nil
	if err := s.userRepository.Update(user); err != nil {
		return fmt.Errorf("failed to remove password: %w", err)
	}

	slog.Info("password removed", "user_id", userID)
	return nil
}

// SendMagicLink handles the combined setup/login flow. The very first
// request creates the account; after that, links only go out for the
// account's own email. Requests for any other address report success
// without sending anything, to avoid confirming which email the
// account uses.
func (s *AuthService) SendMagicLink(email string) error {
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return ErrInvalidEmail
	}

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("failed to look up account: %w", err)
		}

		count, err := s.userRepository.Count()
		if err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		if count > 0 {
			slog.Info("magic link requested for unknown email", "email", email)
			return nil
		}

		user, err = s.CreateAccount(email, nil)
		if err != nil {
			return err
		}
	}

	linkToken, name, err := s.issueLinkToken(user, model.TokenTypeMagicLink)
	if err != nil {
		return err
	}

	if err := s.emailService.SendMagicLinkEmail(user.Email, linkToken, name); err != nil {
		slog.Error("failed to email sign-in link", "error", err, "email", user.Email)
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Info("magic link sent", "email", user.Email)
	return nil
}

// SendForgotPasswordLink sends a link that removes the password and
// logs the user in. Same token machinery as the magic link, different
// email wording.
func (s *AuthService) SendForgotPasswordLink(email string) error {
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return ErrInvalidEmail
	}

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		// Report success either way so the endpoint cannot be used to
		// probe for the account's email.
		slog.Info("forgot password requested for unknown email", "email", email)
		return nil
	}

	if !user.HasPassword() {
		slog.Info("forgot password ignored, account has no password", "email", email)
		return nil
	}

	linkToken, name, err := s.issueLinkToken(user, model.TokenTypeForgotPassword)
	if err != nil {
		return err
	}

	if err := s.emailService.SendForgotPasswordEmail(user.Email, linkToken, name); err != nil {
		slog.Error("failed to email password reset link", "error", err, "email", user.Email)
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Info("password reset link sent", "email", user.Email)
	return nil
}

// issueLinkToken replaces any live emailed link of the same type with
// a fresh single-use token. Returns the token and the profile name for
// the email greeting.
func (s *AuthService) issueLinkToken(user *model.User, tokenType string) (string, string, error) {
	// A newer link supersedes unredeemed older ones.
	if err := s.tokenRepository.DeleteByUserAndType(user.ID, tokenType); err != nil {
		slog.Warn("failed to clear older links", "error", err, "user_id", user.ID, "type", tokenType)
	}

	secret, err := s.GenerateToken()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}

	err = s.tokenRepository.Create(&model.Token{
		UserID:    user.ID,
		Type:      tokenType,
		Token:     secret,
		ExpiresAt: time.Now().Add(s.tokenMagicLinkExpiry),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to store token: %w", err)
	}

	name := ""
	if profile, err := s.profileRepository.ByUserID(user.ID); err == nil && profile != nil {
		name = profile.Name
	}

	return secret, name, nil
}

// redeemLinkToken consumes an emailed link token. Redemption is atomic
// in the repository, so a link only ever works once. Following the
// link proves the athlete owns the address, so the email is marked
// verified on the way through.
func (s *AuthService) redeemLinkToken(token, wantType string) (*model.User, error) {
	redeemed, err := s.tokenRepository.ConsumeToken(token)
	if err != nil {
		return nil, errors.New("invalid or expired link")
	}
	if redeemed.Type != wantType {
		return nil, errors.New("token issued for a different flow")
	}

	user, err := s.userRepository.ByID(redeemed.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if user.EmailVerifiedAt == nil {
		now := time.Now()
		user.EmailVerifiedAt = &now
		if err := s.userRepository.Update(user); err != nil {
			slog.Warn("failed to mark email verified", "error", err, "user_id", user.ID)
		}
	}

	return user, nil
}

// VerifyMagicLink redeems a sign-in link and returns the authenticated
// user.
func (s *AuthService) VerifyMagicLink(token string) (*model.User, error) {
	user, err := s.redeemLinkToken(token, model.TokenTypeMagicLink)
	if err != nil {
		return nil, err
	}

	slog.Info("signed in via magic link", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// VerifyForgotPasswordLink redeems a reset link. The link's promise is
// that a forgotten password cannot lock the athlete out: redeeming it
// signs them in and drops the password, so a new one can be set from
// the app.
func (s *AuthService) VerifyForgotPasswordLink(token string) (*model.User, error) {
	user, err := s.redeemLinkToken(token, model.TokenTypeForgotPassword)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = nil
	if err := s.userRepository.Update(user); err != nil {
		return nil, fmt.Errorf("failed to remove password: %w", err)
	}

	slog.Info("signed in via reset link, password removed", "user_id", user.ID)
	return user, nil
}

// VerifyEmail marks the account's email verified without a token.
// Used by the CLI bootstrap, where the operator owns the host.
func (s *AuthService) VerifyEmail(userID string) error {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	if user.EmailVerifiedAt != nil {
		return nil
	}

	now := time.Now()
	user.EmailVerifiedAt = &now
	if err := s.userRepository.Update(user); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}

	return nil
}

// NeedsOnboarding reports whether the athlete still has to fill in
// their profile (name not set).
func (s *AuthService) NeedsOnboarding(userID string) (bool, error) {
	profile, err := s.profileRepository.ByUserID(userID)
	if err != nil {
		return false, fmt.Errorf("failed to load profile: %w", err)
	}

	return profile.Name == "", nil
}

// CompleteOnboarding stores the athlete's profile answers.
func (s *AuthService) CompleteOnboarding(userID string, profile *model.Profile) error {
	profile.Name = strings.TrimSpace(profile.Name)

	if err := validation.ValidateName(profile.Name); err != nil {
		return err
	}
	if profile.Timezone != "" {
		if _, err := time.LoadLocation(profile.Timezone); err != nil {
			return &validation.Error{Field: "timezone", Message: "unknown timezone"}
		}
	}

	profile.UserID = userID
	if err := s.profileRepository.Update(profile); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	// The welcome email waits for onboarding so it can greet by name.
	if user, err := s.userRepository.ByID(userID); err == nil {
		if err := s.emailService.SendWelcomeEmail(user.Email, profile.Name); err != nil {
			slog.Warn("welcome email not sent", "error", err, "email", user.Email)
		}
	}

	slog.Info("onboarding completed", "user_id", userID, "name", profile.Name)
	return nil
}
