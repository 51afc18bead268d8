package service

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/repository"
)

type authEnv struct {
	svc      *AuthService
	users    repository.UserRepository
	profiles repository.ProfileRepository
	db       *sqlx.DB
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()

	database := newTestDB(t)
	users := repository.NewUserRepository(database)
	profiles := repository.NewProfileRepository(database)
	emails := NewEmailService("", "noreply@habitedge.local", "http://localhost:8080", "HabitEdge", true)

	svc := NewAuthService(
		users,
		profiles,
		repository.NewTokenRepository(database),
		emails,
		"test-secret",
		false,
		7*24*time.Hour,
		15*time.Minute,
	)

	return &authEnv{svc: svc, users: users, profiles: profiles, db: database}
}

func (e *authEnv) magicToken(t *testing.T) string {
	t.Helper()

	var token string
	err := e.db.Get(&token, `SELECT token FROM tokens WHERE type = $1 AND used_at IS NULL`, model.TokenTypeMagicLink)
	require.NoError(t, err)
	return token
}

func TestCreateAccountSingleSeat(t *testing.T) {
	env := newAuthEnv(t)

	user, err := env.svc.CreateAccount(" Athlete@Example.COM ", nil)
	require.NoError(t, err)
	assert.Equal(t, "athlete@example.com", user.Email)
	assert.False(t, user.HasPassword())

	// The empty profile is created alongside the account.
	profile, err := env.profiles.ByUserID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.Name)

	// One athlete per install.
	_, err = env.svc.CreateAccount("second@example.com", nil)
	assert.ErrorIs(t, err, ErrAccountExists)

	_, err = env.svc.CreateAccount("not-an-email", nil)
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestMagicLinkBootstrapsFirstAccount(t *testing.T) {
	env := newAuthEnv(t)

	// The very first magic link request creates the account.
	require.NoError(t, env.svc.SendMagicLink("athlete@example.com"))
	count, err := env.users.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	token := env.magicToken(t)
	user, err := env.svc.VerifyMagicLink(token)
	require.NoError(t, err)
	assert.Equal(t, "athlete@example.com", user.Email)
	assert.NotNil(t, user.EmailVerifiedAt, "magic link sign-in verifies the email")

	// Tokens are single use.
	_, err = env.svc.VerifyMagicLink(token)
	assert.Error(t, err)
}

func TestMagicLinkHidesWhichEmailOwnsTheServer(t *testing.T) {
	env := newAuthEnv(t)

	_, err := env.svc.CreateAccount("owner@example.com", nil)
	require.NoError(t, err)

	// A request for any other address reports success but creates
	// neither an account nor a token.
	require.NoError(t, env.svc.SendMagicLink("stranger@example.com"))

	count, err := env.users.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var tokens int
	require.NoError(t, env.db.Get(&tokens, `SELECT COUNT(*) FROM tokens`))
	assert.Zero(t, tokens)

	require.ErrorIs(t, env.svc.SendMagicLink("not-an-email"), ErrInvalidEmail)
}

func TestMagicLinkReissueInvalidatesOldToken(t *testing.T) {
	env := newAuthEnv(t)

	require.NoError(t, env.svc.SendMagicLink("athlete@example.com"))
	first := env.magicToken(t)

	require.NoError(t, env.svc.SendMagicLink("athlete@example.com"))
	second := env.magicToken(t)
	require.NotEqual(t, first, second)

	_, err := env.svc.VerifyMagicLink(first)
	assert.Error(t, err)
	_, err = env.svc.VerifyMagicLink(second)
	assert.NoError(t, err)
}

func TestLogin(t *testing.T) {
	env := newAuthEnv(t)

	hash, err := env.svc.HashPassword("free-throw-champion-26")
	require.NoError(t, err)
	user, err := env.svc.CreateAccount("athlete@example.com", &hash)
	require.NoError(t, err)

	// A fresh password account cannot log in before verification.
	_, err = env.svc.Login("athlete@example.com", "free-throw-champion-26")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	require.NoError(t, env.svc.VerifyEmail(user.ID))

	got, err := env.svc.Login("Athlete@Example.com", "free-throw-champion-26")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = env.svc.Login("athlete@example.com", "wrong-password-here")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.svc.Login("stranger@example.com", "free-throw-champion-26")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginPasswordlessAccount(t *testing.T) {
	env := newAuthEnv(t)

	_, err := env.svc.CreateAccount("athlete@example.com", nil)
	require.NoError(t, err)

	_, err = env.svc.Login("athlete@example.com", "anything-at-all")
	assert.ErrorIs(t, err, ErrPasswordlessAccount)
}

func TestSetAndRemovePassword(t *testing.T) {
	env := newAuthEnv(t)

	user, err := env.svc.CreateAccount("athlete@example.com", nil)
	require.NoError(t, err)
	require.NoError(t, env.svc.VerifyEmail(user.ID))

	assert.Error(t, env.svc.SetPassword(user.ID, "too short"))

	require.NoError(t, env.svc.SetPassword(user.ID, "free-throw-champion-26"))
	got, err := env.users.ByID(user.ID)
	require.NoError(t, err)
	assert.True(t, got.HasPassword())

	// SetPassword only covers the passwordless case.
	assert.Error(t, env.svc.SetPassword(user.ID, "another-long-secret-26"))

	_, err = env.svc.Login("athlete@example.com", "free-throw-champion-26")
	require.NoError(t, err)

	require.NoError(t, env.svc.RemovePassword(user.ID))
	got, err = env.users.ByID(user.ID)
	require.NoError(t, err)
	assert.False(t, got.HasPassword())
	assert.Error(t, env.svc.RemovePassword(user.ID))
}

func TestForgotPasswordLinkDropsPassword(t *testing.T) {
	env := newAuthEnv(t)

	hash, err := env.svc.HashPassword("free-throw-champion-26")
	require.NoError(t, err)
	user, err := env.svc.CreateAccount("athlete@example.com", &hash)
	require.NoError(t, err)
	require.NoError(t, env.svc.VerifyEmail(user.ID))

	require.NoError(t, env.svc.SendForgotPasswordLink("athlete@example.com"))

	var token string
	require.NoError(t, env.db.Get(&token,
		`SELECT token FROM tokens WHERE type = $1 AND used_at IS NULL`, model.TokenTypeForgotPassword))

	// Redeeming signs in and removes the password.
	got, err := env.svc.VerifyForgotPasswordLink(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.False(t, got.HasPassword())

	stored, err := env.users.ByID(user.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasPassword())

	// Single use.
	_, err = env.svc.VerifyForgotPasswordLink(token)
	assert.Error(t, err)

	// The account is passwordless now, so no further reset links go out.
	require.NoError(t, env.svc.SendForgotPasswordLink("athlete@example.com"))
	var live int
	require.NoError(t, env.db.Get(&live,
		`SELECT COUNT(*) FROM tokens WHERE type = $1 AND used_at IS NULL`, model.TokenTypeForgotPassword))
	assert.Zero(t, live)
}

func TestLinkTokensAreFlowSpecific(t *testing.T) {
	env := newAuthEnv(t)

	hash, err := env.svc.HashPassword("free-throw-champion-26")
	require.NoError(t, err)
	user, err := env.svc.CreateAccount("athlete@example.com", &hash)
	require.NoError(t, err)
	require.NoError(t, env.svc.VerifyEmail(user.ID))

	require.NoError(t, env.svc.SendForgotPasswordLink("athlete@example.com"))
	var token string
	require.NoError(t, env.db.Get(&token,
		`SELECT token FROM tokens WHERE type = $1`, model.TokenTypeForgotPassword))

	// A reset token does not pass the plain sign-in endpoint and the
	// password stays in place.
	_, err = env.svc.VerifyMagicLink(token)
	assert.Error(t, err)

	stored, err := env.users.ByID(user.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasPassword())
}

func TestVerifyEmailStampsOnce(t *testing.T) {
	env := newAuthEnv(t)

	user, err := env.svc.CreateAccount("athlete@example.com", nil)
	require.NoError(t, err)

	require.NoError(t, env.svc.VerifyEmail(user.ID))
	first, err := env.users.ByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, first.EmailVerifiedAt)

	require.NoError(t, env.svc.VerifyEmail(user.ID))
	second, err := env.users.ByID(user.ID)
	require.NoError(t, err)
	assert.True(t, first.EmailVerifiedAt.Equal(*second.EmailVerifiedAt))
}

func TestJWTRoundTrip(t *testing.T) {
	env := newAuthEnv(t)

	user := &model.User{ID: "user-1", Email: "athlete@example.com"}
	token, err := env.svc.GenerateJWT(user)
	require.NoError(t, err)

	claims, err := env.svc.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "athlete@example.com", claims["email"])

	_, err = env.svc.VerifyJWT(token + "x")
	assert.Error(t, err)

	// A token signed with another secret is rejected.
	foreignSvc := NewAuthService(env.users, env.profiles, repository.NewTokenRepository(env.db),
		NewEmailService("", "noreply@habitedge.local", "http://localhost:8080", "HabitEdge", true),
		"different-secret", false, time.Hour, time.Minute)
	foreign, err := foreignSvc.GenerateJWT(user)
	require.NoError(t, err)
	_, err = env.svc.VerifyJWT(foreign)
	assert.Error(t, err)
}

func TestOnboarding(t *testing.T) {
	env := newAuthEnv(t)

	user, err := env.svc.CreateAccount("athlete@example.com", nil)
	require.NoError(t, err)

	needs, err := env.svc.NeedsOnboarding(user.ID)
	require.NoError(t, err)
	assert.True(t, needs)

	err = env.svc.CompleteOnboarding(user.ID, &model.Profile{Name: "  "})
	assert.Error(t, err, "a blank name does not finish onboarding")

	err = env.svc.CompleteOnboarding(user.ID, &model.Profile{
		Name:     "Jordan",
		Sport:    "basketball",
		Position: "guard",
		Level:    "high school",
	})
	require.NoError(t, err)

	needs, err = env.svc.NeedsOnboarding(user.ID)
	require.NoError(t, err)
	assert.False(t, needs)

	profile, err := env.profiles.ByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jordan", profile.Name)
	assert.Equal(t, "basketball", profile.Sport)
}
