package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	mailer "github.com/UnknownOlympus/athena/internal/mail"
	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	resetCodeBytes    = 32
	decoyPassword     = "athena-decoy-password"
)

// Options configures a Provider.
type Options struct {
	JWTSecret  []byte
	TokenTTL   time.Duration
	ResetTTL   time.Duration
	ResetURL   string
	BcryptCost int
}

// Provider manages user credentials: account creation, password sign-in,
// ID tokens and the password reset flow.
type Provider struct {
	log     *slog.Logger
	users   repository.UserRepoIface
	codes   CodeStore
	mailer  mailer.Mailer
	metrics *metrics.Metrics
	opts    Options
	now     func() time.Time
	compare func(hashedPassword, password []byte) error
	// decoy is compared for unknown emails, keeping every failed sign-in at one bcrypt comparison.
	decoy []byte
}

func NewProvider(
	log *slog.Logger,
	users repository.UserRepoIface,
	codes CodeStore,
	sender mailer.Mailer,
	metrics *metrics.Metrics,
	opts Options,
) *Provider {
	if opts.BcryptCost < bcrypt.MinCost {
		opts.BcryptCost = bcrypt.DefaultCost
	}

	decoy, err := bcrypt.GenerateFromPassword([]byte(decoyPassword), opts.BcryptCost)
	if err != nil {
		log.Error("Failed to prepare decoy hash", sl.Err(err))
	}

	return &Provider{
		log:     log,
		users:   users,
		codes:   codes,
		mailer:  sender,
		metrics: metrics,
		opts:    opts,
		now:     time.Now,
		compare: bcrypt.CompareHashAndPassword,
		decoy:   decoy,
	}
}

func (p *Provider) initLogger(opn string) *slog.Logger {
	return sl.With(p.log, opn, "auth")
}

func (p *Provider) count(action string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	p.metrics.AuthAttempts.WithLabelValues(action, status).Inc()
}

// Register creates an account for email and password.
func (p *Provider) Register(
	ctx context.Context,
	email, password string,
	displayName *string,
) (user models.User, err error) {
	const opn = "Auth.Register"
	log := p.initLogger(opn)
	defer func() { p.count("register", err) }()

	email, err = normaliseEmail(email)
	if err != nil {
		return models.User{}, err
	}
	if err = checkPassword(password); err != nil {
		return models.User{}, err
	}

	hash, err := p.hash(password)
	if err != nil {
		return models.User{}, err
	}

	if displayName != nil {
		trimmed := strings.TrimSpace(*displayName)
		displayName = &trimmed
		if trimmed == "" {
			displayName = nil
		}
	}

	user, err = p.users.CreateUser(ctx, email, displayName, hash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.User{}, newError(CodeEmailInUse, "The email address is already in use by another account.")
		}
		log.ErrorContext(ctx, "Failed to create user", sl.Err(err))
		return models.User{}, internalError(err)
	}

	log.InfoContext(ctx, "User registered", "uid", user.UID)

	return user, nil
}

// SignIn checks the credentials and returns the user together with a signed ID token.
// An unknown email and a wrong password are reported identically.
func (p *Provider) SignIn(ctx context.Context, email, password string) (user models.User, token string, err error) {
	const opn = "Auth.SignIn"
	log := p.initLogger(opn)
	defer func() { p.count("login", err) }()

	email, err = normaliseEmail(email)
	if err != nil {
		return models.User{}, "", err
	}
	if password == "" {
		return models.User{}, "", newError(CodeMissingPassword, "A password is required.")
	}

	user, err = p.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = p.compare(p.decoy, []byte(password))
			return models.User{}, "", invalidCredential()
		}
		log.ErrorContext(ctx, "Failed to look up user", sl.Err(err))
		return models.User{}, "", internalError(err)
	}

	if err = p.compare([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.DebugContext(ctx, "Password mismatch", "uid", user.UID)
		return models.User{}, "", invalidCredential()
	}

	token, err = p.issueToken(user)
	if err != nil {
		log.ErrorContext(ctx, "Failed to sign id token", sl.Err(err))
		return models.User{}, "", internalError(err)
	}

	return user, token, nil
}

// SendPasswordResetEmail emails a single-use reset link to the owner of email.
func (p *Provider) SendPasswordResetEmail(ctx context.Context, email string) (err error) {
	const opn = "Auth.SendPasswordResetEmail"
	log := p.initLogger(opn)
	defer func() {
		status := "success"
		if err != nil {
			status = "failure"
		}
		p.metrics.ResetEmails.WithLabelValues(status).Inc()
	}()

	email, err = normaliseEmail(email)
	if err != nil {
		return err
	}

	user, err := p.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(CodeUserNotFound, "There is no user record corresponding to this identifier.")
		}
		return internalError(err)
	}

	code, err := newResetCode()
	if err != nil {
		return internalError(err)
	}

	if err = p.codes.Save(ctx, code, user.UID, p.opts.ResetTTL); err != nil {
		return internalError(err)
	}

	msg, err := mailer.PasswordReset(user.Email, p.resetLink(code))
	if err != nil {
		return internalError(err)
	}

	if err = p.mailer.Send(ctx, msg); err != nil {
		return internalError(err)
	}

	log.InfoContext(ctx, "Password reset email sent", "uid", user.UID)

	return nil
}

// ConfirmPasswordReset consumes a reset code and sets a new password for its user.
func (p *Provider) ConfirmPasswordReset(ctx context.Context, code, newPassword string) (err error) {
	const opn = "Auth.ConfirmPasswordReset"
	log := p.initLogger(opn)
	defer func() { p.count("reset_password", err) }()

	if err = checkPassword(newPassword); err != nil {
		return err
	}
	if code == "" {
		return invalidActionCode()
	}

	hash, err := p.hash(newPassword)
	if err != nil {
		return err
	}

	uid, err := p.codes.Consume(ctx, code)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return invalidActionCode()
		}
		return internalError(err)
	}

	if err = p.users.UpdatePassword(ctx, uid, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(CodeUserNotFound, "There is no user record corresponding to this identifier.")
		}
		log.ErrorContext(ctx, "Failed to update password", sl.Err(err))
		return internalError(err)
	}

	log.InfoContext(ctx, "Password reset", "uid", uid)

	return nil
}

func (p *Provider) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.opts.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", newError(CodeWeakPassword, "Password should be at most 72 bytes.")
		}
		return "", internalError(err)
	}

	return string(hash), nil
}

func (p *Provider) resetLink(code string) string {
	link, err := url.Parse(p.opts.ResetURL)
	if err != nil {
		link = &url.URL{Path: p.opts.ResetURL}
	}

	query := link.Query()
	query.Set("mode", "resetPassword")
	query.Set("oobCode", code)
	link.RawQuery = query.Encode()

	return link.String()
}

func normaliseEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", newError(CodeInvalidEmail, "The email address is badly formatted.")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", newError(CodeInvalidEmail, "The email address is badly formatted.")
	}

	return email, nil
}

func checkPassword(password string) error {
	if password == "" {
		return newError(CodeMissingPassword, "A password is required.")
	}
	if len([]rune(password)) < minPasswordLength {
		return newError(CodeWeakPassword, fmt.Sprintf("Password should be at least %d characters.", minPasswordLength))
	}

	return nil
}

func invalidCredential() *Error {
	return newError(CodeInvalidCredential, "The supplied credentials are incorrect.")
}

func invalidActionCode() *Error {
	return newError(CodeInvalidActionCode, "The action code is invalid, expired or has already been used.")
}

func newResetCode() (string, error) {
	buf := make([]byte, resetCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset code: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
