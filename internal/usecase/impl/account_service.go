// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	"identity/config"
	deliverycontext "identity/internal/delivery/context"
	"identity/internal/domain/entity"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/ratelimit"
	"identity/internal/domain/repository"
	"identity/internal/domain/service"
	"identity/internal/domain/validate"
	"identity/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// User-facing confirmation messages returned by the write operations.
const (
	msgRegistered    = "Registration successful - please check your email to verify your account"
	msgAuthenticated = "Login successful"
)

// timingDummyHash is a structurally valid bcrypt hash compared against when
// the account does not exist, so a login probe costs the same whether or not
// the email is registered.
const timingDummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// accountService implements the AccountUsecase interface.
type accountService struct {
	accounts repository.AccountRepository
	hasher   service.PasswordHasher
	tokens   service.TokenService
	mail     service.MailGateway
	logger   *slog.Logger

	// emailCooldown gates verification resends and password-reset requests,
	// independently per account and per flow.
	emailCooldown time.Duration

	locks accountLocks

	// now is replaceable in tests.
	now func() time.Time
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	Accounts     repository.AccountRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Mail         service.MailGateway
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all dependencies as interfaces.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	cooldown := 60 * time.Second
	if params.Config != nil && params.Config.Auth != nil && params.Config.Auth.EmailCooldown > 0 {
		cooldown = params.Config.Auth.EmailCooldown
	}

	return &accountService{
		accounts:      params.Accounts,
		hasher:        params.Hasher,
		tokens:        params.TokenService,
		mail:          params.Mail,
		logger:        params.Logger,
		emailCooldown: cooldown,
		now:           time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates an unverified account and dispatches the first
// verification email. The account survives a failed send; the caller can
// recover through ResendVerification.
func (srv *accountService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	email, err := validate.NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, domainerrors.ErrInvalidArgument.WithMessage("Password is required")
	}

	srv.log(ctx).Info("Starting registration", slog.String("email", email))

	exists, err := srv.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check email existence")
	}
	if exists {
		return nil, domainerrors.ErrEmailAlreadyExists
	}

	hashed, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	account := &entity.Account{
		Email:        email,
		PasswordHash: hashed,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	}

	if err := srv.accounts.Create(ctx, account); err != nil {
		return nil, errors.Wrap(err, "failed to create account")
	}

	unlock := srv.locks.lock(account.ID)
	defer unlock()

	if err := srv.sendVerification(ctx, account); err != nil {
		srv.log(ctx).Warn("Verification email failed after registration", slog.Any("accountID", account.ID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("accountID", account.ID))

	return &usecase.RegisterOutput{Message: msgRegistered}, nil
}

// Authenticate checks credentials and the verified latch, then mints a
// session token with the account email as subject.
func (srv *accountService) Authenticate(ctx context.Context, input *usecase.AuthenticateInput) (*usecase.AuthenticateOutput, error) {
	email, err := validate.NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	account, err := srv.accounts.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrAccountNotFound) {
		// Burn a comparison so unknown emails take as long as wrong passwords.
		srv.hasher.Check(input.Password, timingDummyHash)

		return nil, domainerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find account by email")
	}

	if !srv.hasher.Check(input.Password, account.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	if !account.Verified {
		return nil, domainerrors.ErrEmailVerificationRequired
	}

	token, err := srv.tokens.Issue(account.Email, service.PurposeSession)
	if err != nil {
		srv.log(ctx).Error("Failed to issue session token", slog.Any("accountID", account.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue session token")
	}

	srv.log(ctx).Info("Account authenticated", slog.Any("accountID", account.ID))

	return &usecase.AuthenticateOutput{Message: msgAuthenticated, Token: token}, nil
}

// GetByEmail looks up a profile by canonical email.
func (srv *accountService) GetByEmail(ctx context.Context, email string) (*usecase.AccountProfile, error) {
	canonical, err := validate.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	account, err := srv.accounts.FindByEmail(ctx, canonical)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, domainerrors.ErrAccountNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find account by email")
	}

	return toProfile(account), nil
}

// GetByID looks up a profile by account id. Anything that does not parse as
// an id is treated as an unknown account, not a malformed request.
func (srv *accountService) GetByID(ctx context.Context, id string) (*usecase.AccountProfile, error) {
	account, err := srv.findByIDString(ctx, id)
	if err != nil {
		return nil, err
	}

	return toProfile(account), nil
}

// UpdateDetails applies a partial name update to an existing account.
func (srv *accountService) UpdateDetails(ctx context.Context, id string, input *usecase.UpdateDetailsInput) (*usecase.AccountProfile, error) {
	account, err := srv.findByIDString(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		account.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		account.LastName = *input.LastName
	}

	if err := srv.accounts.Update(ctx, account); err != nil {
		return nil, errors.Wrap(err, "failed to update account details")
	}

	srv.log(ctx).Info("Account details updated", slog.Any("accountID", account.ID))

	return toProfile(account), nil
}

// VerifyEmail consumes a verification token and flips the verified latch.
// Re-verifying is a no-op success, so a double-clicked link never errors.
func (srv *accountService) VerifyEmail(ctx context.Context, token string) error {
	account, err := srv.accountFromToken(ctx, token, service.PurposeEmailVerification)
	if err != nil {
		return err
	}

	if account.Verified {
		return nil
	}

	account.Verified = true
	if err := srv.accounts.Update(ctx, account); err != nil {
		return errors.Wrap(err, "failed to mark account verified")
	}

	srv.log(ctx).Info("Email verified", slog.Any("accountID", account.ID))

	return nil
}

// ResendVerification re-sends the verification email, subject to the
// per-account cooldown.
func (srv *accountService) ResendVerification(ctx context.Context, email string) error {
	canonical, err := validate.NormalizeEmail(email)
	if err != nil {
		return err
	}

	account, err := srv.accounts.FindByEmail(ctx, canonical)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return domainerrors.ErrAccountNotFound
	}
	if err != nil {
		return errors.Wrap(err, "failed to find account by email")
	}

	if account.Verified {
		return domainerrors.ErrInvalidArgument.WithMessage("Email is already verified - please log in")
	}

	unlock := srv.locks.lock(account.ID)
	defer unlock()

	// Re-read under the lock: a concurrent request may have stamped the
	// cursor between our lookup and acquiring the lock.
	account, err = srv.accounts.FindByID(ctx, account.ID)
	if err != nil {
		return errors.Wrap(err, "failed to reload account")
	}

	if err := ratelimit.Check(account.VerificationEmailSentAt, srv.emailCooldown, srv.now()); err != nil {
		return err
	}

	return srv.sendVerification(ctx, account)
}

// RequestPasswordReset sends a reset email, subject to the per-account
// cooldown.
func (srv *accountService) RequestPasswordReset(ctx context.Context, email string) error {
	canonical, err := validate.NormalizeEmail(email)
	if err != nil {
		return err
	}

	account, err := srv.accounts.FindByEmail(ctx, canonical)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return domainerrors.ErrAccountNotFound
	}
	if err != nil {
		return errors.Wrap(err, "failed to find account by email")
	}

	unlock := srv.locks.lock(account.ID)
	defer unlock()

	account, err = srv.accounts.FindByID(ctx, account.ID)
	if err != nil {
		return errors.Wrap(err, "failed to reload account")
	}

	if err := ratelimit.Check(account.PasswordResetEmailSentAt, srv.emailCooldown, srv.now()); err != nil {
		return err
	}

	token, err := srv.tokens.Issue(account.ID.String(), service.PurposePasswordReset)
	if err != nil {
		return errors.Wrap(err, "failed to issue password reset token")
	}

	if err := srv.mail.SendPasswordResetEmail(ctx, account, token); err != nil {
		srv.log(ctx).Error("Failed to send password reset email", slog.Any("accountID", account.ID), slog.Any("error", err))

		return domainerrors.ErrEmailDeliveryFailed
	}

	sentAt := srv.now()
	account.PasswordResetEmailSentAt = &sentAt
	if err := srv.accounts.Update(ctx, account); err != nil {
		return errors.Wrap(err, "failed to stamp password reset send time")
	}

	srv.log(ctx).Info("Password reset email sent", slog.Any("accountID", account.ID))

	return nil
}

// ResetPassword consumes a reset token and replaces the credential.
func (srv *accountService) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) error {
	if input.NewPassword == "" {
		return domainerrors.ErrInvalidArgument.WithMessage("New password is required")
	}

	account, err := srv.accountFromToken(ctx, input.Token, service.PurposePasswordReset)
	if err != nil {
		return err
	}

	hashed, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash new password")
	}

	account.PasswordHash = hashed
	if err := srv.accounts.Update(ctx, account); err != nil {
		return errors.Wrap(err, "failed to store new password")
	}

	srv.log(ctx).Info("Password reset completed", slog.Any("accountID", account.ID))

	return nil
}

// sendVerification mints a verification token, delivers it, and stamps the
// rate-limit cursor only after a successful send. Callers hold the account
// lock or own a freshly created row.
func (srv *accountService) sendVerification(ctx context.Context, account *entity.Account) error {
	token, err := srv.tokens.Issue(account.ID.String(), service.PurposeEmailVerification)
	if err != nil {
		return errors.Wrap(err, "failed to issue verification token")
	}

	if err := srv.mail.SendVerificationEmail(ctx, account, token); err != nil {
		srv.log(ctx).Error("Failed to send verification email", slog.Any("accountID", account.ID), slog.Any("error", err))

		return domainerrors.ErrEmailDeliveryFailed
	}

	sentAt := srv.now()
	account.VerificationEmailSentAt = &sentAt
	if err := srv.accounts.Update(ctx, account); err != nil {
		return errors.Wrap(err, "failed to stamp verification send time")
	}

	return nil
}

// accountFromToken verifies a purpose-scoped token and loads the account it
// names. A subject that is not a well-formed id means the token was not
// minted here, so it surfaces as an invalid token.
func (srv *accountService) accountFromToken(ctx context.Context, token string, purpose service.Purpose) (*entity.Account, error) {
	subject, err := srv.tokens.Verify(token, purpose)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, domainerrors.ErrInvalidToken
	}

	account, err := srv.accounts.FindByID(ctx, id)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, domainerrors.ErrAccountNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find account by id")
	}

	return account, nil
}

// findByIDString resolves a path-parameter id to an account. Unparseable
// ids are reported as unknown accounts.
func (srv *accountService) findByIDString(ctx context.Context, id string) (*entity.Account, error) {
	if id == "" {
		return nil, domainerrors.ErrInvalidArgument.WithMessage("Account ID is required")
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, domainerrors.ErrAccountNotFound
	}

	account, err := srv.accounts.FindByID(ctx, parsed)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, domainerrors.ErrAccountNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find account by id")
	}

	return account, nil
}

func toProfile(account *entity.Account) *usecase.AccountProfile {
	return &usecase.AccountProfile{
		ID:        account.ID.String(),
		Email:     account.Email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Verified:  account.Verified,
	}
}
