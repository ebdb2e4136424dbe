package impl

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"identity/config"
	"identity/internal/domain/entity"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/repository"
	"identity/internal/domain/service"
	"identity/internal/domain/validate"
	"identity/internal/usecase"

	"github.com/google/uuid"
)

// fakeAccountRepository is an in-memory AccountRepository. It assigns ids on
// create and stores copies so tests cannot mutate stored state by accident.
type fakeAccountRepository struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]entity.Account

	failNext error // returned once by the next call, then cleared
}

func newFakeAccountRepository() *fakeAccountRepository {
	return &fakeAccountRepository{accounts: make(map[uuid.UUID]entity.Account)}
}

func (r *fakeAccountRepository) takeFailure() error {
	err := r.failNext
	r.failNext = nil

	return err
}

func (r *fakeAccountRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return nil, err
	}

	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	copied := account

	return &copied, nil
}

func (r *fakeAccountRepository) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return nil, err
	}

	for _, account := range r.accounts {
		if account.Email == email {
			copied := account

			return &copied, nil
		}
	}

	return nil, repository.ErrAccountNotFound
}

func (r *fakeAccountRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return false, err
	}

	for _, account := range r.accounts {
		if account.Email == email {
			return true, nil
		}
	}

	return false, nil
}

func (r *fakeAccountRepository) Create(_ context.Context, account *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	r.accounts[account.ID] = *account

	return nil
}

func (r *fakeAccountRepository) Update(_ context.Context, account *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}

	if _, ok := r.accounts[account.ID]; !ok {
		return repository.ErrAccountNotFound
	}
	account.UpdatedAt = time.Now()
	r.accounts[account.ID] = *account

	return nil
}

func (r *fakeAccountRepository) get(id uuid.UUID) entity.Account {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.accounts[id]
}

// fakePasswordHasher "hashes" by prefixing, which keeps assertions readable.
type fakePasswordHasher struct {
	failNext error
}

func (h *fakePasswordHasher) Hash(password string) (string, error) {
	if err := h.failNext; err != nil {
		h.failNext = nil

		return "", err
	}

	return "hashed:" + password, nil
}

func (h *fakePasswordHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

// fakeTokenService encodes subject and purpose into the token string, so
// purpose scoping is honored without real signing.
type fakeTokenService struct {
	mu     sync.Mutex
	issued []string
}

func (s *fakeTokenService) Issue(subject string, purpose service.Purpose) (string, error) {
	token := string(purpose) + "|" + subject

	s.mu.Lock()
	s.issued = append(s.issued, token)
	s.mu.Unlock()

	return token, nil
}

func (s *fakeTokenService) Verify(token string, purpose service.Purpose) (string, error) {
	prefix := string(purpose) + "|"
	if !strings.HasPrefix(token, prefix) {
		return "", domainerrors.ErrInvalidToken
	}

	return strings.TrimPrefix(token, prefix), nil
}

// fakeMailGateway records sends and can be told to fail.
type fakeMailGateway struct {
	mu            sync.Mutex
	verifications []string // tokens passed to SendVerificationEmail
	resets        []string // tokens passed to SendPasswordResetEmail
	failNext      error
}

func (g *fakeMailGateway) send(bucket *[]string, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.failNext; err != nil {
		g.failNext = nil

		return err
	}

	*bucket = append(*bucket, token)

	return nil
}

func (g *fakeMailGateway) SendVerificationEmail(_ context.Context, _ *entity.Account, token string) error {
	return g.send(&g.verifications, token)
}

func (g *fakeMailGateway) SendPasswordResetEmail(_ context.Context, _ *entity.Account, token string) error {
	return g.send(&g.resets, token)
}

func (g *fakeMailGateway) verificationCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.verifications)
}

// accountServiceFixtures holds all test dependencies for account service tests.
type accountServiceFixtures struct {
	service  usecase.AccountUsecase
	accounts *fakeAccountRepository
	hasher   *fakePasswordHasher
	tokens   *fakeTokenService
	mail     *fakeMailGateway
	clock    *fakeClock
}

// fakeClock is an adjustable time source shared with the service under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func createTestAccountService() accountServiceFixtures {
	accounts := newFakeAccountRepository()
	hasher := &fakePasswordHasher{}
	tokens := &fakeTokenService{}
	mail := &fakeMailGateway{}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewAccountService(AccountServiceParams{
		Accounts:     accounts,
		Hasher:       hasher,
		TokenService: tokens,
		Mail:         mail,
		Config: &config.Config{
			Auth: &config.AuthConfig{
				BcryptCost:      12,
				SessionTokenTTL: 24 * time.Hour,
				EmailTokenTTL:   15 * time.Minute,
				EmailCooldown:   60 * time.Second,
			},
		},
		Logger: logger,
	})

	concrete, _ := svc.(*accountService)
	concrete.now = clock.Now

	return accountServiceFixtures{
		service:  svc,
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		mail:     mail,
		clock:    clock,
	}
}

// register creates a verified or unverified account through the service and
// returns its id.
func (f accountServiceFixtures) register(ctx context.Context, email string, verified bool) uuid.UUID {
	_, err := f.service.Register(ctx, &usecase.RegisterInput{
		Email:     email,
		Password:  "Password123!",
		FirstName: "Test",
		LastName:  "Account",
	})
	if err != nil {
		panic(err)
	}

	canonical, err := validate.NormalizeEmail(email)
	if err != nil {
		panic(err)
	}

	account, err := f.accounts.FindByEmail(ctx, canonical)
	if err != nil {
		panic(err)
	}

	if verified {
		account.Verified = true
		if err := f.accounts.Update(ctx, account); err != nil {
			panic(err)
		}
	}

	return account.ID
}
