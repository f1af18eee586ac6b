package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mycyberclinics/verifysvc/domain"
)

// PurposeSignupEmail is the challenge purpose for account email verification
const PurposeSignupEmail = "signup-email"

// AccountServiceImpl implements domain.AccountService. It is the glue
// between the HTTP surface and the engine: every inbound operation goes
// through the quota limiter first, then the verification engine or the
// session layer.
type AccountServiceImpl struct {
	userRepo    domain.UserRepository
	sessionRepo domain.SessionRepository
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	verifySvc   domain.VerificationService
	limiter     domain.RateLimiter
	notifier    domain.NotificationService
	syncSvc     domain.SessionSyncService
	sessionTTL  time.Duration
}

// NewAccountService creates a new account service
func NewAccountService(
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	verifySvc domain.VerificationService,
	limiter domain.RateLimiter,
	notifier domain.NotificationService,
	syncSvc domain.SessionSyncService,
	sessionTTL time.Duration,
) domain.AccountService {
	return &AccountServiceImpl{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		verifySvc:   verifySvc,
		limiter:     limiter,
		notifier:    notifier,
		syncSvc:     syncSvc,
		sessionTTL:  sessionTTL,
	}
}

func (s *AccountServiceImpl) consume(ctx context.Context, scope, key string) error {
	decision, err := s.limiter.Consume(ctx, scope, key)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return &domain.QuotaError{Scope: scope, RetryAfter: decision.RetryAfter}
	}
	return nil
}

// Signup implements domain.AccountService
func (s *AccountServiceImpl) Signup(ctx context.Context, email, password, phone, ip string) (*domain.AuthResult, error) {
	if err := s.consume(ctx, ScopeSignupIP, ip); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existingUser != nil {
		return nil, domain.ErrUserAlreadyExists
	}

	hashedPassword, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		Phone:        phone,
		PasswordHash: hashedPassword,
		Preferences:  map[string]any{},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.issueCode(ctx, user); err != nil {
		return nil, err
	}

	return s.openSession(ctx, user)
}

// Login implements domain.AccountService
func (s *AccountServiceImpl) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.openSession(ctx, user)
}

// Logout implements domain.AccountService
func (s *AccountServiceImpl) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Delete(ctx, sessionID)
}

// ResendCode implements domain.AccountService. The outstanding challenge
// is revoked before a fresh one is issued, so the superseded code can
// never be replayed.
func (s *AccountServiceImpl) ResendCode(ctx context.Context, email, ip string) error {
	if err := s.consume(ctx, ScopeResendMail, email); err != nil {
		return err
	}
	if err := s.consume(ctx, ScopeResendIP, ip); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.verifySvc.Revoke(ctx, email, PurposeSignupEmail); err != nil {
		return err
	}
	return s.issueCode(ctx, user)
}

// ConfirmEmail implements domain.AccountService
func (s *AccountServiceImpl) ConfirmEmail(ctx context.Context, email, code, ip string) (*domain.VerificationOutcome, error) {
	if err := s.consume(ctx, ScopeVerifyIP, ip); err != nil {
		return nil, err
	}

	outcome, err := s.verifySvc.VerifyCode(ctx, email, PurposeSignupEmail, code)
	if err != nil {
		return nil, err
	}
	if outcome.Status != domain.VerificationOK {
		return outcome, nil
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to mark email verified: %w", err)
	}

	verified := true
	s.syncSvc.Propagate(ctx, user.ID, &domain.SessionPatch{EmailVerified: &verified})

	return outcome, nil
}

// CompleteOnboarding implements domain.AccountService. The durable write
// must succeed; the session fan-out is fire-and-forget.
func (s *AccountServiceImpl) CompleteOnboarding(ctx context.Context, userID uint) error {
	if err := s.userRepo.CompleteOnboarding(ctx, userID); err != nil {
		return err
	}

	done := true
	s.syncSvc.Propagate(ctx, userID, &domain.SessionPatch{OnboardingCompleted: &done})
	return nil
}

// UpdatePreferences implements domain.AccountService
func (s *AccountServiceImpl) UpdatePreferences(ctx context.Context, userID uint, prefs map[string]any) error {
	if err := s.userRepo.UpdatePreferences(ctx, userID, prefs); err != nil {
		return err
	}

	s.syncSvc.Propagate(ctx, userID, &domain.SessionPatch{Preferences: prefs})
	return nil
}

// issueCode creates a fresh challenge and hands the raw code to the
// delivery channel: SMS when the account has a phone number, email
// otherwise.
func (s *AccountServiceImpl) issueCode(ctx context.Context, user *domain.User) error {
	issued, err := s.verifySvc.CreateCode(ctx, user.Email, PurposeSignupEmail)
	if err != nil {
		return fmt.Errorf("failed to create verification code: %w", err)
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		issued.Code, issued.ExpirySeconds/60)

	if user.Phone != "" {
		err = s.notifier.SendSMS(user.Phone, body)
	} else {
		err = s.notifier.SendEmail(user.Email, "Verify your email", body)
	}
	if err != nil {
		// The challenge stays live; the client can ask for a resend.
		log.Printf("account: failed to deliver verification code to %s: %v", user.Email, err)
		return errors.New("failed to deliver verification code")
	}
	return nil
}

func (s *AccountServiceImpl) openSession(ctx context.Context, user *domain.User) (*domain.AuthResult, error) {
	now := time.Now()
	session := &domain.Session{
		ID:                  uuid.NewString(),
		UserID:              user.ID,
		EmailVerified:       user.EmailVerified,
		OnboardingCompleted: user.OnboardingCompleted,
		Preferences:         user.Preferences,
		CreatedAt:           now,
		ExpiresAt:           now.Add(s.sessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	accessToken, err := s.tokenSvc.GenerateAccessToken(user.ID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.AuthResult{
		User:        user,
		AccessToken: accessToken,
		SessionID:   session.ID,
		ExpiresIn:   int64(s.sessionTTL.Seconds()),
	}, nil
}

// Compile-time interface compliance verification
var _ domain.AccountService = (*AccountServiceImpl)(nil)
