package services

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/mycyberclinics/verifysvc/domain"
)

// VerificationConfig fixes the engine-wide challenge parameters
type VerificationConfig struct {
	CodeLength  int
	CodeTTL     time.Duration
	MaxAttempts int
	AttemptsTTL time.Duration
	LockoutTTL  time.Duration
}

// verifyCodeLua executes the whole lock-check -> existence-check ->
// compare -> mutate sequence server-side, so two concurrent attempts on
// the same challenge can never both observe pre-increment state.
//
// KEYS[1] = lock key, KEYS[2] = code-hash key, KEYS[3] = attempts key
// ARGV[1] = candidate hash
// ARGV[2] = max attempts
// ARGV[3] = attempts TTL seconds
// ARGV[4] = lockout TTL seconds
//
// The lock is checked before anything else: a lock always wins, even
// over a matching code.
const verifyCodeLua = `
if redis.call('EXISTS', KEYS[1]) == 1 then
  return {'locked', redis.call('TTL', KEYS[1])}
end
local stored = redis.call('GET', KEYS[2])
if not stored then
  return {'expired'}
end
if stored == ARGV[1] then
  redis.call('DEL', KEYS[2], KEYS[3])
  return {'ok'}
end
local attempts = redis.call('INCR', KEYS[3])
if attempts == 1 then
  redis.call('EXPIRE', KEYS[3], tonumber(ARGV[3]))
end
if attempts >= tonumber(ARGV[2]) then
  redis.call('SET', KEYS[1], '1', 'EX', tonumber(ARGV[4]))
  return {'failed_locked', attempts, tonumber(ARGV[4])}
end
return {'failed', attempts}
`

// VerificationServiceImpl implements domain.VerificationService against
// the shared store. Only an HMAC of each code is ever stored; the raw
// code leaves the process exactly once, toward the delivery channel.
//
// There is no fallback path here: a store outage surfaces as an error,
// because degrading verification to always-allow or always-deny would
// be worse than failing.
type VerificationServiceImpl struct {
	store  domain.SharedStore
	secret []byte
	config VerificationConfig
}

// NewVerificationService creates a new verification code engine
func NewVerificationService(store domain.SharedStore, secret string, config VerificationConfig) *VerificationServiceImpl {
	return &VerificationServiceImpl{
		store:  store,
		secret: []byte(secret),
		config: config,
	}
}

func codeKey(purpose, subjectID string) string {
	return "verify:code:" + purpose + ":" + subjectID
}

func attemptsKey(purpose, subjectID string) string {
	return "verify:att:" + purpose + ":" + subjectID
}

func lockKey(purpose, subjectID string) string {
	return "verify:lock:" + purpose + ":" + subjectID
}

// CreateCode generates a fresh numeric code, stores only its keyed hash
// with the configured TTL, and clears any previous attempt counter or
// lock for the (purpose, subject) pair.
func (s *VerificationServiceImpl) CreateCode(ctx context.Context, subjectID, purpose string) (*domain.IssuedCode, error) {
	code, err := s.generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}

	if err := s.store.SetWithExpiry(ctx, codeKey(purpose, subjectID), s.hashCode(code), s.config.CodeTTL); err != nil {
		return nil, err
	}
	if err := s.store.Del(ctx, attemptsKey(purpose, subjectID), lockKey(purpose, subjectID)); err != nil {
		return nil, err
	}

	return &domain.IssuedCode{
		Code:          code,
		ExpirySeconds: int(s.config.CodeTTL.Seconds()),
	}, nil
}

// VerifyCode runs one atomic verification attempt and maps the script
// reply onto the outcome taxonomy.
func (s *VerificationServiceImpl) VerifyCode(ctx context.Context, subjectID, purpose, candidate string) (*domain.VerificationOutcome, error) {
	raw, err := s.store.RunAtomic(ctx, verifyCodeLua,
		[]string{lockKey(purpose, subjectID), codeKey(purpose, subjectID), attemptsKey(purpose, subjectID)},
		s.hashCode(candidate),
		s.config.MaxAttempts,
		int(s.config.AttemptsTTL.Seconds()),
		int(s.config.LockoutTTL.Seconds()),
	)
	if err != nil {
		return nil, err
	}

	reply, ok := raw.([]interface{})
	if !ok || len(reply) == 0 {
		return nil, fmt.Errorf("unexpected verify script reply: %v", raw)
	}
	status, _ := reply[0].(string)

	switch status {
	case "ok":
		return &domain.VerificationOutcome{Status: domain.VerificationOK}, nil
	case "expired":
		return &domain.VerificationOutcome{Status: domain.VerificationExpired}, nil
	case "locked":
		ttl := replyInt(reply, 1)
		return &domain.VerificationOutcome{
			Status:     domain.VerificationLocked,
			RetryAfter: time.Duration(ttl) * time.Second,
		}, nil
	case "failed":
		return &domain.VerificationOutcome{
			Status:   domain.VerificationFailed,
			Attempts: int(replyInt(reply, 1)),
		}, nil
	case "failed_locked":
		return &domain.VerificationOutcome{
			Status:     domain.VerificationFailedLocked,
			Attempts:   int(replyInt(reply, 1)),
			RetryAfter: time.Duration(replyInt(reply, 2)) * time.Second,
		}, nil
	default:
		return nil, fmt.Errorf("unexpected verify script status %q", status)
	}
}

// Revoke unconditionally deletes the code hash, attempt counter, and
// lock. Revoking an absent challenge is a no-op.
func (s *VerificationServiceImpl) Revoke(ctx context.Context, subjectID, purpose string) error {
	return s.store.Del(ctx,
		codeKey(purpose, subjectID),
		attemptsKey(purpose, subjectID),
		lockKey(purpose, subjectID),
	)
}

// generateCode draws each digit independently from crypto/rand, giving
// a uniform fixed-length numeric string with no range bias.
func (s *VerificationServiceImpl) generateCode() (string, error) {
	digits := make([]byte, s.config.CodeLength)
	for i := 0; i < s.config.CodeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + num.Int64())
	}
	return string(digits), nil
}

func (s *VerificationServiceImpl) hashCode(code string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(code))
	return hex.EncodeToString(mac.Sum(nil))
}

func replyInt(reply []interface{}, idx int) int64 {
	if idx >= len(reply) {
		return 0
	}
	switch v := reply[idx].(type) {
	case int64:
		return v
	case string:
		var n int64
		fmt.Sscan(v, &n)
		return n
	default:
		return 0
	}
}

// Compile-time interface compliance verification
var _ domain.VerificationService = (*VerificationServiceImpl)(nil)
