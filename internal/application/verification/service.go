// Package verification implements one-time passcode issuance and checking
// for the email (and SMS) verification side channel.
package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"strconv"
	"time"

	"github.com/headless-auth-relay/internal/domain"
	"github.com/headless-auth-relay/internal/pkg/emailaddr"
)

// codeTTL is the validity window of an issued code.
const codeTTL = 10 * time.Minute

const (
	emailSubject  = "Email Verification"
	emailTemplate = `<h1>Email Verification</h1>
<p>Your verification code is: <strong>%s</strong></p>`
	smsTemplate = "Your verification code: %s"
)

var phonePattern = regexp.MustCompile(`^\+?[1-9][0-9]{6,14}$`)

// VerificationStore is the persistence surface the service needs.
type VerificationStore interface {
	Get(ctx context.Context, destination, channel string) (*domain.Verification, error)
	Put(ctx context.Context, v *domain.Verification) error
	// Consume atomically deletes a live record matching the code, or returns
	// domain.ErrInvalidOrExpiredCode.
	Consume(ctx context.Context, destination, channel, code string, now int64) error
}

// Mailer sends the email channel.
type Mailer interface {
	SendEmail(to, subject, html string) error
}

// SMSSender sends the SMS channel.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type Service interface {
	// IssueEmailCode sends a 6-digit code to the address unless an unexpired
	// one is already pending, and returns the code's expiration time.
	IssueEmailCode(ctx context.Context, email string) (time.Time, error)
	// VerifyEmailCode consumes a pending code; a consumed code cannot be replayed.
	VerifyEmailCode(ctx context.Context, email, code string) error
	IssuePhoneCode(ctx context.Context, phone string) (time.Time, error)
	VerifyPhoneCode(ctx context.Context, phone, code string) error
}

type ServiceDeps struct {
	Verifications VerificationStore
	Mailer        Mailer
	SMSSender     SMSSender
}

type service struct {
	verifications VerificationStore
	mailer        Mailer
	smsSender     SMSSender
}

func NewService(deps ServiceDeps) Service {
	return &service{
		verifications: deps.Verifications,
		mailer:        deps.Mailer,
		smsSender:     deps.SMSSender,
	}
}

func (s *service) IssueEmailCode(ctx context.Context, email string) (time.Time, error) {
	if err := emailaddr.Validate(email); err != nil {
		return time.Time{}, err
	}
	return s.issue(ctx, email, domain.ChannelEmail, func(code string) error {
		return s.mailer.SendEmail(email, emailSubject, fmt.Sprintf(emailTemplate, code))
	})
}

func (s *service) VerifyEmailCode(ctx context.Context, email, code string) error {
	if err := checkCodeFormat(code); err != nil {
		return err
	}
	if err := emailaddr.Validate(email); err != nil {
		return err
	}
	return s.verifications.Consume(ctx, email, domain.ChannelEmail, code, time.Now().Unix())
}

func (s *service) IssuePhoneCode(ctx context.Context, phone string) (time.Time, error) {
	if err := validatePhone(phone); err != nil {
		return time.Time{}, err
	}
	return s.issue(ctx, phone, domain.ChannelSMS, func(code string) error {
		return s.smsSender.SendSMS(ctx, phone, fmt.Sprintf(smsTemplate, code))
	})
}

func (s *service) VerifyPhoneCode(ctx context.Context, phone, code string) error {
	if err := checkCodeFormat(code); err != nil {
		return err
	}
	if err := validatePhone(phone); err != nil {
		return err
	}
	return s.verifications.Consume(ctx, phone, domain.ChannelSMS, code, time.Now().Unix())
}

// issue implements the idempotence rule: an unexpired pending code is
// returned as-is with no new delivery; a missing or expired one is replaced
// in place and delivered exactly once.
func (s *service) issue(ctx context.Context, destination, channel string, send func(code string) error) (time.Time, error) {
	now := time.Now()

	existing, err := s.verifications.Get(ctx, destination, channel)
	if err == nil && existing.ExpiresAt > now.Unix() {
		return time.Unix(existing.ExpiresAt, 0), nil
	}

	code, err := newCode()
	if err != nil {
		return time.Time{}, err
	}
	expiresAt := now.Add(codeTTL)

	if err := send(code); err != nil {
		slog.Error("failed to deliver verification code", "channel", channel, "err", err)
		return time.Time{}, fmt.Errorf("failed to send verification code: %w", domain.ErrUpstream)
	}

	v := &domain.Verification{
		Destination: destination,
		Channel:     channel,
		Code:        code,
		ExpiresAt:   expiresAt.Unix(),
	}
	if err := s.verifications.Put(ctx, v); err != nil {
		return time.Time{}, err
	}
	return expiresAt, nil
}

// newCode draws a uniform random 6-digit code in [100000, 999999].
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return strconv.FormatInt(100000+n.Int64(), 10), nil
}

// checkCodeFormat rejects malformed codes before any store lookup.
func checkCodeFormat(code string) error {
	if len(code) != 6 {
		return fmt.Errorf("Invalid code: %w", domain.ErrBadRequest)
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return fmt.Errorf("Invalid code: %w", domain.ErrBadRequest)
		}
	}
	return nil
}

func validatePhone(phone string) error {
	if phone == "" || !phonePattern.MatchString(phone) {
		return fmt.Errorf("Please enter a valid phone number in international format, like +15551234567: %w", domain.ErrBadRequest)
	}
	return nil
}
