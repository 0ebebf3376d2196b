// Package services – VerificationService
//
// This file implements one-time verification codes for email and phone
// confirmation: 6-digit codes with an expiry, delivered through the outbound
// senders, consumed exactly once. Creating a code supersedes any unused code
// for the same identifier. A periodic sweep deletes expired rows.
package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/moydoc/go-docgen-backend/internal/repo"
)

// Sender delivers a short message to a recipient over one channel (email or
// SMS). Implementations run in dev mode when unconfigured: they log the
// message and report success.
type Sender interface {
	Send(ctx context.Context, to, message string) error
}

// VerificationService creates, delivers, and checks one-time codes.
type VerificationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Email delivers codes to email identifiers.
	Email Sender
	// SMS delivers codes to phone identifiers.
	SMS Sender
	// CodeTTL is how long a code stays valid.
	CodeTTL time.Duration
}

// NewVerificationService constructs a VerificationService. A zero ttl falls
// back to 10 minutes.
func NewVerificationService(db *gorm.DB, email, sms Sender, ttl time.Duration) *VerificationService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &VerificationService{DB: db, Email: email, SMS: sms, CodeTTL: ttl}
}

// generateCode returns a random 6-digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Send creates a fresh code for the identifier and delivers it over the
// matching channel (email when the identifier contains '@', SMS otherwise).
// Delivery is attempted twice; after the retry fails, the code is logged for
// operator visibility and ErrSendFailed is returned so the transport can
// answer "try again later" without losing the code.
func (s *VerificationService) Send(ctx context.Context, identifier string) error {
	identifier = strings.TrimSpace(identifier)

	codeType := "phone"
	sender := s.SMS
	if strings.Contains(identifier, "@") {
		codeType = "email"
		sender = s.Email
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	if _, err := repo.CreateVerificationCode(ctx, s.DB, identifier, code, codeType, time.Now().UTC().Add(s.CodeTTL)); err != nil {
		return err
	}

	message := fmt.Sprintf("Ваш код подтверждения: %s", code)
	sendErr := sender.Send(ctx, identifier, message)
	if sendErr != nil {
		// Single retry on transient failure.
		sendErr = sender.Send(ctx, identifier, message)
	}
	if sendErr != nil {
		log.Error().
			Err(sendErr).
			Str("identifier", identifier).
			Str("code", code).
			Msg("verification delivery failed; code logged for operator")
		return ErrSendFailed
	}
	return nil
}

// Verify consumes a code for the identifier. A non-matching code yields
// ErrCodeInvalid, a matching but stale one ErrCodeExpired; a valid code is
// marked used so it cannot be replayed.
func (s *VerificationService) Verify(ctx context.Context, identifier, code string) error {
	v, err := repo.GetActiveVerificationCode(ctx, s.DB, strings.TrimSpace(identifier), strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCodeInvalid
		}
		return err
	}
	if v.ExpiresAt.Before(time.Now().UTC()) {
		return ErrCodeExpired
	}
	return repo.MarkVerificationCodeUsed(ctx, s.DB, v.ID)
}

// RunSweeper deletes expired codes every interval until ctx is cancelled.
// Intended to be started once from main in its own goroutine.
func (s *VerificationService) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.DeleteExpiredVerificationCodes(ctx, s.DB, now.UTC())
			if err != nil {
				log.Error().Err(err).Msg("verification sweep failed")
				continue
			}
			if n > 0 {
				log.Info().Int64("deleted", n).Msg("expired verification codes removed")
			}
		}
	}
}
