// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for one-time
// verification codes: creation (which invalidates prior unused codes for the
// same identifier), consume-once lookup, and expired-code cleanup.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moydoc/go-docgen-backend/internal/domain"
)

// CreateVerificationCode deletes any unverified codes for the identifier and
// inserts a fresh one with the given expiry. Superseding old codes keeps at
// most one live code per identifier.
func CreateVerificationCode(ctx context.Context, db *gorm.DB, identifier, code, codeType string, expiresAt time.Time) (*domain.VerificationCode, error) {
	v := &domain.VerificationCode{
		ID:         uuid.NewString(),
		Identifier: identifier,
		Code:       code,
		Type:       codeType,
		Verified:   false,
		ExpiresAt:  expiresAt,
		CreatedAt:  time.Now().UTC(),
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("identifier = ? AND verified = ?", identifier, false).
			Delete(&domain.VerificationCode{}).Error; err != nil {
			return err
		}
		return tx.Create(v).Error
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// GetActiveVerificationCode fetches the most recent unverified code matching
// (identifier, code). The expiry check is left to the service layer so it can
// distinguish "wrong code" from "expired code". Returns ErrNotFound when no
// match exists.
func GetActiveVerificationCode(ctx context.Context, db *gorm.DB, identifier, code string) (*domain.VerificationCode, error) {
	var v domain.VerificationCode
	err := db.WithContext(ctx).
		Where("identifier = ? AND code = ? AND verified = ?", identifier, code, false).
		Order("created_at desc").
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// MarkVerificationCodeUsed flips a code to verified so it cannot be replayed.
// Returns ErrNotFound when the row no longer exists.
func MarkVerificationCodeUsed(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.VerificationCode{}).
		Where("id = ?", id).
		Update("verified", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteExpiredVerificationCodes removes codes whose expiry has passed and
// returns the number of rows deleted. Called from the periodic sweep.
func DeleteExpiredVerificationCodes(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&domain.VerificationCode{})
	return res.RowsAffected, res.Error
}
