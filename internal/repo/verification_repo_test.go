package repo

import (
	"context"
	"testing"
	"time"

	"github.com/moydoc/go-docgen-backend/internal/domain"
)

func TestCreateVerificationCode_SupersedesUnverified(t *testing.T) {
	db := newRepoDB(t, &domain.VerificationCode{})
	ctx := context.Background()
	exp := time.Now().UTC().Add(10 * time.Minute)

	first, err := CreateVerificationCode(ctx, db, "ivan@example.com", "111111", "email", exp)
	if err != nil {
		t.Fatalf("CreateVerificationCode: %v", err)
	}
	second, err := CreateVerificationCode(ctx, db, "ivan@example.com", "222222", "email", exp)
	if err != nil {
		t.Fatalf("CreateVerificationCode: %v", err)
	}

	// The first code is gone; only the replacement remains.
	if _, err := GetActiveVerificationCode(ctx, db, "ivan@example.com", "111111"); err != ErrNotFound {
		t.Fatalf("superseded code should be ErrNotFound, got %v", err)
	}
	got, err := GetActiveVerificationCode(ctx, db, "ivan@example.com", "222222")
	if err != nil {
		t.Fatalf("GetActiveVerificationCode: %v", err)
	}
	if got.ID != second.ID || got.ID == first.ID {
		t.Fatalf("unexpected active code: %+v", got)
	}
}

func TestCreateVerificationCode_KeepsVerifiedHistory(t *testing.T) {
	db := newRepoDB(t, &domain.VerificationCode{})
	ctx := context.Background()
	exp := time.Now().UTC().Add(10 * time.Minute)

	used, err := CreateVerificationCode(ctx, db, "+79991234567", "333333", "phone", exp)
	if err != nil {
		t.Fatalf("CreateVerificationCode: %v", err)
	}
	if err := MarkVerificationCodeUsed(ctx, db, used.ID); err != nil {
		t.Fatalf("MarkVerificationCodeUsed: %v", err)
	}

	if _, err := CreateVerificationCode(ctx, db, "+79991234567", "444444", "phone", exp); err != nil {
		t.Fatalf("CreateVerificationCode: %v", err)
	}

	// Consumed codes survive the supersede sweep.
	var count int64
	if err := db.Model(&domain.VerificationCode{}).Where("id = ?", used.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatal("verified code should not be deleted by a new send")
	}
}

func TestMarkVerificationCodeUsed_NoReplay(t *testing.T) {
	db := newRepoDB(t, &domain.VerificationCode{})
	ctx := context.Background()
	exp := time.Now().UTC().Add(10 * time.Minute)

	v, err := CreateVerificationCode(ctx, db, "a@b.ru", "555555", "email", exp)
	if err != nil {
		t.Fatalf("CreateVerificationCode: %v", err)
	}
	if err := MarkVerificationCodeUsed(ctx, db, v.ID); err != nil {
		t.Fatalf("MarkVerificationCodeUsed: %v", err)
	}

	// A used code is no longer active.
	if _, err := GetActiveVerificationCode(ctx, db, "a@b.ru", "555555"); err != ErrNotFound {
		t.Fatalf("used code should be ErrNotFound, got %v", err)
	}

	if err := MarkVerificationCodeUsed(ctx, db, "missing-id"); err != ErrNotFound {
		t.Fatalf("missing row should be ErrNotFound, got %v", err)
	}
}

func TestDeleteExpiredVerificationCodes(t *testing.T) {
	db := newRepoDB(t, &domain.VerificationCode{})
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := CreateVerificationCode(ctx, db, "old@x.ru", "111111", "email", now.Add(-time.Minute)); err != nil {
		t.Fatalf("CreateVerificationCode: %v", err)
	}
	if _, err := CreateVerificationCode(ctx, db, "new@x.ru", "222222", "email", now.Add(time.Hour)); err != nil {
		t.Fatalf("CreateVerificationCode: %v", err)
	}

	deleted, err := DeleteExpiredVerificationCodes(ctx, db, now)
	if err != nil {
		t.Fatalf("DeleteExpiredVerificationCodes: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d; want 1", deleted)
	}
	if _, err := GetActiveVerificationCode(ctx, db, "new@x.ru", "222222"); err != nil {
		t.Fatalf("live code should survive the sweep: %v", err)
	}
}
