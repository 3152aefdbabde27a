// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the customer find-or-create operation
// the webhook pipeline uses to attach orders and checkouts to a customer.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alaaalzabargah/portal-admin/internal/domain"
)

// CustomerInfo is the minimal identity needed to find or create a customer.
// Phone must already be normalized by the caller.
type CustomerInfo struct {
	ExternalID       string
	Name             string
	Phone            string
	Email            string
	Note             string
	Tags             string
	AcceptsMarketing bool
}

// Empty reports whether the info carries no usable lookup key.
func (i CustomerInfo) Empty() bool {
	return i.ExternalID == "" && i.Phone == "" && i.Email == ""
}

// FindOrCreateCustomer returns the id of the customer matching info, looking
// up by upstream external id first, then by normalized phone, then by email.
// When no row matches, a new customer is created from info.
//
// Existing rows are never updated: the pipeline only inserts-if-absent and
// links by id; profile fields belong to the rest of the application.
//
// A concurrent create racing on the external-id or phone unique index is
// resolved by re-running the lookup, so concurrent duplicate deliveries
// converge on one row.
func FindOrCreateCustomer(ctx context.Context, db *gorm.DB, info CustomerInfo) (string, error) {
	if info.Empty() {
		return "", ErrNotFound
	}

	if id, err := lookupCustomer(ctx, db, info); err == nil {
		return id, nil
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	c := &domain.Customer{
		ID:               uuid.NewString(),
		Name:             info.Name,
		Email:            info.Email,
		Notes:            info.Note,
		Tags:             info.Tags,
		AcceptsMarketing: info.AcceptsMarketing,
		CreatedAt:        time.Now().UTC(),
	}
	if info.ExternalID != "" {
		c.ExternalID = &info.ExternalID
	}
	if info.Phone != "" {
		c.Phone = &info.Phone
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			// Lost the race; the winner's row is the customer.
			return lookupCustomer(ctx, db, info)
		}
		return "", err
	}
	return c.ID, nil
}

// lookupCustomer resolves info to an existing customer id or ErrNotFound.
func lookupCustomer(ctx context.Context, db *gorm.DB, info CustomerInfo) (string, error) {
	var c domain.Customer
	q := db.WithContext(ctx).Select("id")
	var err error
	switch {
	case info.ExternalID != "":
		err = q.Where("external_id = ?", info.ExternalID).First(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) && info.Phone != "" {
			err = db.WithContext(ctx).Select("id").Where("phone = ?", info.Phone).First(&c).Error
		}
	case info.Phone != "":
		err = q.Where("phone = ?", info.Phone).First(&c).Error
	default:
		err = q.Where("email = ?", info.Email).First(&c).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return c.ID, nil
}
