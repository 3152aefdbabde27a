// Shared helpers for the topic handlers: customer linkage and tolerant
// parsing of the upstream's timestamp and address shapes.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/alaaalzabargah/portal-admin/internal/repo"
	"github.com/alaaalzabargah/portal-admin/internal/sysutil"
	"github.com/alaaalzabargah/portal-admin/internal/webhook"
)

// linkCustomer resolves the payload's customer to a row id, creating the
// customer when absent. Payloads without any usable identity (no external
// id, phone, or email) link to no customer and return nil without error.
func linkCustomer(ctx context.Context, db *gorm.DB, p map[string]any) (*string, error) {
	info := webhook.ExtractCustomerInfo(p)
	rinfo := repo.CustomerInfo{
		ExternalID:       info.ExternalID,
		Name:             info.Name,
		Phone:            info.Phone,
		Email:            info.Email,
		Note:             info.Note,
		Tags:             info.Tags,
		AcceptsMarketing: info.AcceptsMarketing,
	}
	if rinfo.Empty() {
		return nil, nil
	}
	log.Debug().
		Str("email", sysutil.MaskEmail(info.Email)).
		Str("phone", sysutil.MaskPhone(info.Phone)).
		Msg("linking customer")
	id, err := repo.FindOrCreateCustomer(ctx, db, rinfo)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}

// parseTime parses the upstream's RFC3339 timestamps, returning nil for
// missing or unparseable values.
func parseTime(v any) *time.Time {
	s, _ := v.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}

// timeOrNow dereferences t or falls back to the current time.
func timeOrNow(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now().UTC()
}

// formatAddress flattens the upstream's shipping_address object into a
// single display string. Missing components are skipped.
func formatAddress(v any) string {
	addr, _ := v.(map[string]any)
	if addr == nil {
		return ""
	}
	var parts []string
	for _, key := range []string{"name", "address1", "address2", "city", "province", "country", "zip", "phone"} {
		if s, _ := addr[key].(string); strings.TrimSpace(s) != "" {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	return strings.Join(parts, ", ")
}

// metadataJSON renders a small map as the timeline metadata blob. Encoding a
// flat map of scalars cannot fail; an empty map yields "".
func metadataJSON(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}
