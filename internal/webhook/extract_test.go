package webhook

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"
)

// decode parses JSON the same way the endpoint does, with UseNumber.
func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var p map[string]any
	if err := dec.Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return p
}

func TestExtractCustomerInfo_NestedCustomer(t *testing.T) {
	p := decode(t, `{
		"customer": {
			"id": 9001,
			"email": "jane@example.com",
			"phone": "+1 (415) 555-1234",
			"first_name": "JANE",
			"last_name": "doe",
			"tags": "vip",
			"note": "repeat buyer",
			"accepts_marketing": true
		}
	}`)
	info := ExtractCustomerInfo(p)
	if info.ExternalID != "9001" {
		t.Fatalf("external id = %q", info.ExternalID)
	}
	if info.Email != "jane@example.com" {
		t.Fatalf("email = %q", info.Email)
	}
	if info.Phone != "+14155551234" {
		t.Fatalf("phone = %q", info.Phone)
	}
	if info.Name != "Jane Doe" {
		t.Fatalf("name = %q", info.Name)
	}
	if info.Tags != "vip" || info.Note != "repeat buyer" || !info.AcceptsMarketing {
		t.Fatalf("attrs: %+v", info)
	}
}

func TestExtractCustomerInfo_Concurrent(t *testing.T) {
	// Deliveries are extracted in parallel; names must come out intact
	// regardless of interleaving. Run with -race.
	payloads := []struct {
		raw  string
		name string
	}{
		{`{"customer": {"first_name": "JANE", "last_name": "doe"}}`, "Jane Doe"},
		{`{"customer": {"first_name": "maya", "last_name": "K"}}`, "Maya K"},
		{`{"billing_address": {"name": "omar al-rashid"}}`, "Omar Al-Rashid"},
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				pc := payloads[i%len(payloads)]
				p := decode(t, pc.raw)
				if got := ExtractCustomerInfo(p).Name; got != pc.name {
					select {
					case errs <- got + " != " + pc.name:
					default:
					}
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	if msg, bad := <-errs; bad {
		t.Fatalf("concurrent extraction corrupted a name: %s", msg)
	}
}

func TestExtractCustomerInfo_Fallbacks(t *testing.T) {
	// No customer object; identity comes from top-level fields and
	// the billing address.
	p := decode(t, `{
		"email": "top@example.com",
		"billing_address": {"name": "sam smith"}
	}`)
	info := ExtractCustomerInfo(p)
	if info.Email != "top@example.com" {
		t.Fatalf("email fallback = %q", info.Email)
	}
	if info.Name != "Sam Smith" {
		t.Fatalf("name fallback = %q", info.Name)
	}
	if info.ExternalID != "" {
		t.Fatalf("external id should be empty, got %q", info.ExternalID)
	}

	// Entirely empty payload yields an entirely empty identity.
	empty := ExtractCustomerInfo(decode(t, `{}`))
	if empty != (CustomerInfo{}) {
		t.Fatalf("expected zero identity, got %+v", empty)
	}
}

func TestExtractLineItems(t *testing.T) {
	p := decode(t, `{
		"line_items": [
			{"title": "Linen Shirt", "variant_title": "M / Black", "sku": "LS-1", "quantity": 2, "price": "29.90"},
			{"title": "Belt", "quantity": 1, "price": "9.95",
			 "properties": [
				{"name": "Size", "value": "90cm"},
				{"name": "Colour", "value": "Brown"},
				{"name": "Measurement", "value": "waist 82"}
			 ]},
			{"variant_title": "no title, skipped", "price": "1.00"},
			"not-an-object"
		]
	}`)
	items := ExtractLineItems(p)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(items), items)
	}

	shirt := items[0]
	if shirt.ProductName != "Linen Shirt" || shirt.SKU != "LS-1" || shirt.Quantity != 2 {
		t.Fatalf("shirt: %+v", shirt)
	}
	if shirt.UnitPriceMinor != 2990 {
		t.Fatalf("shirt price = %d", shirt.UnitPriceMinor)
	}
	if shirt.Size != "M" || shirt.Color != "Black" {
		t.Fatalf("variant split: size=%q color=%q", shirt.Size, shirt.Color)
	}

	// Properties override the variant title split.
	belt := items[1]
	if belt.Size != "90cm" || belt.Color != "Brown" || belt.Measurement != "waist 82" {
		t.Fatalf("belt properties: %+v", belt)
	}
	if belt.Quantity != 1 || belt.UnitPriceMinor != 995 {
		t.Fatalf("belt: %+v", belt)
	}

	if got := ExtractLineItems(decode(t, `{}`)); got != nil {
		t.Fatalf("missing line_items should yield nil, got %+v", got)
	}
}

func TestExtractShippingTotal(t *testing.T) {
	p := decode(t, `{
		"shipping_lines": [
			{"price": "4.90"},
			{"price": "oops"},
			{"price": "0.10"}
		]
	}`)
	if got := ExtractShippingTotal(p); got != 500 {
		t.Fatalf("shipping total = %d; want 500", got)
	}
	if got := ExtractShippingTotal(decode(t, `{}`)); got != 0 {
		t.Fatalf("empty shipping total = %d", got)
	}
}

func TestExtractRefundAmount(t *testing.T) {
	withTx := decode(t, `{
		"transactions": [
			{"amount": "10.00"},
			{"amount": "2.50"}
		]
	}`)
	if got := ExtractRefundAmount(withTx); got != 1250 {
		t.Fatalf("transaction sum = %d; want 1250", got)
	}

	topLevel := decode(t, `{"amount": "7.00"}`)
	if got := ExtractRefundAmount(topLevel); got != 700 {
		t.Fatalf("top-level fallback = %d; want 700", got)
	}

	if got := ExtractRefundAmount(decode(t, `{}`)); got != 0 {
		t.Fatalf("empty refund = %d", got)
	}
}

func TestExtractResourceID(t *testing.T) {
	if got := ExtractResourceID("orders/create", decode(t, `{"id": 42}`)); got != "42" {
		t.Fatalf("id = %q", got)
	}
	// Checkout topics fall back to the token.
	if got := ExtractResourceID("checkouts/create", decode(t, `{"token": "abc123"}`)); got != "abc123" {
		t.Fatalf("token fallback = %q", got)
	}
	if got := ExtractResourceID("orders/create", decode(t, `{"token": "abc123"}`)); got != "" {
		t.Fatalf("non-checkout token should not be used, got %q", got)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"  ", ""},
		{"+1 (415) 555-1234", "+14155551234"},
		{"415.555.1234", "4155551234"},
		{"00 44 20 7946 0958", "00442079460958"},
		{"ext+123", "123"}, // "+" kept only when leading
		{"+", ""},
		{"abc", ""},
	}
	for _, tc := range cases {
		if got := NormalizePhone(tc.in); got != tc.want {
			t.Fatalf("NormalizePhone(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestStr_Scalars(t *testing.T) {
	if got := Str(json.Number("12345678901234567890")); got != "12345678901234567890" {
		t.Fatalf("json.Number precision lost: %q", got)
	}
	if got := Str("  padded  "); got != "padded" {
		t.Fatalf("string trim: %q", got)
	}
	if got := Str(float64(42)); got != "42" {
		t.Fatalf("float64 id: %q", got)
	}
	if got := Str(true); got != "true" {
		t.Fatalf("bool: %q", got)
	}
	if got := Str(nil); got != "" {
		t.Fatalf("nil: %q", got)
	}
	if got := Str([]any{1}); got != "" {
		t.Fatalf("composite: %q", got)
	}
}
