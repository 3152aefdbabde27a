// Payload extractors. The upstream's payloads are loosely typed: numeric
// fields may arrive as strings, nested objects may be absent, and item
// variants encode size/color as a single "M / Black" style title. These
// functions normalize that shape into strict intermediate records and never
// fail on optional fields; anything non-critical that is missing degrades to
// the zero value.
package webhook

import (
	"encoding/json"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CustomerInfo is the normalized customer identity extracted from a payload.
// Any field may be empty when the upstream omitted it.
type CustomerInfo struct {
	ExternalID       string
	Name             string
	Phone            string
	Email            string
	Note             string
	Tags             string
	AcceptsMarketing bool
}

// LineItem is one normalized order or checkout line.
type LineItem struct {
	ProductName    string
	VariantTitle   string
	SKU            string
	Size           string
	Color          string
	Quantity       int
	UnitPriceMinor int64
	Measurement    string
}

// ExtractCustomerInfo pulls customer identity out of an order or checkout
// payload. It prefers the nested "customer" object and falls back to the
// payload's own email/phone and the billing/shipping address for the name.
// Missing nested objects are tolerated; the result may be entirely empty.
func ExtractCustomerInfo(p map[string]any) CustomerInfo {
	var info CustomerInfo

	cust := asMap(p["customer"])
	if cust != nil {
		info.ExternalID = str(cust["id"])
		info.Email = str(cust["email"])
		info.Phone = NormalizePhone(str(cust["phone"]))
		info.Note = str(cust["note"])
		info.Tags = str(cust["tags"])
		info.AcceptsMarketing = truthy(cust["accepts_marketing"])
		info.Name = joinName(str(cust["first_name"]), str(cust["last_name"]))
	}

	if info.Email == "" {
		info.Email = str(p["email"])
	}
	if info.Phone == "" {
		info.Phone = NormalizePhone(str(p["phone"]))
	}
	if info.Name == "" {
		for _, key := range []string{"billing_address", "shipping_address"} {
			if addr := asMap(p[key]); addr != nil {
				if n := str(addr["name"]); n != "" {
					info.Name = n
					break
				}
				if n := joinName(str(addr["first_name"]), str(addr["last_name"])); n != "" {
					info.Name = n
					break
				}
				if info.Phone == "" {
					info.Phone = NormalizePhone(str(addr["phone"]))
				}
			}
		}
	}
	if info.Name != "" {
		// cases.Caser carries internal state, so a fresh one per call keeps
		// concurrent extractions independent.
		info.Name = cases.Title(language.Und).String(strings.ToLower(info.Name))
	}
	return info
}

// ExtractLineItems maps the payload's "line_items" array into normalized
// records. Decimal price strings become integer minor units; a variant title
// of the form "Size / Color" is split into its parts. Items without a
// product title are skipped. A missing or malformed array yields nil.
func ExtractLineItems(p map[string]any) []LineItem {
	raw := asSlice(p["line_items"])
	if raw == nil {
		return nil
	}
	items := make([]LineItem, 0, len(raw))
	for _, el := range raw {
		m := asMap(el)
		if m == nil {
			continue
		}
		it := LineItem{
			ProductName:  firstStr(m, "title", "name", "product_name"),
			VariantTitle: str(m["variant_title"]),
			SKU:          str(m["sku"]),
			Quantity:     intval(m["quantity"], 1),
		}
		if it.ProductName == "" {
			continue
		}
		if n, ok := moneyMinor(m["price"]); ok {
			it.UnitPriceMinor = n
		}
		it.Size, it.Color = splitVariant(it.VariantTitle)
		if props := asSlice(m["properties"]); props != nil {
			for _, pr := range props {
				pm := asMap(pr)
				if pm == nil {
					continue
				}
				switch strings.ToLower(str(pm["name"])) {
				case "size":
					it.Size = str(pm["value"])
				case "color", "colour":
					it.Color = str(pm["value"])
				case "measurement", "measurements":
					it.Measurement = str(pm["value"])
				}
			}
		}
		items = append(items, it)
	}
	return items
}

// ExtractShippingTotal sums the payload's "shipping_lines" prices into a
// single minor-unit integer. Lines with unparseable prices are skipped.
func ExtractShippingTotal(p map[string]any) int64 {
	var total int64
	for _, el := range asSlice(p["shipping_lines"]) {
		m := asMap(el)
		if m == nil {
			continue
		}
		if n, ok := moneyMinor(m["price"]); ok {
			total += n
		}
	}
	return total
}

// ExtractRefundAmount sums a refund payload's transaction amounts into minor
// units. When the payload carries no "transactions" array it falls back to a
// top-level "amount" field. The result is an exact integer sum, never a
// floating-point approximation.
func ExtractRefundAmount(p map[string]any) int64 {
	txs := asSlice(p["transactions"])
	if txs == nil {
		if n, ok := moneyMinor(p["amount"]); ok {
			return n
		}
		return 0
	}
	var total int64
	for _, el := range txs {
		m := asMap(el)
		if m == nil {
			continue
		}
		if n, ok := moneyMinor(m["amount"]); ok {
			total += n
		}
	}
	return total
}

// ExtractResourceID returns the upstream identifier most relevant to the
// topic: the refund id for refund topics, otherwise the payload's own id,
// with the checkout token as a fallback for checkout topics. Returns "" when
// nothing usable is present.
func ExtractResourceID(topic string, p map[string]any) string {
	if id := str(p["id"]); id != "" {
		return id
	}
	if strings.HasPrefix(topic, "checkouts/") {
		return str(p["token"])
	}
	return ""
}

// NormalizePhone reduces a free-form phone string to digits with an optional
// leading "+", the canonical shape used for the customer phone lookup key.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" || out == "+" {
		return ""
	}
	return out
}

// splitVariant splits "M / Black" style variant titles into size and color.
// Single-part titles are treated as a size.
func splitVariant(title string) (size, color string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ""
	}
	parts := strings.Split(title, "/")
	size = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		color = strings.TrimSpace(parts[1])
	}
	return size, color
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// Str renders a scalar payload value as a string, "" when absent. Exported
// for the handler layer, which reads a few fields (ids, statuses,
// timestamps) straight off the validated payload.
func Str(v any) string { return str(v) }

// ---- loose-JSON accessors ----

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// str renders a scalar JSON value as a string. Numbers keep their exact
// textual form (payloads are decoded with UseNumber), so upstream numeric
// ids survive without precision loss.
func str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		// Shortest representation that round-trips; ids decoded as float64
		// keep their integral form.
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func firstStr(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := str(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func intval(v any, def int) int {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n)
		}
	case float64:
		return int(x)
	case string:
		if n, err := json.Number(strings.TrimSpace(x)).Int64(); err == nil {
			return int(n)
		}
	case int:
		return x
	}
	return def
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "yes":
			return true
		}
	case json.Number:
		return x.String() != "0"
	}
	return false
}
