package apify

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/voicecommerce/backend/internal/domain"
)

// Alias keys of a structured price object, in resolution order.
var (
	priceValueKeys = []string{"number", "value", "min", "max"}
	priceTextKeys  = []string{"text", "original", "display", "formatted"}
)

// Some actor runs report prices inflated to minor units. Anything above the threshold that is
// an exact multiple of the factor is scaled back. Best effort only.
var (
	inflatedPriceThreshold = decimal.NewFromInt(10_000_000)
	inflatedPriceFactor    = decimal.NewFromInt(100_000)
)

const rupiahPrefix = "Rp "

// idrPrinter groups thousands with "." as Indonesian shoppers expect.
var idrPrinter = message.NewPrinter(language.Indonesian)

// NormalizePrice turns a raw upstream price (scalar or structured object) into a numeric value
// and a display string. A non-nil error reports a price parse fault; the display text is still
// filled with the best available fallback.
func NormalizePrice(raw any) (*float64, string, error) {
	var (
		numeric any
		text    string
		textErr error
	)

	if obj, ok := raw.(map[string]any); ok {
		numeric = firstPresent(obj, priceValueKeys...)
		switch t := firstPresent(obj, priceTextKeys...).(type) {
		case nil:
		case string:
			text = t
		default:
			text, textErr = FormatCurrency(t)
		}
	} else {
		numeric = raw
	}

	value, valueErr := priceValue(numeric)

	if text == "" && numeric != nil {
		formatted, err := FormatCurrency(numeric)
		text = formatted
		if err != nil {
			return value, text, err
		}
	}

	if valueErr != nil {
		return value, text, valueErr
	}
	return value, text, textErr
}

// FormatCurrency renders a number or numeric string as a rupiah display string such as
// "Rp 186.480". Strings already carrying an "Rp" prefix pass through unchanged. When the input
// cannot be parsed the raw value's string form is returned together with ErrPriceParse.
func FormatCurrency(v any) (string, error) {
	if s, ok := v.(string); ok {
		trimmed := strings.TrimSpace(s)
		if hasRupiahPrefix(trimmed) {
			return trimmed, nil
		}
	}

	amount, err := parseAmount(v)
	if err != nil {
		return fmt.Sprint(v), err
	}

	if amount.GreaterThan(inflatedPriceThreshold) && amount.Mod(inflatedPriceFactor).IsZero() {
		amount = amount.Div(inflatedPriceFactor)
	}

	rounded := amount.RoundBank(0)
	if rounded.Abs().GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return fmt.Sprint(v), fmt.Errorf("%w: %v out of range", domain.ErrPriceParse, v)
	}

	return rupiahPrefix + idrPrinter.Sprintf("%d", rounded.IntPart()), nil
}

// priceValue converts the numeric part of a price. A nil input is not a fault.
func priceValue(v any) (*float64, error) {
	if v == nil {
		return nil, nil
	}

	if s, ok := v.(string); ok {
		v = stripRupiahPrefix(strings.TrimSpace(s))
	}

	amount, err := parseAmount(v)
	if err != nil {
		return nil, err
	}

	f, _ := amount.Float64()
	return &f, nil
}

// parseAmount accepts JSON numbers and Indonesian formatted strings ("186.480", "1.250,50").
func parseAmount(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrPriceParse, x)
		}
		return decimal.NewFromFloat(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case json.Number:
		d, err := decimal.NewFromString(string(x))
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrPriceParse, string(x))
		}
		return d, nil
	case string:
		s := strings.TrimSpace(x)
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrPriceParse, x)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported type %T", domain.ErrPriceParse, v)
	}
}

func hasRupiahPrefix(s string) bool {
	return len(s) >= 2 && strings.EqualFold(s[:2], "rp")
}

func stripRupiahPrefix(s string) string {
	if hasRupiahPrefix(s) {
		return strings.TrimSpace(s[2:])
	}
	return s
}
