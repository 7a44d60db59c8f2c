// Package normalize maps raw provider records into canonical trades.
// All functions are pure: no I/O, no shared state.
package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"disclosure-sync/internal/domain"
	"disclosure-sync/internal/fmp"
)

// dateLayout is the provider's date format.
const dateLayout = "2006-01-02"

// Canonical is the normalized form of one raw record: the trade plus the
// not-yet-resolved trader identity. The reconciliation engine resolves
// Trader and Ticker to IDs and fills Trade.TraderID.
type Canonical struct {
	Trader     domain.Trader // ID zero until resolved
	TickerName *string       // best-known instrument name, nil if absent
	Trade      domain.Trade  // TraderID zero until resolved
}

// Congressional normalizes one senate-latest or house-latest record.
// kind must be KindSenate or KindHouse.
func Congressional(raw fmp.CongressionalTrade, kind domain.TraderKind) (*Canonical, error) {
	if raw.Symbol == "" {
		return nil, fmt.Errorf("missing symbol")
	}

	txDate, err := time.Parse(dateLayout, raw.TransactionDate)
	if err != nil {
		return nil, fmt.Errorf("parse transaction date %q: %w", raw.TransactionDate, err)
	}

	var filingDate *time.Time
	if d, err := time.Parse(dateLayout, raw.DateReceived); err == nil {
		filingDate = &d
	}

	state, district := splitDistrict(raw.District, kind)

	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal raw payload: %w", err)
	}

	name := strings.TrimSpace(raw.FirstName + " " + raw.LastName)
	if name == "" {
		return nil, fmt.Errorf("missing trader name")
	}

	var tickerName *string
	if raw.AssetDescription != "" {
		desc := raw.AssetDescription
		tickerName = &desc
	}

	return &Canonical{
		Trader: domain.Trader{
			DisplayName: name,
			Kind:        kind,
			StateCode:   state,
			District:    district,
		},
		TickerName: tickerName,
		Trade: domain.Trade{
			TraderType:      domain.TraderCongressional,
			Symbol:          raw.Symbol,
			TransactionDate: txDate,
			TransactionType: ParseTransactionType(raw.Type),
			AmountRange:     raw.Amount,
			EstimatedValue:  ParseAmountRange(raw.Amount),
			FilingDate:      filingDate,
			RawPayload:      payload,
		},
	}, nil
}

// Insider normalizes one insider-trading record. The provider reports
// numeric share/price fields, so the estimated value is shares*price and the
// amount range is synthesized for display.
func Insider(raw fmp.InsiderTrade) (*Canonical, error) {
	if raw.Symbol == "" {
		return nil, fmt.Errorf("missing symbol")
	}
	if raw.ReportingName == "" {
		return nil, fmt.Errorf("missing reporting name")
	}

	txDate, err := time.Parse(dateLayout, raw.TransactionDate)
	if err != nil {
		return nil, fmt.Errorf("parse transaction date %q: %w", raw.TransactionDate, err)
	}

	var filingDate *time.Time
	// Filing dates sometimes carry a time component; take the date part.
	if d, err := time.Parse(dateLayout, firstField(raw.FilingDate)); err == nil {
		filingDate = &d
	}

	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal raw payload: %w", err)
	}

	var value *float64
	amountRange := ""
	if raw.SecuritiesTransacted > 0 && raw.Price > 0 {
		v := raw.SecuritiesTransacted * raw.Price
		value = &v
		amountRange = fmt.Sprintf("%.0f @ %.2f", raw.SecuritiesTransacted, raw.Price)
	}

	var tickerName *string
	if raw.SecurityName != "" {
		name := raw.SecurityName
		tickerName = &name
	}

	return &Canonical{
		Trader: domain.Trader{
			DisplayName: raw.ReportingName,
			Kind:        domain.KindInsider,
		},
		TickerName: tickerName,
		Trade: domain.Trade{
			TraderType:      domain.TraderCorporate,
			Symbol:          raw.Symbol,
			TransactionDate: txDate,
			TransactionType: ParseTransactionType(raw.TransactionType),
			AmountRange:     amountRange,
			EstimatedValue:  value,
			FilingDate:      filingDate,
			RawPayload:      payload,
		},
	}, nil
}

// ParseTransactionType classifies a free-text type string. Matching is
// substring-based and case-insensitive. Exchange is the catch-all, not a
// true third category.
func ParseTransactionType(s string) domain.TransactionType {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "purchase"), strings.Contains(lower, "buy"):
		return domain.TransactionBuy
	case strings.Contains(lower, "sale"), strings.Contains(lower, "sell"):
		return domain.TransactionSell
	default:
		return domain.TransactionExchange
	}
}

// amountToken matches one numeric token, with optional thousands separators
// and decimals, inside a free-text range string. The comma form requires at
// least one separator group so a plain run of digits stays a single token.
var amountToken = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)

// ParseAmountRange extracts an estimated value from a free-text amount range
// such as "$1,001 - $15,000". One numeric token yields that value, two yield
// the midpoint, none yields nil (absent, not zero).
func ParseAmountRange(s string) *float64 {
	tokens := amountToken.FindAllString(s, 2)
	if len(tokens) == 0 {
		return nil
	}

	lo, err := strconv.ParseFloat(strings.ReplaceAll(tokens[0], ",", ""), 64)
	if err != nil {
		return nil
	}

	if len(tokens) == 1 {
		return &lo
	}

	hi, err := strconv.ParseFloat(strings.ReplaceAll(tokens[1], ",", ""), 64)
	if err != nil {
		return &lo
	}

	mid := (lo + hi) / 2
	return &mid
}

// splitDistrict decodes the chamber-specific district field. For the Senate
// the field is the two-letter state code. For the House it is the state code
// followed by the district number; a missing number means no district
// (at-large or unreported).
func splitDistrict(s string, kind domain.TraderKind) (*string, *int) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return nil, nil
	}

	state := strings.ToUpper(s[:2])

	if kind == domain.KindSenate {
		return &state, nil
	}

	rest := strings.TrimSpace(s[2:])
	if rest == "" {
		return &state, nil
	}

	n, err := strconv.Atoi(rest)
	if err != nil {
		return &state, nil
	}
	return &state, &n
}

// firstField returns the leading whitespace-delimited field of s, so date
// strings like "2024-01-02 00:00:00" parse with a date-only layout.
func firstField(s string) string {
	if i := strings.IndexByte(s, ' '); i > 0 {
		return s[:i]
	}
	return s
}
