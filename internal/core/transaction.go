package core

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	USD Currency = "USD"
	INR Currency = "INR"

	// DefaultRoom is assigned when a transaction is created without a room.
	DefaultRoom = "Personal"
)

func init() {
	// Ledger files store amounts as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type (
	// Currency is a supported currency code. The set is closed: totals are
	// tracked per currency and never converted between currencies.
	Currency string

	// Transaction is a single recorded income or expense event. It is
	// validated and normalized by NewTransaction and not mutated afterwards;
	// ID is zero until a ledger assigns one.
	Transaction struct {
		ID          int64
		Amount      decimal.Decimal
		Description string
		Category    string
		IsIncome    bool
		Date        string
		Currency    Currency
		Room        string
	}

	// TransactionParams carries the raw inputs for NewTransaction.
	// Date, Currency and Room are optional and defaulted when empty.
	TransactionParams struct {
		Amount      decimal.Decimal
		Description string
		Category    string
		IsIncome    bool
		Date        string
		Currency    string
		Room        string
	}
)

var (
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrEmptyDescription = errors.New("description cannot be empty")
	ErrEmptyCategory    = errors.New("category cannot be empty")
	ErrEmptyRoom        = errors.New("room cannot be empty")
	ErrInvalidCurrency  = errors.New("currency must be USD or INR")
	ErrInvalidDate      = errors.New("date is not a valid timestamp")
	ErrInvalidUsername  = errors.New("username must be 3-32 characters of [a-zA-Z0-9_-]")
)

// dateLayouts are accepted on input. New transactions always use RFC3339.
var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,32}$`)

// ValidateUsername enforces the restricted character set used wherever a
// username is embedded into a storage path or file name.
func ValidateUsername(username string) error {
	if !usernameRe.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// ParseCurrency upper-cases the input and checks it against the closed set.
func ParseCurrency(s string) (Currency, error) {
	switch c := Currency(strings.ToUpper(strings.TrimSpace(s))); c {
	case USD, INR:
		return c, nil
	default:
		return "", ErrInvalidCurrency
	}
}

// Symbol returns the display symbol for the currency.
func (c Currency) Symbol() string {
	if c == INR {
		return "₹"
	}
	return "$"
}

// Currencies lists the supported currencies in display order.
func Currencies() []Currency {
	return []Currency{USD, INR}
}

// ParseDate parses a stored timestamp string.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// NewTransaction validates the params and returns a normalized transaction.
// Category and room are title-cased, the date defaults to now, the currency
// to USD and the room to DefaultRoom. Validation failures are returned as
// the sentinel errors above and are never silently corrected.
func NewTransaction(p TransactionParams) (Transaction, error) {
	if !p.Amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}

	description := strings.TrimSpace(p.Description)
	if description == "" {
		return Transaction{}, ErrEmptyDescription
	}

	category := titleCase(p.Category)
	if category == "" {
		return Transaction{}, ErrEmptyCategory
	}

	// An empty string means the field was omitted and takes the default;
	// a non-empty value that trims to nothing is rejected.
	currency := USD
	if p.Currency != "" {
		c, err := ParseCurrency(p.Currency)
		if err != nil {
			return Transaction{}, err
		}
		currency = c
	}

	room := DefaultRoom
	if p.Room != "" {
		room = titleCase(p.Room)
		if room == "" {
			return Transaction{}, ErrEmptyRoom
		}
	}

	date := strings.TrimSpace(p.Date)
	if date == "" {
		date = time.Now().Format(time.RFC3339)
	} else if _, err := ParseDate(date); err != nil {
		return Transaction{}, err
	}

	return Transaction{
		Amount:      p.Amount,
		Description: description,
		Category:    category,
		IsIncome:    p.IsIncome,
		Date:        date,
		Currency:    currency,
		Room:        room,
	}, nil
}

// WithID returns a copy of the transaction with the given ledger-assigned id.
func (t Transaction) WithID(id int64) Transaction {
	t.ID = id
	return t
}

// Time returns the parsed date, or the zero time if it does not parse.
// Stored dates are validated on load, so the zero case only arises for
// hand-edited files.
func (t Transaction) Time() time.Time {
	ts, err := ParseDate(t.Date)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// Type returns "Income" or "Expense" for display.
func (t Transaction) Type() string {
	if t.IsIncome {
		return "Income"
	}
	return "Expense"
}

// NormalizeLabel applies the same trim + title-case rule used for category
// and room values at construction, so filters compare like with like.
func NormalizeLabel(s string) string {
	return titleCase(s)
}

func titleCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(s)
}
