package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DateLayout is the ISO calendar date layout used for every stored date.
const DateLayout = "2006-01-02"

const (
	Income  TransactionType = "Income"
	Expense TransactionType = "Expense"
)

type (
	TransactionType string

	Transaction struct {
		ID            string          `json:"id"`
		Type          TransactionType `json:"type"`
		Date          string          `json:"date"`
		Description   string          `json:"description"`
		Amount        Amount          `json:"amount"`
		Category      string          `json:"category"`
		PaymentMethod string          `json:"payment_method,omitempty"`
	}

	Investment struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Type        string `json:"type"`
		Amount      Amount `json:"amount"`
		Description string `json:"description"`
		CreatedDate string `json:"created_date"`
	}

	Config struct {
		DisplayName string `json:"display_name"`
	}

	User struct {
		Username     string
		PasswordHash string
	}
)

var (
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrDescriptionLong  = errors.New("description too long")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrEmptyName        = errors.New("empty investment name")
	ErrInvalidUsername  = errors.New("invalid username")
	ErrEmptyPassword    = errors.New("empty password")
)

// MaxDescriptionLen bounds descriptions, counted in characters.
const MaxDescriptionLen = 200

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{2,31}$`)

// Valid reports whether t is one of the two known transaction types.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Label returns the display label used in the UI and in exports.
func (t TransactionType) Label() string {
	switch t {
	case Income:
		return "Receita"
	case Expense:
		return "Despesa"
	default:
		return string(t)
	}
}

// ParseTransactionType accepts the stored value or the display label.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.TrimSpace(s) {
	case string(Income), "Receita":
		return Income, nil
	case string(Expense), "Despesa":
		return Expense, nil
	default:
		return "", ErrInvalidType
	}
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// NewID returns a fresh opaque record identifier.
func NewID() string {
	return uuid.NewString()
}

// Day returns the transaction date as a UTC midnight time.
func (t Transaction) Day() (time.Time, error) {
	return ParseDate(t.Date)
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if _, err := ParseDate(t.Date); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLen {
		return ErrDescriptionLong
	}
	if _, err := t.Amount.Decimal(); err != nil {
		return err
	}
	if !IsValidCategory(t.Type, t.Category) {
		return ErrUnknownCategory
	}
	return nil
}

func (i Investment) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(i.Description) > MaxDescriptionLen {
		return ErrDescriptionLong
	}
	if _, err := i.Amount.Decimal(); err != nil {
		return err
	}
	if _, err := ParseDate(i.CreatedDate); err != nil {
		return err
	}
	return nil
}

// ValidateUsername checks that a username is safe to use as a storage key
// and as part of a file name.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}
