package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	Income        Category = "income"
	Food          Category = "food"
	Transport     Category = "transport"
	Shopping      Category = "shopping"
	Entertainment Category = "entertainment"
	Utilities     Category = "utilities"
	Education     Category = "education"
	Healthcare    Category = "healthcare"
	Other         Category = "other"
)

// DateLayout is the wire format of a Date.
const DateLayout = "2006-01-02"

const maxDescriptionLen = 200

type (
	// Category classifies a transaction or a budget.
	Category string

	// Date is a calendar date without a time component.
	Date struct {
		time.Time
	}

	// Transaction is an immutable ledger entry. Positive amounts are income,
	// negative amounts are expenses.
	Transaction struct {
		ID          string   `json:"id"`
		Description string   `json:"description"`
		Amount      Amount   `json:"amount"`
		Category    Category `json:"category"`
		Date        Date     `json:"date"`
	}

	// Budget is a monthly spending limit for one category.
	Budget struct {
		ID       string   `json:"id"`
		Category Category `json:"category"`
		Limit    Amount   `json:"limit"`
	}

	// Goal is a savings target tracked by hand.
	Goal struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Target     Amount `json:"target"`
		Current    Amount `json:"current"`
		TargetDate Date   `json:"targetDate"`
	}

	// TransactionInput is what a user enters for a new transaction. Amount is
	// the magnitude as typed; the sign is derived from Category.
	TransactionInput struct {
		Description string
		Amount      float64
		Category    Category
		Date        Date
	}

	BudgetInput struct {
		Category Category
		Limit    float64
	}

	GoalInput struct {
		Name       string
		Target     float64
		Current    float64
		TargetDate Date // optional
	}
)

var (
	ErrInvalidDay         = errors.New("invalid day")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyName          = errors.New("empty name")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrIncomeBudget       = errors.New("income cannot be budgeted")
	ErrNegativeLimit      = errors.New("limit cannot be negative")
	ErrNegativeTarget     = errors.New("target cannot be negative")
	ErrNegativeCurrent    = errors.New("current amount cannot be negative")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", maxDescriptionLen)
)

var categories = []Category{Income, Food, Transport, Shopping, Entertainment, Utilities, Education, Healthcare, Other}

// Categories returns every known category, income first.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// BudgetCategories returns the categories a budget can be set for.
func BudgetCategories() []Category {
	return append([]Category(nil), categories[1:]...)
}

// ParseCategory normalizes s and checks it against the known categories.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

func (c Category) IsValid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// IsEmpty reports whether the date is unset (used for optional dates).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// InMonth reports whether d falls in the same calendar month and year as t.
func (d Date) InMonth(t time.Time) bool {
	if d.IsZero() {
		return false
	}
	return d.Year() == t.Year() && d.Month() == t.Month()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (in TransactionInput) Validate() error {
	if err := in.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(in.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(in.Description) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	if !validAmount(in.Amount) || in.Amount == 0 {
		return ErrInvalidAmount
	}
	if !in.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, in.Category)
	}
	return nil
}

// NewTransaction validates in and applies the sign convention: income is
// stored positive, every other category negative. The ID is left empty for
// the owning manager to assign.
func NewTransaction(in TransactionInput) (Transaction, error) {
	if err := in.Validate(); err != nil {
		return Transaction{}, err
	}
	amount := math.Abs(in.Amount)
	if in.Category != Income {
		amount = -amount
	}
	return Transaction{
		Description: strings.TrimSpace(in.Description),
		Amount:      Amount(amount),
		Category:    in.Category,
		Date:        in.Date,
	}, nil
}

// IsIncome reports whether the transaction adds to the balance.
func (t Transaction) IsIncome() bool {
	return t.Amount > 0
}

func (in BudgetInput) Validate() error {
	if !in.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, in.Category)
	}
	if in.Category == Income {
		return ErrIncomeBudget
	}
	if !validAmount(in.Limit) {
		return ErrInvalidAmount
	}
	if in.Limit < 0 {
		return ErrNegativeLimit
	}
	return nil
}

func NewBudget(in BudgetInput) (Budget, error) {
	if err := in.Validate(); err != nil {
		return Budget{}, err
	}
	return Budget{Category: in.Category, Limit: Amount(in.Limit)}, nil
}

func (in GoalInput) Validate() error {
	if len(strings.TrimSpace(in.Name)) == 0 {
		return ErrEmptyName
	}
	if !validAmount(in.Target) || !validAmount(in.Current) {
		return ErrInvalidAmount
	}
	if in.Target < 0 {
		return ErrNegativeTarget
	}
	if in.Current < 0 {
		return ErrNegativeCurrent
	}
	if !in.TargetDate.IsEmpty() {
		if err := in.TargetDate.Validate(); err != nil {
			return fmt.Errorf("invalid target date: %w", err)
		}
	}
	return nil
}

func NewGoal(in GoalInput) (Goal, error) {
	if err := in.Validate(); err != nil {
		return Goal{}, err
	}
	return Goal{
		Name:       strings.TrimSpace(in.Name),
		Target:     Amount(in.Target),
		Current:    Amount(in.Current),
		TargetDate: in.TargetDate,
	}, nil
}

// Progress returns current/target capped at 1. Goals without a positive
// target have no progress.
func (g Goal) Progress() float64 {
	if g.Target <= 0 {
		return 0
	}
	return math.Min(float64(g.Current)/float64(g.Target), 1)
}

// Percent is the uncapped completion percentage shown on a goal card.
func (g Goal) Percent() float64 {
	if g.Target <= 0 {
		return 0
	}
	return float64(g.Current) / float64(g.Target) * 100
}
