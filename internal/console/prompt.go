package console

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"relational-reports/internal/apperrors"
)

const dateLayout = "2006-01-02"

func (p *Prompter) ID(label string) (int64, error) {
	s, err := p.Line(label)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.Invalid(label, "%q is not a valid id", s)
	}
	return id, nil
}

func (p *Prompter) Int(label string) (int, error) {
	s, err := p.Line(label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.Invalid(label, "%q is not a number", s)
	}
	return n, nil
}

// OptionalInt returns nil for a blank answer.
func (p *Prompter) OptionalInt(label string) (*int, error) {
	s, err := p.Line(label)
	if err != nil || s == "" {
		return nil, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, apperrors.Invalid(label, "%q is not a number", s)
	}
	return &n, nil
}

// OptionalID returns nil for a blank answer.
func (p *Prompter) OptionalID(label string) (*int64, error) {
	s, err := p.Line(label)
	if err != nil || s == "" {
		return nil, err
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return nil, apperrors.Invalid(label, "%q is not a valid id", s)
	}
	return &id, nil
}

// OptionalText returns nil for a blank answer.
func (p *Prompter) OptionalText(label string) (*string, error) {
	s, err := p.Line(label)
	if err != nil || s == "" {
		return nil, err
	}
	return &s, nil
}

func (p *Prompter) Decimal(label string) (decimal.Decimal, error) {
	s, err := p.Line(label)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, apperrors.Invalid(label, "%q is not a decimal number", s)
	}
	return d, nil
}

// Date reads a YYYY-MM-DD date in UTC; a blank answer yields fallback.
func (p *Prompter) Date(label string, fallback time.Time) (time.Time, error) {
	s, err := p.Line(label + " (YYYY-MM-DD)")
	if err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return fallback, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apperrors.Invalid(label, "%q is not a date", s)
	}
	return t, nil
}

// List splits a comma-separated answer, dropping blank entries.
func (p *Prompter) List(label string) ([]string, error) {
	s, err := p.Line(label)
	if err != nil {
		return nil, err
	}
	var items []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items, nil
}
