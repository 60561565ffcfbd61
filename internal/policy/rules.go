// Package policy evaluates password rules and drives the change-password dialog.
package policy

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Symbols is the punctuation set accepted by the symbol rule.
const Symbols = `!@#$%^&*(),.?":{}|<>`

// MinLength is the minimum password length in characters.
const MinLength = 8

type Rule string

const (
	RuleUppercase Rule = "uppercase"
	RuleLowercase Rule = "lowercase"
	RuleDigit     Rule = "digit"
	RuleSymbol    Rule = "symbol"
	RuleLength    Rule = "length"
)

// Rules is the display order.
var Rules = []Rule{RuleUppercase, RuleLowercase, RuleDigit, RuleSymbol, RuleLength}

var labels = map[Rule]string{
	RuleUppercase: "Must include a Capital Letter",
	RuleLowercase: "Must include small letters",
	RuleDigit:     "Must include a digit",
	RuleSymbol:    "Must include symbols",
	RuleLength:    "Must be at least 8 characters",
}

func (r Rule) Label() string { return labels[r] }

var (
	ErrMismatch        = errors.New("policy: new passwords do not match")
	ErrCurrentRequired = errors.New("policy: current password is required")
)

const (
	MsgRequirements    = "Please meet all password requirements"
	MsgMismatch        = "New passwords do not match"
	MsgCurrentRequired = "Please enter your current password"
)

// Results maps each rule to whether the candidate satisfies it.
type Results map[Rule]bool

// Evaluate checks candidate against every rule. Letter and digit rules match
// ASCII only.
func Evaluate(candidate string) Results {
	var upper, lower, digit, symbol bool
	for _, r := range candidate {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
		if strings.ContainsRune(Symbols, r) {
			symbol = true
		}
	}
	return Results{
		RuleUppercase: upper,
		RuleLowercase: lower,
		RuleDigit:     digit,
		RuleSymbol:    symbol,
		RuleLength:    utf8.RuneCountInString(candidate) >= MinLength,
	}
}

// Failed lists unsatisfied rules in display order.
func (r Results) Failed() []Rule {
	var out []Rule
	for _, rule := range Rules {
		if !r[rule] {
			out = append(out, rule)
		}
	}
	return out
}

func (r Results) OK() bool { return len(r.Failed()) == 0 }

// RuleError names the rules a candidate failed.
type RuleError struct {
	Failed []Rule
}

func (e *RuleError) Error() string {
	names := make([]string, 0, len(e.Failed))
	for _, r := range e.Failed {
		names = append(names, string(r))
	}
	return "policy: failed rules: " + strings.Join(names, ", ")
}

// Message is the banner text for a Check error.
func Message(err error) string {
	var ruleErr *RuleError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ruleErr):
		labels := make([]string, 0, len(ruleErr.Failed))
		for _, r := range ruleErr.Failed {
			labels = append(labels, r.Label())
		}
		return MsgRequirements + ": " + strings.Join(labels, "; ")
	case errors.Is(err, ErrMismatch):
		return MsgMismatch
	case errors.Is(err, ErrCurrentRequired):
		return MsgCurrentRequired
	}
	return err.Error()
}

// State is the dialog's input. Results is recomputed from New on every edit.
type State struct {
	Current string
	New     string
	Confirm string
	Results Results
}

// Check reports why state cannot be submitted, or nil. The rules are always
// evaluated against New; s.Results is not consulted.
func Check(s State) error {
	if failed := Evaluate(s.New).Failed(); len(failed) > 0 {
		return &RuleError{Failed: failed}
	}
	if s.Confirm != s.New {
		return ErrMismatch
	}
	if s.Current == "" {
		return ErrCurrentRequired
	}
	return nil
}

func CanSubmit(s State) bool { return Check(s) == nil }
