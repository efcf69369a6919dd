package records

import (
	"errors"
	"fmt"
	"strings"
)

const (
	conditionFieldRequiredMessageConstant = "condition field must be provided"
	conditionTermsRequiredMessageConstant = "condition must declare at least one term"
	conditionUnknownTermTemplateConstant  = "unsupported condition term: %s"
)

// Term is one way a field can be considered missing.
type Term string

// Supported condition terms.
const (
	TermAbsent      Term = Term("absent")
	TermNull        Term = Term("null")
	TermEmptyString Term = Term("empty-string")
)

// Condition matches documents whose Field satisfies any of Terms.
type Condition struct {
	Field string
	Terms []Term
}

// Validate ensures the condition can be translated by a record source.
func (condition Condition) Validate() error {
	if len(strings.TrimSpace(condition.Field)) == 0 {
		return errors.New(conditionFieldRequiredMessageConstant)
	}
	if len(condition.Terms) == 0 {
		return errors.New(conditionTermsRequiredMessageConstant)
	}
	for _, term := range condition.Terms {
		switch term {
		case TermAbsent, TermNull, TermEmptyString:
		default:
			return fmt.Errorf(conditionUnknownTermTemplateConstant, term)
		}
	}
	return nil
}

// Matches evaluates the condition against a single document.
func (condition Condition) Matches(document Document) bool {
	value, exists := document.Lookup(condition.Field)
	for _, term := range condition.Terms {
		switch term {
		case TermAbsent:
			if !exists {
				return true
			}
		case TermNull:
			if exists && value == nil {
				return true
			}
		case TermEmptyString:
			if stringValue, isString := value.(string); exists && isString && len(stringValue) == 0 {
				return true
			}
		}
	}
	return false
}
