package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidRule is wrapped by every rule validation failure.
var ErrInvalidRule = errors.New("invalid categorization rule")

// Validate checks every rule and reports all problems at once.
func Validate(rules []Rule) error {
	var errs []error
	for i, rule := range rules {
		if err := validateRule(rule); err != nil {
			errs = append(errs, fmt.Errorf("rule %d (%s): %w", i+1, rule, err))
		}
	}
	return errors.Join(errs...)
}

func validateRule(rule Rule) error {
	if strings.TrimSpace(rule.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidRule)
	}
	if rule.Pattern == "" && (rule.AmountCondition == "" || rule.AmountCondition == AmountAny) && rule.Type == nil {
		return fmt.Errorf("%w: rule would match every transaction", ErrInvalidRule)
	}
	if rule.IsRegex {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("%w: bad pattern: %w", ErrInvalidRule, err)
		}
	}
	if rule.Type != nil && !rule.Type.IsValid() {
		return fmt.Errorf("%w: type %q must be income or expense", ErrInvalidRule, *rule.Type)
	}

	switch rule.AmountCondition {
	case "", AmountAny:
	case AmountLessThan, AmountLessEqual, AmountEqual, AmountGreaterEqual, AmountGreaterThan:
		if rule.AmountValue == nil {
			return fmt.Errorf("%w: amount_condition %s needs amount_value", ErrInvalidRule, rule.AmountCondition)
		}
	case AmountRange:
		if rule.AmountMin == nil && rule.AmountMax == nil {
			return fmt.Errorf("%w: range needs amount_min or amount_max", ErrInvalidRule)
		}
		if rule.AmountMin != nil && rule.AmountMax != nil && rule.AmountMin.GreaterThan(*rule.AmountMax) {
			return fmt.Errorf("%w: amount_min is greater than amount_max", ErrInvalidRule)
		}
	default:
		return fmt.Errorf("%w: unknown amount_condition %q", ErrInvalidRule, rule.AmountCondition)
	}

	return nil
}
