// Package pattern assigns categories to imported transactions from user rules.
package pattern

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
)

// AmountCondition is how a rule compares the transaction amount.
type AmountCondition string

// Amount conditions.
const (
	AmountAny          AmountCondition = "any"
	AmountLessThan     AmountCondition = "lt"
	AmountLessEqual    AmountCondition = "le"
	AmountEqual        AmountCondition = "eq"
	AmountGreaterEqual AmountCondition = "ge"
	AmountGreaterThan  AmountCondition = "gt"
	AmountRange        AmountCondition = "range"
)

// Rule maps transactions whose description matches Pattern to Category.
//
// A config file lists rules under import.rules:
//
//	import:
//	  rules:
//	    - name: coffee
//	      pattern: "(?i)starbucks|blue bottle"
//	      regex: true
//	      category: Dining
//	    - name: rent
//	      pattern: "ACME PROPERTY MGMT"
//	      amount_condition: ge
//	      amount_value: 1000
//	      category: Rent
//	      priority: 10
type Rule struct {
	AmountValue     *decimal.Decimal       `mapstructure:"amount_value"`
	AmountMin       *decimal.Decimal       `mapstructure:"amount_min"`
	AmountMax       *decimal.Decimal       `mapstructure:"amount_max"`
	Type            *model.TransactionType `mapstructure:"type"`
	Name            string                 `mapstructure:"name"`
	Pattern         string                 `mapstructure:"pattern"`
	AmountCondition AmountCondition        `mapstructure:"amount_condition"`
	Category        string                 `mapstructure:"category"`
	Priority        int                    `mapstructure:"priority"`
	IsRegex         bool                   `mapstructure:"regex"`
}

func (r Rule) String() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Pattern
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// DecodeHook lets config files write rule amounts as numbers or strings.
func DecodeHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != decimalType {
			return data, nil
		}
		switch v := data.(type) {
		case decimal.Decimal:
			return v, nil
		case string:
			return decimal.NewFromString(v)
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		case uint64:
			return decimal.NewFromString(strconv.FormatUint(v, 10))
		case float64:
			return decimal.NewFromFloat(v), nil
		default:
			return nil, fmt.Errorf("cannot use %s as an amount", from)
		}
	}
}
