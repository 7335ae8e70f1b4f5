package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"spendtracker/src/models"
	"strings"

	"github.com/shopspring/decimal"
)

// Condition is one node of a rule's condition tree. A node either combines
// children with And/Or or compares Field against Value using Op.
type Condition struct {
	Field string      `json:"field,omitempty"`
	Op    string      `json:"op,omitempty"`
	Value any         `json:"value,omitempty"`
	And   []Condition `json:"and,omitempty"`
	Or    []Condition `json:"or,omitempty"`
}

const (
	FieldDescription = "description"
	FieldNotes       = "notes"
	FieldCredited    = "credited"
	FieldDebited     = "debited"
)

var (
	textOps    = map[string]bool{"equals": true, "contains": true, "in": true}
	numericOps = map[string]bool{"equals": true, "gt": true, "gte": true, "lt": true, "lte": true}
)

var ErrEmptyCondition = errors.New("condition must have a field or an and/or list")

// Parse decodes and validates a JSON condition tree.
func Parse(raw json.RawMessage) (Condition, error) {
	var c Condition
	if err := json.Unmarshal(raw, &c); err != nil {
		return Condition{}, fmt.Errorf("invalid conditions: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Condition{}, err
	}
	return c, nil
}

// Validate checks fields, operators and value types of every node.
func (c Condition) Validate() error {
	if len(c.And) > 0 && len(c.Or) > 0 {
		return errors.New("condition cannot mix and/or at the same level")
	}
	children := c.And
	if len(c.Or) > 0 {
		children = c.Or
	}
	if len(children) > 0 {
		if c.Field != "" {
			return errors.New("condition cannot have a field and children")
		}
		for _, child := range children {
			if err := child.Validate(); err != nil {
				return err
			}
		}
		return nil
	}

	switch c.Field {
	case "":
		return ErrEmptyCondition
	case FieldDescription, FieldNotes:
		if !textOps[c.Op] {
			return fmt.Errorf("operator %q is not supported for %s", c.Op, c.Field)
		}
		if c.Op == "in" {
			if _, ok := stringList(c.Value); !ok {
				return fmt.Errorf("%s in expects a list of strings", c.Field)
			}
		} else if _, ok := c.Value.(string); !ok {
			return fmt.Errorf("%s %s expects a string", c.Field, c.Op)
		}
	case FieldCredited, FieldDebited:
		if !numericOps[c.Op] {
			return fmt.Errorf("operator %q is not supported for %s", c.Op, c.Field)
		}
		if _, ok := toDecimal(c.Value); !ok {
			return fmt.Errorf("%s %s expects a number", c.Field, c.Op)
		}
	default:
		return fmt.Errorf("unknown field %q", c.Field)
	}
	return nil
}

// Matches evaluates the tree against t. Invalid leaves never match.
func (c Condition) Matches(t models.Transaction) bool {
	if len(c.And) > 0 {
		for _, child := range c.And {
			if !child.Matches(t) {
				return false
			}
		}
		return true
	}
	if len(c.Or) > 0 {
		for _, child := range c.Or {
			if child.Matches(t) {
				return true
			}
		}
		return false
	}

	switch c.Field {
	case FieldDescription:
		return matchText(t.Description, c.Op, c.Value)
	case FieldNotes:
		return matchText(t.Notes, c.Op, c.Value)
	case FieldCredited:
		return matchAmount(t.Credited, c.Op, c.Value)
	case FieldDebited:
		return matchAmount(t.Debited, c.Op, c.Value)
	default:
		return false
	}
}

func matchText(s, op string, value any) bool {
	switch op {
	case "equals":
		v, ok := value.(string)
		return ok && strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(v))
	case "contains":
		v, ok := value.(string)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(v))
	case "in":
		list, ok := stringList(value)
		if !ok {
			return false
		}
		for _, v := range list {
			if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(v)) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func matchAmount(amount decimal.Decimal, op string, value any) bool {
	v, ok := toDecimal(value)
	if !ok {
		return false
	}
	switch op {
	case "equals":
		return amount.Equal(v)
	case "gt":
		return amount.GreaterThan(v)
	case "gte":
		return amount.GreaterThanOrEqual(v)
	case "lt":
		return amount.LessThan(v)
	case "lte":
		return amount.LessThanOrEqual(v)
	default:
		return false
	}
}

// toDecimal accepts JSON numbers and numeric strings.
func toDecimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case decimal.Decimal:
		return v, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}

func stringList(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
