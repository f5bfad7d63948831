package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression represents a parsed dice expression ready to be rolled.
//
// Invariant: Count >= 1 and Sides >= 2 after a successful Parse.
type Expression struct {
	Raw      string // original input string
	Count    int    // number of dice
	Sides    int    // faces per die
	Modifier int    // flat modifier (may be negative)
}

// Min returns the lowest total the expression can roll.
func (e Expression) Min() int { return e.Count + e.Modifier }

// Max returns the highest total the expression can roll.
func (e Expression) Max() int { return e.Count*e.Sides + e.Modifier }

// Parse parses a dice expression string into an Expression.
// Supported forms: "d20", "2d6", "2d6+3", "1d8-2".
//
// Precondition: expr must be a non-empty string.
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	if expr == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}

	raw := expr
	s := strings.ToLower(expr)

	dIdx := strings.Index(s, "d")
	if dIdx < 0 {
		return Expression{}, fmt.Errorf("dice: missing 'd' in expression %q", raw)
	}

	// Count before 'd'; defaults to 1 when omitted.
	count := 1
	if countStr := s[:dIdx]; countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: %w", raw, err)
		}
		if n < 1 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: must be >= 1", raw)
		}
		count = n
	}

	// Sides and optional modifier after 'd'. The first '+' or '-' past
	// position 0 starts the modifier.
	rest := s[dIdx+1:]
	modOffset := -1
	for i := 1; i < len(rest); i++ {
		if rest[i] == '+' || rest[i] == '-' {
			modOffset = i
			break
		}
	}

	sidesStr, modStr := rest, ""
	if modOffset >= 0 {
		sidesStr, modStr = rest[:modOffset], rest[modOffset:]
	}

	sides, err := strconv.Atoi(sidesStr)
	if err != nil {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: %w", raw, err)
	}
	if sides < 2 {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: must be >= 2", raw)
	}

	modifier := 0
	if modStr != "" {
		modifier, err = strconv.Atoi(modStr)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", raw, err)
		}
	}

	return Expression{Raw: raw, Count: count, Sides: sides, Modifier: modifier}, nil
}

// MustParse parses expr and panics on error. Useful for package-level defaults.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}
