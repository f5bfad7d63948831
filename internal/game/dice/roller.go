package dice

import "go.uber.org/zap"

// Roll evaluates an Expression using the given Source and returns a RollResult.
//
// Precondition: expr must come from Parse (Count >= 1, Sides >= 2); src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count and
// expr.Min() <= result.Total() <= expr.Max().
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{
		Expression: expr.Raw,
		Dice:       rolled,
		Modifier:   expr.Modifier,
	}
}

// Roller wraps a Source and logger so every roll leaves a debug-level audit
// entry with expression, dice values, modifier, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll evaluates expr and logs the result at debug level.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// RollExpr parses expr and rolls it, logging the result.
//
// Precondition: expr must be a valid dice expression string.
// Postcondition: Returns a RollResult or a parse error.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}
