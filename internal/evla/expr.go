package evla

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"go.starlark.net/syntax"
)

// offsetTerm is the symbolic name scripts use for the tuning offset.
const offsetTerm = "tuningOffsetMHz"

// evalFieldMHz evaluates a numeric record field in MHz. Plain fields are
// float literals. Fields that mention the tuning offset are arithmetic
// expressions; they are parsed with the Starlark expression grammar and
// folded here, so only literals, the offset name, signs, parentheses and
// + - * / are accepted. Nothing is executed.
func evalFieldMHz(field string, offsetMHz float64) (float64, error) {
	if !strings.Contains(field, offsetTerm) {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid frequency %q", field)
		}
		return v, nil
	}

	expr, err := syntax.ParseExpr("field", field, 0)
	if err != nil {
		return 0, fmt.Errorf("invalid frequency expression %q: %w", field, err)
	}
	v, err := foldArith(expr, map[string]float64{offsetTerm: offsetMHz})
	if err != nil {
		return 0, fmt.Errorf("invalid frequency expression %q: %w", field, err)
	}
	return v, nil
}

func foldArith(e syntax.Expr, names map[string]float64) (float64, error) {
	switch n := e.(type) {
	case *syntax.Literal:
		switch v := n.Value.(type) {
		case int64:
			return float64(v), nil
		case *big.Int:
			f, _ := new(big.Float).SetInt(v).Float64()
			return f, nil
		case float64:
			return v, nil
		}
		return 0, fmt.Errorf("unsupported literal %s", n.Raw)

	case *syntax.Ident:
		v, ok := names[n.Name]
		if !ok {
			return 0, fmt.Errorf("unknown name %q", n.Name)
		}
		return v, nil

	case *syntax.ParenExpr:
		return foldArith(n.X, names)

	case *syntax.UnaryExpr:
		x, err := foldArith(n.X, names)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case syntax.MINUS:
			return -x, nil
		case syntax.PLUS:
			return x, nil
		}
		return 0, fmt.Errorf("unsupported operator %s", n.Op)

	case *syntax.BinaryExpr:
		x, err := foldArith(n.X, names)
		if err != nil {
			return 0, err
		}
		y, err := foldArith(n.Y, names)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case syntax.PLUS:
			return x + y, nil
		case syntax.MINUS:
			return x - y, nil
		case syntax.STAR:
			return x * y, nil
		case syntax.SLASH:
			if y == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return x / y, nil
		}
		return 0, fmt.Errorf("unsupported operator %s", n.Op)
	}
	return 0, fmt.Errorf("unsupported expression %T", e)
}
