package eval

import (
	"cmp"
	"fmt"

	"github.com/roach88/exprext/internal/ir"
)

// Compare orders two non-null values of compatible types. Integers and
// floats compare numerically; false sorts before true.
func Compare(a, b any) (int, error) {
	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return cmp.Compare(x, y), nil
		case float64:
			return cmp.Compare(float64(x), y), nil
		}
	case float64:
		switch y := b.(type) {
		case int64:
			return cmp.Compare(x, float64(y)), nil
		case float64:
			return cmp.Compare(x, y), nil
		}
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			return cmp.Compare(boolRank(x), boolRank(y)), nil
		}
	}
	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func foldInts(fn func(a, b int64) int64) func([]any) (any, error) {
	return func(vals []any) (any, error) {
		if len(vals) == 0 {
			return nil, nil
		}
		acc, ok := vals[0].(int64)
		if !ok {
			return nil, fmt.Errorf("bitwise fold over %T", vals[0])
		}
		for _, v := range vals[1:] {
			n, ok := v.(int64)
			if !ok {
				return nil, fmt.Errorf("bitwise fold over %T", v)
			}
			acc = fn(acc, n)
		}
		return acc, nil
	}
}

func sum(out ir.DataType) func([]any) (any, error) {
	return func(vals []any) (any, error) {
		if len(vals) == 0 {
			return nil, nil
		}
		if out.IsInteger() {
			var total int64
			for _, v := range vals {
				n, ok := v.(int64)
				if !ok {
					return nil, fmt.Errorf("integer sum over %T", v)
				}
				total += n
			}
			return total, nil
		}
		var total float64
		for _, v := range vals {
			f, ok := toFloat64(v)
			if !ok {
				return nil, fmt.Errorf("sum over %T", v)
			}
			total += f
		}
		return total, nil
	}
}

// extreme returns the max (sign 1) or min (sign -1).
func extreme(sign int) func([]any) (any, error) {
	return func(vals []any) (any, error) {
		if len(vals) == 0 {
			return nil, nil
		}
		best := vals[0]
		for _, v := range vals[1:] {
			c, err := Compare(v, best)
			if err != nil {
				return nil, err
			}
			if c*sign > 0 {
				best = v
			}
		}
		return best, nil
	}
}

// and3 and or3 implement SQL three-valued logic.
func and3(a []any) (any, error) {
	l, r := a[0], a[1]
	if l == false || r == false {
		return false, nil
	}
	if l == nil || r == nil {
		return nil, nil
	}
	return true, nil
}

func or3(a []any) (any, error) {
	l, r := a[0], a[1]
	if l == true || r == true {
		return true, nil
	}
	if l == nil || r == nil {
		return nil, nil
	}
	return false, nil
}

func stringFn(fn func(string) string) func([]any) (any, error) {
	return func(a []any) (any, error) {
		if a[0] == nil {
			return nil, nil
		}
		return fn(a[0].(string)), nil
	}
}

// substring takes a zero-based start and an optional length, following
// SQL substr clamping for out-of-range offsets.
func substring(a []any) (any, error) {
	if a[0] == nil || a[1] == nil || a[2] == nil {
		return nil, nil
	}
	runes := []rune(a[0].(string))
	begin := a[1].(int64) // zero-based
	end := int64(len(runes))
	if _, ok := a[2].(absent); !ok {
		n := a[2].(int64)
		if n < 0 {
			return nil, fmt.Errorf("negative substring length %d", n)
		}
		end = min(end, begin+n)
	}
	begin = max(begin, 0)
	if begin >= end {
		return "", nil
	}
	return string(runes[begin:end]), nil
}

func right(a []any) (any, error) {
	if a[0] == nil || a[1] == nil {
		return nil, nil
	}
	runes := []rune(a[0].(string))
	n := a[1].(int64)
	if n <= 0 {
		return "", nil
	}
	if n >= int64(len(runes)) {
		return string(runes), nil
	}
	return string(runes[int64(len(runes))-n:]), nil
}
