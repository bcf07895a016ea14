package vm

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"

	"jsbind/pkg/errors"
)

// Hint selects the method order ToPrimitive tries on objects.
type Hint uint8

const (
	HintDefault Hint = iota // valueOf, then toString
	HintNumber              // valueOf, then toString
	HintString              // toString, then valueOf
)

// ToBoolean applies the falsy set: 0, -0, NaN, "", null, undefined, false.
func ToBoolean(v Value) bool { return v.IsTruthy() }

// ToPrimitive converts an object to a primitive by invoking its valueOf and
// toString members in hint order. Primitives are returned unchanged.
func ToPrimitive(v Value, hint Hint) (Value, error) {
	if !v.IsObject() {
		return v, nil
	}
	order := [2]string{"valueOf", "toString"}
	if hint == HintString {
		order = [2]string{"toString", "valueOf"}
	}
	for _, name := range order {
		method, err := getFromObject(v, name, v)
		if err != nil {
			return Undefined, err
		}
		if !method.IsCallable() {
			continue
		}
		result, err := Call(method, v, nil)
		if err != nil {
			return Undefined, err
		}
		if !result.IsObject() {
			return result, nil
		}
	}
	return Undefined, errors.NewTypeError("Cannot convert object to primitive value")
}

// ToNumber converts v to a float64 following ECMAScript ToNumber.
func ToNumber(v Value) (float64, error) {
	switch v.typ {
	case TypeNumber:
		return v.AsFloat(), nil
	case TypeUndefined:
		return math.NaN(), nil
	case TypeNull:
		return 0, nil
	case TypeBoolean:
		if v.AsBoolean() {
			return 1, nil
		}
		return 0, nil
	case TypeString:
		return StringToNumber(v.AsString()), nil
	}
	prim, err := ToPrimitive(v, HintNumber)
	if err != nil {
		return math.NaN(), err
	}
	return ToNumber(prim)
}

// ToString converts v to a string following ECMAScript ToString.
func ToString(v Value) (string, error) {
	if !v.IsObject() {
		return primitiveToString(v), nil
	}
	prim, err := ToPrimitive(v, HintString)
	if err != nil {
		return "", err
	}
	return primitiveToString(prim), nil
}

// ToPropertyKey converts a computed key to the property name it addresses.
func ToPropertyKey(v Value) (string, error) {
	if v.typ == TypeString {
		return v.AsString(), nil
	}
	return ToString(v)
}

func primitiveToString(v Value) string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		if v.AsBoolean() {
			return "true"
		}
		return "false"
	case TypeNumber:
		return NumberToString(v.AsFloat())
	case TypeString:
		return v.AsString()
	}
	return "[object]"
}

// NumberToString follows Number::toString (7.1.12.1) for radix 10.
func NumberToString(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	// -0 prints as 0
	if f == 0 {
		return "0"
	}
	absF := math.Abs(f)
	// If |f| < 1e-6 or |f| >= 1e21, use exponential notation
	if absF < 1e-6 || absF >= 1e21 {
		return cleanExponentialFormat(strconv.FormatFloat(f, 'e', -1, 64))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// cleanExponentialFormat removes leading zeros from exponent to match JS format
// e.g., "1e-07" -> "1e-7", "1e+25" -> "1e+25"
func cleanExponentialFormat(s string) string {
	i := strings.IndexAny(s, "eE")
	if i < 0 || i+1 >= len(s) || (s[i+1] != '+' && s[i+1] != '-') {
		return s
	}
	j := i + 2
	for j < len(s) && s[j] == '0' {
		j++
	}
	// If all zeros, keep one
	if j >= len(s) {
		return s[:i+2] + "0"
	}
	return s[:i+2] + s[j:]
}

// StrNumericLiteral, split into its decimal and prefixed-integer forms.
// Signs are only allowed on the decimal form; "Infinity" is case-sensitive.
var (
	decimalLiteral    = regexp2.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)$`, regexp2.ECMAScript)
	nonDecimalLiteral = regexp2.MustCompile(`^0(?:[xX][0-9a-fA-F]+|[oO][0-7]+|[bB][01]+)$`, regexp2.ECMAScript)
)

// StringToNumber converts a string to a number following ECMAScript rules.
// Whitespace-only strings are 0; anything outside the grammar is NaN.
func StringToNumber(s string) float64 {
	str := strings.TrimFunc(s, isStrWhiteSpace)
	if str == "" {
		return 0
	}

	if ok, _ := nonDecimalLiteral.MatchString(str); ok {
		base := 16
		switch str[1] {
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		n, ok := new(big.Int).SetString(str[2:], base)
		if !ok {
			return math.NaN()
		}
		f, _ := new(big.Float).SetInt(n).Float64()
		return f
	}

	if ok, _ := decimalLiteral.MatchString(str); !ok {
		return math.NaN()
	}
	switch str {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		// Out-of-range literals overflow to ±Infinity or underflow to 0,
		// which ParseFloat already returns alongside ErrRange.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

// isStrWhiteSpace matches WhiteSpace and LineTerminator code points.
func isStrWhiteSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\u00a0', '\u2028', '\u2029', '\ufeff':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// ToIntegerOrInfinity truncates toward zero; NaN becomes 0.
func ToIntegerOrInfinity(v Value) (float64, error) {
	n, err := ToNumber(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) {
		return 0, nil
	}
	return math.Trunc(n), nil
}
