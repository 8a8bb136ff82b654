package handlebar

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToJSON serializes a view compactly (no whitespace between elements).
// Object members whose views are transient, such as compiled templates
// embedded in a model, are skipped.
func ToJSON(v View) string {
	var buf strings.Builder
	writeJSON(&buf, v)
	return buf.String()
}

func writeJSON(buf *strings.Builder, v View) {
	switch v.Kind() {
	case Null:
		buf.WriteString("null")
	case Boolean:
		buf.WriteString(strconv.FormatBool(v.AsBool()))
	case Number:
		buf.WriteString(formatNumber(v.AsNumber()))
	case String:
		buf.WriteString(quoteJSON(v.AsString()))
	case Array:
		buf.WriteByte('[')
		first := true
		v.EachItem(func(_ int, item View) {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			writeJSON(buf, item)
		})
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		first := true
		v.EachMember(func(key string, member View) {
			if member.Transient() {
				return
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			buf.WriteString(quoteJSON(key))
			buf.WriteByte(':')
			writeJSON(buf, member)
		})
		buf.WriteByte('}')
	}
}

func quoteJSON(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		// Marshal of a string cannot fail.
		return `""`
	}
	return string(b)
}

// formatNumber renders a float the way encoding/json does: plain decimal
// notation in the common range, exponent notation outside it, and no
// trailing ".0" on integral values.
func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}
	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	return strconv.FormatFloat(f, format, -1, 64)
}
