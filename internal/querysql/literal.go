package querysql

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/roach88/sqlhelper/internal/sanitize"
)

// TimestampLayout renders time values as MM/dd/yyyy hh:mm:ss.fffffff tt,
// with a 12-hour clock, seven fractional digits and an AM/PM suffix.
const TimestampLayout = "01/02/2006 03:04:05.0000000 PM"

// Timestamp formats t with TimestampLayout.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// value renders one value. nil is the bare keyword null in both modes;
// everything else is a placeholder (bind mode) or a quoted literal.
func (c *SQLCompiler) value(v any) (string, []any) {
	if v == nil {
		return "null", nil
	}
	if c.Bind {
		return "?", []any{BindValue(v)}
	}
	return c.Literal(v), nil
}

// Literal renders v as a sanitized, single-quoted SQL string. Text with
// non-ASCII characters gets ExtendedPrefix; nil renders as null.
// Booleans render as bare 1 or 0 and byte slices as X'..' blob literals,
// matching what BindValue passes to the driver.
func (c *SQLCompiler) Literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		if val {
			return "1"
		}
		return "0"
	case []byte:
		return "X'" + hex.EncodeToString(val) + "'"
	}
	text := literalText(v)
	prefix := ""
	if c.ExtendedPrefix != "" && sanitize.HasExtendedCharacters(text) {
		prefix = c.ExtendedPrefix
	}
	return prefix + "'" + sanitize.String(text) + "'"
}

// BindValue converts v into the argument passed to the driver in bind mode.
// Times become timestamp text, booleans the integers 1 and 0, and Stringers
// their string form, so bound and literal statements store the same values.
func BindValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return Timestamp(val)
	case *time.Time:
		if val == nil {
			return nil
		}
		return Timestamp(*val)
	case bool:
		if val {
			return int64(1)
		}
		return int64(0)
	case []byte:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return v
	}
}

func literalText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case time.Time:
		return Timestamp(val)
	case *time.Time:
		if val == nil {
			return ""
		}
		return Timestamp(*val)
	default:
		return fmt.Sprint(v)
	}
}
