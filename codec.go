/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mediacrush

import (
	"fmt"
	"strconv"
)

// Reserved sentinel strings. The backend stores text only, so these three
// values stand in for true, false and null.
const (
	SentinelTrue  = "True"
	SentinelFalse = "False"
	SentinelNone  = "None"
)

// Encode converts a native field value into its stored text.
func Encode(v any) string {
	switch tv := v.(type) {
	case nil:
		return SentinelNone
	case bool:
		if tv {
			return SentinelTrue
		}
		return SentinelFalse
	case string:
		return tv
	case []byte:
		return string(tv)
	case *string:
		if tv == nil {
			return SentinelNone
		}
		return *tv
	case int:
		return strconv.Itoa(tv)
	case int32:
		return strconv.FormatInt(int64(tv), 10)
	case int64:
		return strconv.FormatInt(tv, 10)
	case uint64:
		return strconv.FormatUint(tv, 10)
	case float32:
		return strconv.FormatFloat(float64(tv), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	case fmt.Stringer:
		return tv.String()
	default:
		return fmt.Sprint(tv)
	}
}

// Decode is the inverse of Encode's sentinel rules. It is lossy: a text value
// that is exactly "True", "False" or "None" comes back as true, false or nil.
func Decode(s string) any {
	switch s {
	case SentinelTrue:
		return true
	case SentinelFalse:
		return false
	case SentinelNone:
		return nil
	default:
		return s
	}
}
