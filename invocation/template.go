/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package invocation

import (
	"fmt"
	"strconv"
	"strings"
)

// Vars supplies named placeholder values to Bind.
type Vars map[string]any

// format expands a command template. Placeholders are "{}" for the next
// positional argument, "{N}" for the N-th and "{name}" for a Vars entry;
// "{{" and "}}" are literal braces. Automatic and explicit numbering can not
// be mixed.
func format(tmpl string, positional []any, named Vars) (string, error) {
	var b strings.Builder
	next := 0
	auto, manual := false, false

	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch {
		case c == '{' && i+1 < len(tmpl) && tmpl[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(tmpl) && tmpl[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '}':
			return "", fmt.Errorf("single '}' at offset %d", i)
		case c == '{':
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("unclosed '{' at offset %d", i)
			}
			field := tmpl[i+1 : i+1+end]
			i += end + 1

			var v any
			switch n, err := strconv.Atoi(field); {
			case field == "":
				if manual {
					return "", fmt.Errorf("cannot switch from manual to automatic field numbering")
				}
				auto = true
				if next >= len(positional) {
					return "", fmt.Errorf("missing positional argument %d", next)
				}
				v = positional[next]
				next++
			case err == nil:
				if auto {
					return "", fmt.Errorf("cannot switch from automatic to manual field numbering")
				}
				manual = true
				if n < 0 || n >= len(positional) {
					return "", fmt.Errorf("missing positional argument %d", n)
				}
				v = positional[n]
			default:
				if strings.ContainsAny(field, ":!{") {
					return "", fmt.Errorf("unsupported placeholder {%s}", field)
				}
				nv, ok := named[field]
				if !ok {
					return "", fmt.Errorf("missing named argument %q", field)
				}
				v = nv
			}
			b.WriteString(fmt.Sprint(v))
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
