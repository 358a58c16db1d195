/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"strconv"
)

// FieldOf adapts typed accessors into a Field.
func FieldOf[T Entity](name string, get func(T) any, set func(T, any) error) Field {
	return Field{
		Name: name,
		Get:  func(e Entity) any { return get(e.(T)) },
		Set:  func(e Entity, v any) error { return set(e.(T), v) },
	}
}

// StringField persists a nullable text attribute.
func StringField[T Entity](name string, ref func(T) **string) Field {
	return FieldOf(name,
		func(e T) any {
			if p := *ref(e); p != nil {
				return *p
			}
			return nil
		},
		func(e T, v any) error {
			s, err := AsString(v)
			if err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}
			*ref(e) = s
			return nil
		})
}

// BoolField persists a boolean attribute.
func BoolField[T Entity](name string, ref func(T) *bool) Field {
	return FieldOf(name,
		func(e T) any { return *ref(e) },
		func(e T, v any) error {
			b, err := AsBool(v)
			if err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}
			*ref(e) = b
			return nil
		})
}

// IntField persists an integer attribute as decimal text.
func IntField[T Entity](name string, ref func(T) *int64) Field {
	return FieldOf(name,
		func(e T) any { return *ref(e) },
		func(e T, v any) error {
			n, err := AsInt(v)
			if err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}
			*ref(e) = n
			return nil
		})
}

// FloatField persists a floating point attribute.
func FloatField[T Entity](name string, ref func(T) *float64) Field {
	return FieldOf(name,
		func(e T) any { return *ref(e) },
		func(e T, v any) error {
			f, err := AsFloat(v)
			if err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}
			*ref(e) = f
			return nil
		})
}

// AsString coerces a decoded value into nullable text. A decoded boolean is
// rendered back to its sentinel form, since the backend cannot tell a text
// "True" from a boolean true.
func AsString(v any) (*string, error) {
	switch tv := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &tv, nil
	case bool:
		s := "False"
		if tv {
			s = "True"
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("cannot use %T as text", v)
	}
}

// AsBool coerces a decoded value into a boolean; null is false.
func AsBool(v any) (bool, error) {
	switch tv := v.(type) {
	case nil:
		return false, nil
	case bool:
		return tv, nil
	case string:
		b, err := strconv.ParseBool(tv)
		if err != nil {
			return false, fmt.Errorf("cannot parse %q as boolean", tv)
		}
		return b, nil
	default:
		return false, fmt.Errorf("cannot use %T as boolean", v)
	}
}

// AsInt coerces a decoded value into an integer; null and empty text are 0.
func AsInt(v any) (int64, error) {
	switch tv := v.(type) {
	case nil:
		return 0, nil
	case string:
		if tv == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(tv, 10, 64)
		if err != nil {
			// Counters written by other clients may carry a float form such as "3.0".
			f, ferr := strconv.ParseFloat(tv, 64)
			if ferr != nil || f != float64(int64(f)) {
				return 0, fmt.Errorf("cannot parse %q as integer", tv)
			}
			return int64(f), nil
		}
		return n, nil
	default:
		return 0, fmt.Errorf("cannot use %T as integer", v)
	}
}

// AsFloat coerces a decoded value into a float; null and empty text are 0.
func AsFloat(v any) (float64, error) {
	switch tv := v.(type) {
	case nil:
		return 0, nil
	case string:
		if tv == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(tv, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as number", tv)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot use %T as number", v)
	}
}
