/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"strings"
)

// Discover builds a field list for types that do not declare one: every
// exported struct field that is not a func, not embedded and not tagged
// `kv:"-"`. The persisted name is the `kv` tag or the lower-cased field name;
// names starting with "_" are skipped. Supported kinds are string, bool,
// integers and floats, plus pointers to them.
//
// The list is computed once, when the schema is registered.
func Discover[T Entity]() []Field {
	var zero T
	rt := reflect.TypeOf(zero)
	if rt == nil || rt.Kind() != reflect.Pointer || rt.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("type registry: cannot discover fields of %v", rt))
	}
	st := rt.Elem()

	var fields []Field
	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		if sf.Anonymous || !sf.IsExported() || sf.Type.Kind() == reflect.Func {
			continue
		}
		name := strings.ToLower(sf.Name)
		if tag, ok := sf.Tag.Lookup("kv"); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		if strings.HasPrefix(name, "_") || name == IdentifierField || !supportedKind(sf.Type) {
			continue
		}

		idx := sf.Index
		fieldName := name
		fields = append(fields, Field{
			Name: fieldName,
			Get: func(e Entity) any {
				return reflectGet(reflect.ValueOf(e).Elem().FieldByIndex(idx))
			},
			Set: func(e Entity, v any) error {
				if err := reflectSet(reflect.ValueOf(e).Elem().FieldByIndex(idx), v); err != nil {
					return fmt.Errorf("field %s: %w", fieldName, err)
				}
				return nil
			},
		})
	}
	return fields
}

func supportedKind(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func reflectGet(v reflect.Value) any {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	return v.Interface()
}

func reflectSet(v reflect.Value, decoded any) error {
	if v.Kind() == reflect.Pointer {
		if decoded == nil {
			v.SetZero()
			return nil
		}
		target := reflect.New(v.Type().Elem())
		if err := reflectSet(target.Elem(), decoded); err != nil {
			return err
		}
		v.Set(target)
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		s, err := AsString(decoded)
		if err != nil {
			return err
		}
		if s == nil {
			v.SetString("")
		} else {
			v.SetString(*s)
		}
	case reflect.Bool:
		b, err := AsBool(decoded)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := AsInt(decoded)
		if err != nil {
			return err
		}
		if v.OverflowInt(n) {
			return fmt.Errorf("%d overflows %v", n, v.Type())
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := AsInt(decoded)
		if err != nil {
			return err
		}
		if n < 0 || v.OverflowUint(uint64(n)) {
			return fmt.Errorf("%d overflows %v", n, v.Type())
		}
		v.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		f, err := AsFloat(decoded)
		if err != nil {
			return err
		}
		v.SetFloat(f)
	default:
		return fmt.Errorf("unsupported kind %v", v.Kind())
	}
	return nil
}
