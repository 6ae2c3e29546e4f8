// Package jsonx walks loosely typed JSON documents decoded into any.
// Every lookup is optional: a missing key, a null or a value of the wrong
// type at any level yields "absent" instead of an error.
package jsonx

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/PaesslerAG/jsonpath"
)

// Path is a compiled JSONPath expression such as "$.microrregiao.mesorregiao.UF.regiao.nome".
type Path struct {
	eval func(context.Context, any) (any, error)
}

// Compile parses expr.
func Compile(expr string) (Path, error) {
	eval, err := jsonpath.New(expr)
	if err != nil {
		return Path{}, err
	}
	return Path{eval: eval}, nil
}

// MustCompile is like Compile but panics on a malformed expression.
func MustCompile(expr string) Path {
	p, err := Compile(expr)
	if err != nil {
		panic("jsonx: " + err.Error())
	}
	return p
}

// Lookup returns the value at p, or false when any level is missing.
func (p Path) Lookup(doc any) (any, bool) {
	if p.eval == nil || doc == nil {
		return nil, false
	}
	v, err := p.eval(context.Background(), doc)
	if err != nil || v == nil {
		return nil, false
	}
	return v, true
}

// Text returns the string at p. Non-string values count as absent.
func (p Path) Text(doc any) (string, bool) {
	v, ok := p.Lookup(doc)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Field returns obj[key] when it is a string.
func Field(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// Truthy reports whether v is boolean true or the string "true".
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(t)
		return err == nil && b
	default:
		return false
	}
}

// Int converts an integer JSON number or a decimal string to int.
// Fractional numbers and non-numeric strings are rejected.
func Int(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		n, err := strconv.ParseInt(t.String(), 10, 64)
		if err != nil {
			return 0, false
		}
		return int(n), true
	case float64:
		if t != float64(int64(t)) {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
