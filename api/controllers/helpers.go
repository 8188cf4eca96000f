package controllers

import (
	"strings"
	"unicode"

	pkgerrors "github.com/shohaib1996/better-edible-backend/pkg/errors"
)

const maxSearchLen = 100

func serviceUnavailable(name string) error {
	return pkgerrors.Newf(pkgerrors.CodeInternal, "%s service unavailable", name)
}

// searchTerm collapses whitespace in a store name query and caps it at
// maxSearchLen runes.
func searchTerm(raw string) string {
	term := strings.Join(strings.FieldsFunc(raw, unicode.IsSpace), " ")
	if runes := []rune(term); len(runes) > maxSearchLen {
		term = strings.TrimSpace(string(runes[:maxSearchLen]))
	}
	return term
}

// parseEnum converts an optional string through an enum parser.
func parseEnum[T any](raw *string, field string, parse func(string) (T, error)) (*T, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := parse(*raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field).WithDetails(map[string]any{"field": field})
	}
	return &v, nil
}
