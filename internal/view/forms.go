package view

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps validation failures to display messages keyed by the
// lower-cased struct field name. messages supplies the text per field;
// fields without one get a generic message.
func FieldErrors(err error, messages map[string]string) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		if err == nil {
			return nil
		}
		return map[string]string{"general": "Datos inválidos"}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if msg, ok := messages[field]; ok {
			out[field] = msg
			continue
		}
		out[field] = "Valor inválido"
	}
	return out
}
