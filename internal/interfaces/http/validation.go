package http

import (
	"github.com/go-playground/validator/v10"
)

// Validator valida los DTOs de entrada contra sus etiquetas `validate`. Se
// construye una vez en el arranque y se inyecta a los handlers.
type Validator struct {
	v *validator.Validate
}

// NewValidator construye el validador.
func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Check valida el DTO. Devuelve un mensaje legible y false si hay violaciones.
func (v *Validator) Check(in any) (string, bool) {
	if err := v.v.Struct(in); err != nil {
		return validationMessage(err), false
	}
	return "", true
}
