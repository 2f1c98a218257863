package entity

import (
	"fmt"

	"github.com/tu-usuario/transfers-api/internal/domain"
)

// errValidation envuelve domain.ErrValidation con el detalle del invariante violado.
func errValidation(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}
