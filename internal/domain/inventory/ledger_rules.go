package inventory

import (
	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
)

// ValidateEntry reglas que todo asiento debe cumplir antes de insertarse.
func ValidateEntry(e *entity.LedgerEntry) error {
	switch {
	case e == nil:
		return domain.NewValidation("entry", "es requerido")
	case e.ProductID == "":
		return domain.NewValidation("product_id", "es requerido")
	case e.WarehouseID == "":
		return domain.NewValidation("warehouse_id", "es requerido")
	case !e.Quantity.IsPositive():
		return domain.NewValidation("quantity", "debe ser mayor que cero")
	case e.Direction != entity.DirectionIn && e.Direction != entity.DirectionOut:
		return domain.NewValidation("direction", "desconocida: "+string(e.Direction))
	case !e.ReferenceType.Valid():
		return domain.NewValidation("reference_type", "desconocido: "+string(e.ReferenceType))
	case e.ReferenceID == "":
		return domain.NewValidation("reference_id", "es requerido")
	}
	return nil
}
