package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/autotaller-api/internal/domain"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Los decimales se validan como float64 (gt=0, gte=0, ...).
		v.RegisterCustomTypeFunc(func(f reflect.Value) interface{} {
			if d, ok := f.Interface().(decimal.Decimal); ok {
				return d.InexactFloat64()
			}
			return nil
		}, decimal.Decimal{})
		// Nombres de campo según la etiqueta json.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		validate = v
	})
	return validate
}

// Struct valida s con las etiquetas `validate` y devuelve un *domain.ValidationError
// con el primer campo inválido.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return domain.NewValidation(fieldPath(fe.Namespace()), reason(fe))
	}
	return domain.NewValidation("", err.Error())
}

// fieldPath quita el nombre del struct raíz: "CreateSaleRequest.parts[0].quantity" -> "parts[0].quantity".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es requerido"
	case "gt":
		return "debe ser mayor que " + fe.Param()
	case "gte":
		return "debe ser mayor o igual que " + fe.Param()
	case "min":
		return "debe tener al menos " + fe.Param() + " elemento(s)"
	case "max":
		return "excede el máximo " + fe.Param()
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "nefield":
		return "debe ser distinto de " + fe.Param()
	default:
		return "no cumple " + fe.Tag()
	}
}
