package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrRetryable         = errors.New("operación interrumpida, reintente")
)

// NotFoundError indica que una entidad referenciada (producto, bodega, fila de stock, documento) no existe.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q no encontrado", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFound construye un NotFoundError.
func NewNotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// InsufficientStockError se produce cuando una salida supera el saldo disponible.
// Lleva el contexto suficiente para un mensaje accionable al usuario.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	WarehouseID string
	BatchNumber string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("stock insuficiente para %q en bodega %s: disponible %s, solicitado %s",
		name, e.WarehouseID, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// ConflictError violación de clave única, versión desactualizada o transición de estado inválida.
// Concurrent marca los conflictos de concurrencia, que el ejecutor de transacciones reintenta.
type ConflictError struct {
	Entity     string
	Key        string
	Concurrent bool
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicto en %s (%s)", e.Entity, e.Key)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NewConcurrentConflict conflicto por escritura concurrente sobre la misma fila.
func NewConcurrentConflict(entity, key string) *ConflictError {
	return &ConflictError{Entity: entity, Key: key, Concurrent: true}
}

// IsConcurrentConflict indica si err contiene un ConflictError de concurrencia.
func IsConcurrentConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c) && c.Concurrent
}

// ValidationError entrada mal formada que llegó al núcleo a pesar de la validación previa.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "entrada inválida: " + e.Reason
	}
	return fmt.Sprintf("entrada inválida: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidation construye un ValidationError.
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// RetryableError falla de infraestructura transitoria (serialización, deadlock, timeout).
type RetryableError struct {
	Op  string
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

func (e *RetryableError) Is(target error) bool { return target == ErrRetryable }
