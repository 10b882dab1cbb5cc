package models

import (
	"errors"
	"fmt"
)

// NotFoundError indica que una entidad referenciada no existe o está inactiva
type NotFoundError struct {
	Recurso string
	ID      string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s no encontrado", e.Recurso)
	}
	return fmt.Sprintf("%s no encontrado: %s", e.Recurso, e.ID)
}

// NewNotFound crea un NotFoundError
func NewNotFound(recurso, id string) error {
	return &NotFoundError{Recurso: recurso, ID: id}
}

// IsNotFound reporta si err es un NotFoundError
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// InsufficientStockError indica que la cantidad pedida supera el stock vivo
type InsufficientStockError struct {
	ProductoID int64
	Solicitado int
	Disponible int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %d: solicitado %d, disponible %d",
		e.ProductoID, e.Solicitado, e.Disponible)
}

// IsInsufficientStock reporta si err es un InsufficientStockError
func IsInsufficientStock(err error) bool {
	var e *InsufficientStockError
	return errors.As(err, &e)
}

// ExpiredError indica que la ventana de cancelación ya pasó
type ExpiredError struct {
	NumeroPedido string
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("ventana de cancelación expirada para pedido %s", e.NumeroPedido)
}

// IsExpired reporta si err es un ExpiredError
func IsExpired(err error) bool {
	var e *ExpiredError
	return errors.As(err, &e)
}

// UnauthorizedError indica identidad ausente o rol no permitido
type UnauthorizedError struct {
	Motivo string
}

func (e *UnauthorizedError) Error() string {
	return e.Motivo
}

// IsUnauthorized reporta si err es un UnauthorizedError
func IsUnauthorized(err error) bool {
	var e *UnauthorizedError
	return errors.As(err, &e)
}

// ForbiddenError indica una identidad autenticada con rol no permitido
// para la operación
type ForbiddenError struct {
	Motivo string
}

func (e *ForbiddenError) Error() string {
	return e.Motivo
}

// IsForbidden reporta si err es un ForbiddenError
func IsForbidden(err error) bool {
	var e *ForbiddenError
	return errors.As(err, &e)
}

// ConflictError indica una colisión (número de pedido duplicado,
// doble decisión sobre una solicitud ya decidida)
type ConflictError struct {
	Motivo string
}

func (e *ConflictError) Error() string {
	return e.Motivo
}

// IsConflict reporta si err es un ConflictError
func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

// ErrorCode representa el código de error de la API
type ErrorCode string

const (
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrorCodeForbidden      ErrorCode = "FORBIDDEN"
	ErrorCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrorCodeConflict       ErrorCode = "CONFLICT"
	ErrorCodeStock          ErrorCode = "INSUFFICIENT_STOCK"
	ErrorCodeExpired        ErrorCode = "EXPIRED"
	ErrorCodeInternal       ErrorCode = "INTERNAL"
)

// ErrorDetail representa un detalle específico del error
type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ErrorInfo representa la información del error
type ErrorInfo struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorResponse representa la respuesta de error estandarizada
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// NewErrorResponse crea una nueva respuesta de error
func NewErrorResponse(code ErrorCode, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(code),
			Message: message,
		},
	}
}

// NewValidationError crea un error de validación con detalles
func NewValidationError(message string, details []ErrorDetail) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeInvalidRequest),
			Message: message,
			Details: details,
		},
	}
}

// NewUnauthorizedResponse crea un error de autenticación
func NewUnauthorizedResponse(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeUnauthorized, message)
}

// NewForbiddenResponse crea un error de permisos
func NewForbiddenResponse(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeForbidden, message)
}

// NewNotFoundResponse crea un error de recurso no encontrado
func NewNotFoundResponse(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeNotFound, message)
}

// NewConflictResponse crea un error de conflicto
func NewConflictResponse(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeConflict, message)
}

// NewInternalResponse crea un error interno del servidor
func NewInternalResponse(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeInternal, message)
}
