// Package apperr defines the domain error taxonomy shared by all
// controllers, and its mapping onto HTTP responses. Every error kind is
// recoverable by the caller; storage failures surface as KindInternal and
// are never swallowed.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidInput      Kind = "invalid_input"
	KindEmptyCart         Kind = "empty_cart"
	KindInsufficientStock Kind = "insufficient_stock"
	KindInvalidTransition Kind = "invalid_transition"
	KindForbidden         Kind = "forbidden"
	KindUnauthorized      Kind = "unauthorized"
	KindInternal          Kind = "internal"
)

// Error is the single error type crossing controller boundaries. Entity and
// EntityID identify the offending record where one exists (e.g. the product
// that lacked stock).
type Error struct {
	Kind     Kind
	Entity   string
	EntityID uint
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(entity string, id uint) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, EntityID: id, Message: entity + " not found"}
}

func InvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

func EmptyCart() *Error {
	return &Error{Kind: KindEmptyCart, Message: "cart is empty"}
}

func InsufficientStock(productID uint, available int) *Error {
	return &Error{
		Kind:     KindInsufficientStock,
		Entity:   "product",
		EntityID: productID,
		Message:  fmt.Sprintf("insufficient stock for product %d, available: %d", productID, available),
	}
}

func InvalidTransition(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Entity:  "order",
		Message: fmt.Sprintf("cannot transition order from %q to %q", from, to),
	}
}

// StatusConflict reports a lost race on an order status update: the status
// changed between the read and the compare-and-set write, so the requested
// transition may or may not still be valid.
func StatusConflict(orderID uint) *Error {
	return &Error{
		Kind:     KindInvalidTransition,
		Entity:   "order",
		EntityID: orderID,
		Message:  "order status changed concurrently, retry the transition",
	}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Internal wraps a storage or infrastructure failure. The caller may retry.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf extracts the taxonomy kind from any error chain.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

var statusByKind = map[Kind]int{
	KindNotFound:          http.StatusNotFound,
	KindInvalidInput:      http.StatusBadRequest,
	KindEmptyCart:         http.StatusBadRequest,
	KindInsufficientStock: http.StatusConflict,
	KindInvalidTransition: http.StatusConflict,
	KindForbidden:         http.StatusForbidden,
	KindUnauthorized:      http.StatusUnauthorized,
	KindInternal:          http.StatusInternalServerError,
}

// Respond writes err as a structured JSON error response. Internal causes
// never leak their underlying message to the client.
func Respond(c *gin.Context, err error) {
	var ae *Error
	if !errors.As(err, &ae) {
		ae = Internal("unexpected error", err)
	}

	body := gin.H{"error": ae.Message, "kind": string(ae.Kind)}
	if ae.Kind == KindInternal {
		body["error"] = "internal error"
	}
	if ae.Entity != "" {
		body["entity"] = ae.Entity
	}
	if ae.EntityID != 0 {
		body[ae.Entity+"_id"] = ae.EntityID
	}

	c.JSON(statusByKind[ae.Kind], body)
}
