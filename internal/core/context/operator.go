// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// Operator contains the authenticated console operator information.
// The engine treats it as read-only; lifecycle is owned by the session layer.
type Operator struct {
	AccountID string
}

type operatorContextKey struct{}

// WithOperator adds Operator to context.
func WithOperator(ctx context.Context, op *Operator) context.Context {
	return context.WithValue(ctx, operatorContextKey{}, op)
}

// GetOperator returns Operator from context.
func GetOperator(ctx context.Context) *Operator {
	if v, ok := ctx.Value(operatorContextKey{}).(*Operator); ok {
		return v
	}
	return nil
}

// GetAccountID returns the operator account ID from context or empty string.
func GetAccountID(ctx context.Context) string {
	if op := GetOperator(ctx); op != nil {
		return op.AccountID
	}
	return ""
}
