package proto

import "context"

// ContextKeyAccount is the context key for the authenticated account.
var ContextKeyAccount = &struct{ string }{"account"}

// AccountFromContext returns the authenticated account from the context.
func AccountFromContext(ctx context.Context) Account {
	if a, ok := ctx.Value(ContextKeyAccount).(Account); ok {
		return a
	}
	return nil
}

// WithAccountContext returns a new context with the authenticated account.
func WithAccountContext(ctx context.Context, a Account) context.Context {
	return context.WithValue(ctx, ContextKeyAccount, a)
}
