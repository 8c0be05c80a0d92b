package we

import "context"

type correlationKey struct{}

// WithCorrelation carries id to every publish made while executing a command
// with ctx, unless the handler sets its own correlation id.
func WithCorrelation(ctx context.Context, id CorrelationID) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

func CorrelationFrom(ctx context.Context) (CorrelationID, bool) {
	id, ok := ctx.Value(correlationKey{}).(CorrelationID)
	return id, ok && id != ""
}
