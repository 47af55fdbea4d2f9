package middleware

import "context"

// RequestMeta is the network context attached to every audit entry.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type metaKey struct{}

func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, metaKey{}, m)
}

func RequestMetaFrom(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(metaKey{}).(RequestMeta); ok {
		return v
	}
	return RequestMeta{}
}
