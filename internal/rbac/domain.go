package rbac

import "context"

// Capabilities is the merged capability set of a user's roles.
type Capabilities map[string]bool

// Can reports whether capability is granted.
func (c Capabilities) Can(capability string) bool {
	return c[capability]
}

// CapabilitySource resolves the capabilities held by a user.
type CapabilitySource interface {
	Capabilities(ctx context.Context, userID int64) (Capabilities, error)
}

type capsContextKey struct{}

// ContextWithCapabilities stores resolved capabilities for downstream handlers.
func ContextWithCapabilities(ctx context.Context, caps Capabilities) context.Context {
	return context.WithValue(ctx, capsContextKey{}, caps)
}

// CapabilitiesFromContext returns the capabilities resolved by the guard, if any.
func CapabilitiesFromContext(ctx context.Context) Capabilities {
	caps, _ := ctx.Value(capsContextKey{}).(Capabilities)
	return caps
}
