package session

import (
	"context"
	"fmt"
)

type managerKey struct{}

// NewContext returns a copy of ctx that carries m.
func NewContext(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, m)
}

// FromContext returns the Manager carried by ctx.
func FromContext(ctx context.Context) (*Manager, error) {
	const op = "session.FromContext"
	m, ok := ctx.Value(managerKey{}).(*Manager)
	if !ok || m == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNoManager)
	}
	return m, nil
}
