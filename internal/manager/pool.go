package manager

import "github.com/rmorin/wsbridge/internal/connection"

// pool is the ordered candidate set: one primary plus zero or more
// fallbacks. active is nil or a reference to one of them, and is reassigned
// only inside the manager's connect-with-fallback routine.
type pool struct {
	primary  *connection.Connection
	fallback []*connection.Connection
	active   *connection.Connection
}

// candidates returns the connect order: primary first, then fallbacks in
// declared order.
func (p *pool) candidates() []*connection.Connection {
	if p.primary == nil {
		return nil
	}
	out := make([]*connection.Connection, 0, 1+len(p.fallback))
	out = append(out, p.primary)
	out = append(out, p.fallback...)
	return out
}
