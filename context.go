package xeno

import "github.com/advdv/xeno/kv"

// Ctx is a ready-made application context. It optionally carries a key-value store and is cheap to copy.
type Ctx struct {
	kv kv.Store
}

// NewCtx returns a context without a store.
func NewCtx() Ctx { return Ctx{} }

// WithKV returns a copy of the context that carries s.
func (c Ctx) WithKV(s kv.Store) Ctx {
	c.kv = s
	return c
}

// KV returns the configured store or an internal error when there is none.
func (c Ctx) KV() (kv.Store, error) {
	if c.kv == nil {
		return nil, Internal("no key-value store configured")
	}

	return c.kv, nil
}
