package xenoapp

import (
	"context"

	"github.com/advdv/xeno/kv"
	"github.com/carlmjohnson/requests"
	"github.com/cockroachdb/errors"
)

// Runtime provides access to app-scoped dependencies.
// Inject this into handler constructors via fx instead of pulling from context.
//
// Example:
//
//	type Handlers struct {
//	    rt *xenoapp.Runtime[Env]
//	}
//
//	func NewHandlers(rt *xenoapp.Runtime[Env]) *Handlers {
//	    return &Handlers{rt: rt}
//	}
//
//	func (h *Handlers) GetItem(c xeno.Ctx, r *xeno.Request) (*xeno.Response, error) {
//	    url, err := h.rt.Reverse("get-item", r.Param("id"))
//	    // ...
//	}
type Runtime[E Environment] struct {
	env          E
	ref          *appRef
	secretReader SecretReader
	store        kv.Store
	requests     *requests.Builder
}

// RuntimeParams holds optional dependencies for Runtime.
type RuntimeParams struct {
	SecretReader SecretReader
	Store        kv.Store
	Requests     *requests.Builder
}

// newRuntime creates a new Runtime with the given dependencies.
func newRuntime[E Environment](env E, ref *appRef, params RuntimeParams) *Runtime[E] {
	return &Runtime[E]{
		env:          env,
		ref:          ref,
		secretReader: params.SecretReader,
		store:        params.Store,
		requests:     params.Requests,
	}
}

// Env returns the environment configuration.
func (r *Runtime[E]) Env() E {
	return r.env
}

// Reverse returns the URL for a named route with the given parameters. It fails until the app is built, which
// happens after all routing functions ran.
func (r *Runtime[E]) Reverse(name string, params ...string) (string, error) {
	if r.ref == nil || r.ref.app == nil {
		return "", errors.Newf("xenoapp: cannot reverse %q before the app is built", name)
	}

	return r.ref.app.Reverse(name, params...)
}

// KV returns the key-value store selected by XENO_KV_BACKEND.
func (r *Runtime[E]) KV() kv.Store {
	return r.store
}

// NewRequest returns a fresh [requests.Builder] that sends through the instrumented transport:
//
//	err := h.rt.NewRequest().
//	    BaseURL("https://api.example.com").
//	    Path("/users").
//	    ToJSON(&users).
//	    Fetch(ctx)
func (r *Runtime[E]) NewRequest() *requests.Builder {
	if r.requests == nil {
		return requests.New()
	}

	return r.requests.Clone()
}

// Secret resolves a secret reference of the form "id" or "id#path", see [SecretRef]:
//
//	apiKey, err := h.rt.Secret(ctx, "my-api-key")
//	password, err := h.rt.Secret(ctx, "my-db-credentials#database.password")
//
// Values are cached by the reader but resolved on every call, so rotation needs no redeploy.
func (r *Runtime[E]) Secret(ctx context.Context, ref string) (string, error) {
	sref, err := ParseSecretRef(ref)
	if err != nil {
		return "", err
	}

	return sref.Resolve(ctx, r.secretReader)
}
