// Command xeno-hello is a small HTTP service built on xenoapp. It runs locally or behind AWS Lambda Web Adapter.
package main

import (
	"net/http"

	"github.com/advdv/xeno"
	"github.com/advdv/xeno/extract"
	"github.com/advdv/xeno/kv"
	"github.com/advdv/xeno/middleware"
	"github.com/advdv/xeno/xenoapp"
	"github.com/cockroachdb/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Env is the service configuration.
type Env struct {
	xenoapp.BaseEnvironment
	Greeting string `env:"HELLO_GREETING" envDefault:"Hello"`
}

type handlers struct {
	rt *xenoapp.Runtime[Env]
}

func newHandlers(rt *xenoapp.Runtime[Env]) *handlers {
	return &handlers{rt: rt}
}

func (h *handlers) index(xeno.Ctx, *xeno.Request) (*xeno.Response, error) {
	return xeno.Text(h.rt.Env().Greeting + ", World!"), nil
}

type userParams struct {
	ID string `path:"id"`
}

type profile struct {
	Name string `json:"name"`
}

func (h *handlers) getUser(c xeno.Ctx, r *xeno.Request) (*xeno.Response, error) {
	p, err := extract.Path[userParams](r)
	if err != nil {
		return nil, err
	}

	store, err := c.KV()
	if err != nil {
		return nil, err
	}

	name, err := store.Get(r.Context(), "users/"+p.ID)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, xeno.NotFound()
	} else if err != nil {
		return nil, err
	}

	self, err := h.rt.Reverse("get-user", p.ID)
	if err != nil {
		return nil, err
	}

	return xeno.JSON(map[string]string{
		"id":       p.ID,
		"greeting": h.rt.Env().Greeting + ", " + string(name) + "!",
		"self":     self,
	}), nil
}

func (h *handlers) putUser(c xeno.Ctx, r *xeno.Request) (*xeno.Response, error) {
	p, err := extract.Path[userParams](r)
	if err != nil {
		return nil, err
	}

	body, err := extract.JSON[profile](r)
	if err != nil {
		return nil, err
	}

	if body.Name == "" {
		return nil, xeno.UnprocessableEntity("name is required")
	}

	store, err := c.KV()
	if err != nil {
		return nil, err
	}

	if err := store.Put(r.Context(), "users/"+p.ID, []byte(body.Name)); err != nil {
		return nil, err
	}

	middleware.Log(r.Context()).Info("stored user", zap.String("id", p.ID))

	return xeno.NoContent(http.StatusNoContent), nil
}

func main() {
	xenoapp.NewApp[Env](func(b *xeno.Builder[xeno.Ctx], h *handlers) {
		b.Get("/", h.index, "index")
		b.Get("/users/:id", h.getUser, "get-user")
		b.Put("/users/:id", h.putUser)
	},
		xenoapp.WithFx(fx.Provide(newHandlers)),
	).Run()
}
