// Package xenoapptest provides test helpers for xenoapp applications.
//
// It constructs the identical DI graph as [xenoapp.NewApp] but uses
// [fxtest.App] which fails the test immediately on DI errors.
//
// Example:
//
//	xenoapptest.SetBaseEnv(t, 18081)
//	app := xenoapptest.New[TestEnv](t, routing)
//	app.RequireStart()
//	t.Cleanup(app.RequireStop)
package xenoapptest

import (
	"testing"

	"github.com/advdv/xeno/xenoapp"
	"go.uber.org/fx/fxtest"
)

// App embeds *fxtest.App for testing xenoapp applications.
type App struct {
	*fxtest.App
}

// New creates a test app with the same DI graph as [xenoapp.NewApp].
func New[E xenoapp.Environment](t testing.TB, routing any, opts ...xenoapp.Option) *App {
	return &App{App: fxtest.New(t, xenoapp.FxOptions[E](routing, opts...)...)}
}
