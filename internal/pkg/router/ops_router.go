package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"

	"github.com/batterysmart/swapledger/app/controllers"
	"github.com/batterysmart/swapledger/internal/pkg/env"
)

// OpsRouter exposes operational triggers for on-call use. Everything under
// /ops sits behind basic auth, same credentials as /metrics.
type OpsRouter struct {
}

func (h OpsRouter) InstallRouter(app *fiber.App) {
	ops := app.Group("/ops", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("OPS_USER", "admin"): env.GetEnv("OPS_PASS", "test"),
		},
	}))

	ops.Post("/penalty-sweep", controllers.HandlePenaltySweep)
	ops.Post("/exports/:period", controllers.HandleTriggerExport)
}

func NewOpsRouter() *OpsRouter {
	return &OpsRouter{}
}
