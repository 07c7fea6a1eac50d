package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/app/repository"
	"github.com/batterysmart/swapledger/internal/pkg/cache"
	"github.com/batterysmart/swapledger/internal/pkg/database"
	"github.com/batterysmart/swapledger/internal/pkg/env"
	"github.com/batterysmart/swapledger/internal/pkg/jobqueue"
	"github.com/batterysmart/swapledger/internal/pkg/router"
)

func main() {
	app := NewApplication()

	// Stop the workers before the listener dies so pending counter deltas
	// get flushed to the database.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Received shutdown signal")
		jobqueue.GetManager().Stop()
		_ = app.Shutdown()
	}()

	if err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))); err != nil {
		log.Fatal(err)
	}
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())
	cache.SetupCache()
	seedDefaultPlans()

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/swapledger to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName: "swapledger",
	})

	// ignore favicon requests from health probes
	app.Use(favicon.New())

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("OPS_USER", "admin"): env.GetEnv("OPS_PASS", "test"),
		},
	}), monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	// background workers: swap counters, expiry, penalties, exports
	jobqueue.GetManager().Start()

	return app
}

// seedDefaultPlans loads the plan catalog into an empty database. A non-empty
// catalog is left alone; plan changes go through the admin upsert.
func seedDefaultPlans() {
	repo := repository.GetGlobalFactory().GetPlanRepository()

	count, err := repo.Count()
	if err != nil {
		log.Printf("Warning: could not check plan catalog: %v", err)
		return
	}
	if count > 0 {
		return
	}

	plans := []models.SubscriptionPlan{
		{
			Code: models.PlanCodeDaily, Name: "Daily Plan", NameHi: "Rozana Plan",
			Price: 149.00, ValidityDays: 1, SwapsIncluded: 4, SwapsPerDay: 4,
			ExtraSwapPrice: 35.00, GSTPercentage: 18.00,
			DescriptionEn: "1 day validity with 4 battery swaps",
			DescriptionHi: "1 din ki validity, 4 battery swap",
			IsActive:      true,
		},
		{
			Code: models.PlanCodeWeekly, Name: "Weekly Plan", NameHi: "Saptahik Plan",
			Price: 899.00, ValidityDays: 7, SwapsIncluded: 28, SwapsPerDay: 4,
			ExtraSwapPrice: 35.00, GSTPercentage: 18.00,
			DescriptionEn: "7 days validity with 28 battery swaps, up to 4 per day",
			DescriptionHi: "7 din ki validity, 28 battery swap, roz 4 tak",
			IsActive:      true,
		},
		{
			Code: models.PlanCodeMonthly, Name: "Monthly Plan", NameHi: "Maasik Plan",
			Price: 3299.00, ValidityDays: 30, SwapsIncluded: 120, SwapsPerDay: 6,
			ExtraSwapPrice: 35.00, GSTPercentage: 18.00,
			DescriptionEn: "30 days validity with 120 battery swaps, up to 6 per day",
			DescriptionHi: "30 din ki validity, 120 battery swap, roz 6 tak",
			IsActive:      true,
		},
		{
			Code: models.PlanCodeYearly, Name: "Yearly Plan", NameHi: "Vaarshik Plan",
			Price: 34999.00, ValidityDays: 365, SwapsIncluded: models.UnlimitedSwaps, SwapsPerDay: models.NoDailyCap,
			ExtraSwapPrice: 35.00, GSTPercentage: 18.00,
			DescriptionEn: "365 days validity with unlimited battery swaps",
			DescriptionHi: "365 din ki validity, unlimited battery swap",
			IsActive:      true,
		},
	}

	for i := range plans {
		if err := repo.Upsert(&plans[i]); err != nil {
			log.Printf("Warning: could not seed plan %s: %v", plans[i].Code, err)
		}
	}
	log.Printf("Seeded %d subscription plans", len(plans))
}
