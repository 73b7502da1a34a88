package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/angelmondragon/tillpoint/internal/seed"
	"github.com/angelmondragon/tillpoint/internal/tenants"
	"github.com/angelmondragon/tillpoint/pkg/auth"
	"github.com/angelmondragon/tillpoint/pkg/config"
	"github.com/angelmondragon/tillpoint/pkg/db"
	"github.com/angelmondragon/tillpoint/pkg/enums"
	"github.com/angelmondragon/tillpoint/pkg/logger"
	"github.com/angelmondragon/tillpoint/pkg/migrate"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	demoType := flag.String("demo-tenant", "", "business type code for an optional demo tenant (dev only)")
	demoName := flag.String("demo-name", "Demo Store", "business name for the demo tenant")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	res, err := seed.NewSeeder(dbClient.DB(), logg).Run(ctx, seed.DefaultCatalog())
	requireResource(ctx, logg, "catalog seed", err)

	if *demoType == "" {
		return
	}
	if !cfg.App.IsDev() {
		fmt.Fprintln(os.Stderr, "-demo-tenant is only available in dev")
		os.Exit(1)
	}
	businessTypeID, ok := res.BusinessTypes[*demoType]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown business type %q\n", *demoType)
		os.Exit(1)
	}

	tenant, err := tenants.NewRepository(dbClient.DB()).Create(ctx, tenants.CreateTenantDTO{
		BusinessTypeID: businessTypeID,
		BusinessName:   *demoName,
	})
	requireResource(ctx, logg, "demo tenant", err)

	token, err := auth.MintAccessToken(cfg.JWT, time.Now(), auth.AccessTokenPayload{
		UserID:   uuid.New(),
		TenantID: tenant.ID,
		Role:     enums.MemberRoleOwner,
	})
	requireResource(ctx, logg, "dev token", err)

	fmt.Println("tenant:", tenant.ID)
	fmt.Println("owner token:", token)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
