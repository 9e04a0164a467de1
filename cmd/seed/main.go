package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/cafeflow/backend/internal/adapters/secondary/postgres"
	"github.com/cafeflow/backend/internal/config"
	"github.com/cafeflow/backend/internal/core/domain"
	"github.com/cafeflow/backend/internal/infrastructure/logging"
)

// seed provisions the demo accounts and an initial menu. It replaces any
// existing data, so never run it against a live database.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      "text",
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, `TRUNCATE orders, menu_items, users`); err != nil {
		logger.Error("failed to clear tables", "error", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(pool)
	menuRepo := postgres.NewMenuItemRepository(pool)

	accounts := []domain.UserParams{
		{Email: "admin@cafeflow.dev", Password: "Admin123!", Role: domain.RoleAdmin},
		{Email: "staff@cafeflow.dev", Password: "Staff123!", Role: domain.RoleStaff},
	}

	for _, params := range accounts {
		user, err := domain.NewUser(params)
		if err != nil {
			logger.Error("invalid seed account", "email", params.Email, "error", err)
			os.Exit(1)
		}
		if err := userRepo.Create(ctx, user); err != nil {
			logger.Error("failed to create account", "email", params.Email, "error", err)
			os.Exit(1)
		}
		logger.Info("account created", "email", user.Email, "role", user.Role)
	}

	menu := []domain.MenuItemParams{
		{Name: "Flat White", Description: "Double ristretto style, silky microfoam.", Category: "Coffee", PriceCents: 520, IsAvailable: true},
		{Name: "Long Black", Description: "Espresso over hot water.", Category: "Coffee", PriceCents: 480, IsAvailable: true},
		{Name: "Iced Latte", Description: "Cold milk + espresso over ice.", Category: "Cold", PriceCents: 650, IsAvailable: true},
		{Name: "Banana Smoothie", Description: "Banana, milk, honey.", Category: "Cold", PriceCents: 700, IsAvailable: true},
		{Name: "Ham & Cheese Toastie", Description: "Classic toasted sandwich.", Category: "Food", PriceCents: 990, IsAvailable: true},
	}

	for _, params := range menu {
		item, err := domain.NewMenuItem(params)
		if err != nil {
			logger.Error("invalid seed menu item", "name", params.Name, "error", err)
			os.Exit(1)
		}
		if err := menuRepo.Create(ctx, item); err != nil {
			logger.Error("failed to create menu item", "name", params.Name, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("seed complete", "accounts", len(accounts), "menu_items", len(menu))
}
