package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"

	"gridstock/frontend/login"
	"gridstock/infrastructure/sqlite"
	"gridstock/models"
)

func main() {
	_ = godotenv.Load()

	username, err := run(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("seeded admin user (username=%s)\n", username)
}

// run applies migrations and upserts the admin account named by
// ADMIN_USERNAME. It returns the username it seeded.
func run(ctx context.Context) (string, error) {
	migrationsDir, err := resolveMigrationsDir()
	if err != nil {
		return "", fmt.Errorf("resolve migrations dir: %w", err)
	}

	defaultDBPath := filepath.Join(filepath.Dir(filepath.Dir(filepath.Dir(migrationsDir))), "gridstock.db")
	dbPath := getenv("SQLITE_PATH", defaultDBPath)

	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		return "", fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if err := sqlite.ApplyMigrations(ctx, db, migrationsDir); err != nil {
		return "", fmt.Errorf("apply migrations: %w", err)
	}

	username := strings.TrimSpace(getenv("ADMIN_USERNAME", "admin"))
	adminPassword := getenv("ADMIN_PASSWORD", "Admin123!Gridstock")
	if err := login.UpsertUserPasswordHash(ctx, db, username, models.RoleAdmin, adminPassword); err != nil {
		return "", fmt.Errorf("seed admin: %w", err)
	}
	return username, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func resolveMigrationsDir() (string, error) {
	candidates := []string{
		filepath.Join("infrastructure", "sqlite", "migrations"),
		filepath.Join("..", "..", "infrastructure", "sqlite", "migrations"),
	}

	if _, file, _, ok := runtime.Caller(0); ok {
		candidates = append(candidates, filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations"))
	}

	tried := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		absPath, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		tried = append(tried, absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			continue
		}
		if info.IsDir() {
			return absPath, nil
		}
	}

	return "", fmt.Errorf("migrations dir not found; tried: %s", strings.Join(tried, ", "))
}
