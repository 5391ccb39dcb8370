package main

import (
	"context"
	"flag"
	"log"

	"vecteditor/internal/config"
	"vecteditor/internal/repository/postgres"
	"vecteditor/internal/seed"
	"vecteditor/internal/service/editor"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed documents")
	documentID := flag.String("document", "example", "Document to replace with the fixture")
	fixture := flag.String("fixture", "fixtures/example.yaml", "YAML fixture to load")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run --drop-tables in production environment")
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL environment variable is required")
	}

	logger, logFile, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer func() { _ = logFile.Close() }()

	if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding %s from %s (environment: %s, prefix: %s)", *documentID, *fixture, cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	editorService := editor.NewService(
		postgres.NewSnapshotRepository(repoConfig),
		postgres.NewMoveLogRepository(repoConfig),
		postgres.NewTransactionManager(repoConfig),
		nil, // running servers pick the content up on their next load
		cfg,
		logger,
	)

	view, err := seed.NewSeeder(editorService, logger).SeedFile(ctx, *documentID, *fixture)
	if err != nil {
		log.Fatalf("❌ Failed to seed %s: %v", *documentID, err)
	}

	log.Printf("🎉 Seeding complete! %s is at revision %d with %d entries", *documentID, view.Revision, len(view.Entries))
}

// dropAllTables drops the editor tables, move log first
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	for _, table := range []string{tables.Moves, tables.Documents} {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}
	return nil
}
