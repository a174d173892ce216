package store

import (
	"context"
	"errors"
	"fmt"
)

// Open builds the repository the binaries use: Postgres as primary when
// databaseURL is set, the input/output directories as fallback when
// inputDir is set. A database that cannot be reached is reported and
// skipped if a directory is available. Call Close when done.
func Open(ctx context.Context, databaseURL, inputDir, outputDir string) (*HybridStore, error) {
	var primary, fallback Repository
	if inputDir != "" {
		fallback = NewDirStore(inputDir, outputDir)
	}

	if databaseURL != "" {
		pg, err := openPostgres(ctx, databaseURL)
		switch {
		case err == nil:
			primary = pg
			fmt.Println("[STORE] Using PostgreSQL as primary store")
		case fallback == nil:
			return nil, err
		default:
			fmt.Printf("[WARNING] Database unavailable, using %s only: %v\n", inputDir, err)
		}
	}

	if primary == nil && fallback == nil {
		return nil, errors.New("no store configured: set a database URL or an input directory")
	}
	return NewHybridStore(primary, fallback), nil
}

func openPostgres(ctx context.Context, url string) (*PostgresRepository, error) {
	if err := InitDB(ctx, url); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	repo := NewPostgresRepository(GetPool())
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}
