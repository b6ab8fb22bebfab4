// Command import loads a rate sheet into the catalog store and prints the
// import report as JSON. With -dry-run the file is only parsed and checked.
// With -mint-token it prints an admin token for the HTTP import endpoint instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shiprate-backend/config"
	"shiprate-backend/internal/domain"
	"shiprate-backend/internal/importer"
	"shiprate-backend/internal/infrastructure/cache"
	"shiprate-backend/internal/repository/postgres"
	"shiprate-backend/internal/usecase"
	"shiprate-backend/pkg/logger"
	"shiprate-backend/pkg/metrics"
	"shiprate-backend/pkg/storage"
	"shiprate-backend/pkg/utils"

	"github.com/goccy/go-json"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "parse and validate the file without writing to the database")
	mintToken := flag.String("mint-token", "", "print an admin JWT for this subject and exit")
	tokenExpiry := flag.Duration("token-expiry", 24*time.Hour, "lifetime of a minted token")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-dry-run] <file.csv>\n       %s -mint-token <subject> [-token-expiry 24h]\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	if *mintToken != "" {
		utils.SetSecret(cfg.JWTSecret)
		token, err := utils.GenerateJWT(*mintToken, utils.RoleAdmin, *tokenExpiry)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to mint token")
		}
		fmt.Println(token)
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to open rate sheet")
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var report *domain.ImportReport
	if *dryRun {
		report, err = parseOnly(path, f)
	} else {
		cfg.Validate()
		report, err = importFile(ctx, cfg, filepath.Base(path), f)
	}
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Import failed")
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode report")
	}
	fmt.Println(string(out))

	if len(report.Errors) > 0 {
		os.Exit(1)
	}
}

func parseOnly(path string, f *os.File) (*domain.ImportReport, error) {
	res, err := importer.Parse(f)
	if err != nil {
		return nil, err
	}
	batch := domain.Catalog{Carriers: res.Batch.Carriers}
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	return &domain.ImportReport{
		File:         filepath.Base(path),
		RowsRead:     res.RowsRead,
		RowsImported: res.Batch.Rows,
		Errors:       res.Errors,
		FinishedAt:   time.Now(),
	}, nil
}

func importFile(ctx context.Context, cfg *config.Config, name string, f *os.File) (*domain.ImportReport, error) {
	pool, err := postgres.NewPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	repo := postgres.NewCatalogRepository(pool)
	m := metrics.New("shiprate")
	snapshot := usecase.NewCatalogSnapshot(repo, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, m)

	var archive usecase.Archiver
	if cfg.ArchiveEnabled() {
		r2Storage, err := storage.NewR2Storage(ctx, cfg.R2AccountID, cfg.R2AccessKeyID, cfg.R2AccessKeySecret,
			cfg.R2BucketName, cfg.R2PublicURL, cfg.R2UploadTimeout)
		if err != nil {
			return nil, fmt.Errorf("r2: %w", err)
		}
		archive = r2Storage
	}

	uc := usecase.NewImportUsecase(repo, postgres.NewTransactionManager(pool), snapshot, archive, m)
	return uc.Import(ctx, name, f)
}
