package usecase

import (
	"bytes"
	"context"
	"io"
	"time"

	"shiprate-backend/internal/domain"
	"shiprate-backend/internal/importer"
	"shiprate-backend/pkg/logger"
	"shiprate-backend/pkg/metrics"
)

// Archiver keeps a copy of every imported file. pkg/storage.R2Storage
// implements it.
type Archiver interface {
	Archive(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// ImportUsecase loads rate sheets into the catalog store.
type ImportUsecase struct {
	repo      domain.CatalogRepository
	txManager domain.TransactionManager
	snapshot  *CatalogSnapshot
	archive   Archiver
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewImportUsecase wires the import flow. archive may be nil.
func NewImportUsecase(repo domain.CatalogRepository, txManager domain.TransactionManager, snapshot *CatalogSnapshot, archive Archiver, m *metrics.Metrics) *ImportUsecase {
	return &ImportUsecase{
		repo:      repo,
		txManager: txManager,
		snapshot:  snapshot,
		archive:   archive,
		metrics:   m,
		now:       time.Now,
	}
}

// Import parses the sheet, writes every valid row in one transaction and
// invalidates the cached snapshot. Rejected rows are listed in the report;
// they never abort the import.
func (u *ImportUsecase) Import(ctx context.Context, name string, r io.Reader) (report *domain.ImportReport, err error) {
	start := time.Now()
	log := logger.WithContext(ctx)
	defer func() {
		if err != nil {
			u.metrics.ImportsTotal.WithLabelValues(outcome(err)).Inc()
			logger.Import(log, name, 0, 0, 0, time.Since(start), err)
			return
		}
		u.metrics.ImportsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
		u.metrics.ImportRowsTotal.WithLabelValues("imported").Add(float64(report.RowsImported))
		u.metrics.ImportRowsTotal.WithLabelValues("rejected").Add(float64(len(report.Errors)))
		logger.Import(log, name, report.RowsRead, report.RowsImported, len(report.Errors), time.Since(start), nil)
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, domain.InvalidInput("reading import file: %v", err)
	}

	parsed, err := importer.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	report = &domain.ImportReport{
		File:     name,
		RowsRead: parsed.RowsRead,
		Errors:   parsed.Errors,
	}

	if parsed.Batch.Rows > 0 {
		batchCatalog := domain.Catalog{Carriers: parsed.Batch.Carriers}
		if err := batchCatalog.Validate(); err != nil {
			return nil, err
		}

		var stats *domain.ImportStats
		err = u.txManager.Do(ctx, func(txCtx context.Context) error {
			var err error
			stats, err = u.repo.ApplyImport(txCtx, parsed.Batch)
			return err
		})
		if err != nil {
			return nil, err
		}
		report.Stats = *stats
		report.RowsImported = parsed.Batch.Rows
		u.snapshot.Invalidate()
	}

	if u.archive != nil {
		url, err := u.archive.Archive(ctx, name, data, "text/csv")
		if err != nil {
			log.Warn().Err(err).Str("file", name).Msg("Failed to archive rate sheet")
		} else {
			report.ArchiveURL = url
		}
	}

	report.FinishedAt = u.now()
	return report, nil
}
