package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"shiprate-backend/internal/domain"
	"shiprate-backend/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

const sheetHeader = "carrier_name;logo_url;is_volumetric;fuel_surcharge;is_active;service_name;service_code;service_description;delivery_time_min;delivery_time_max;destination_type;destination_country;weight_min;weight_max;purchase_price;retail_price\n"

func newTestImportUsecase(repo *fakeRepo, archive Archiver) (*ImportUsecase, *fakeTxManager) {
	tm := &fakeTxManager{}
	u := NewImportUsecase(repo, tm, newTestSnapshot(repo), archive, metrics.New("test"))
	u.now = func() time.Time { return time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC) }
	return u, tm
}

func TestImport(t *testing.T) {
	repo := &fakeRepo{catalog: testCatalog()}
	archive := &fakeArchiver{}
	u, tm := newTestImportUsecase(repo, archive)

	// Warm the snapshot so the import has something to invalidate.
	if _, err := u.snapshot.Get(context.Background()); err != nil {
		t.Fatalf("warm snapshot: %v", err)
	}

	sheet := sheetHeader +
		"GLS;;;4,8;;National;GLS_NAT;;;;national;;0;5;4;5\n" +
		"GLS;;;4,8;;National;GLS_NAT;;;;national;;5;10;6,5;7,73\n" +
		"GLS;;;4,8;;National;GLS_NAT;;;;national;;10;20;9;8\n"

	report, err := u.Import(context.Background(), "gls.csv", strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.RowsRead != 3 || report.RowsImported != 2 || len(report.Errors) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Stats.TiersCreated != 2 || tm.calls != 1 || len(repo.applied) != 1 {
		t.Fatalf("batch not applied in one transaction: %+v, tx calls %d", report.Stats, tm.calls)
	}
	if report.ArchiveURL != "https://files.example.com/imports/gls.csv" {
		t.Fatalf("archive url = %q", report.ArchiveURL)
	}
	if !report.FinishedAt.Equal(u.now()) {
		t.Fatalf("FinishedAt = %v", report.FinishedAt)
	}

	if _, err := u.snapshot.Get(context.Background()); err != nil {
		t.Fatalf("reload snapshot: %v", err)
	}
	if n := repo.loadCount(); n != 2 {
		t.Fatalf("snapshot not invalidated after import, loads = %d", n)
	}

	if got := testutil.ToFloat64(u.metrics.ImportRowsTotal.WithLabelValues("rejected")); got != 1 {
		t.Fatalf("rejected rows counter = %v", got)
	}
}

func TestImport_NothingValid(t *testing.T) {
	repo := &fakeRepo{catalog: testCatalog()}
	u, tm := newTestImportUsecase(repo, nil)

	report, err := u.Import(context.Background(), "bad.csv", strings.NewReader(sheetHeader+"GLS;;;;;N;X;;;;moon;;0;5;4;5\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.RowsImported != 0 || len(report.Errors) != 1 || tm.calls != 0 {
		t.Fatalf("nothing should be written: %+v, tx calls %d", report, tm.calls)
	}
}

func TestImport_Failures(t *testing.T) {
	u, _ := newTestImportUsecase(&fakeRepo{}, nil)
	if _, err := u.Import(context.Background(), "x.csv", strings.NewReader("just;a;header\n")); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for a bad header, got %v", err)
	}

	dbErr := errors.New("deadlock detected")
	u, _ = newTestImportUsecase(&fakeRepo{applyErr: dbErr}, nil)
	_, err := u.Import(context.Background(), "x.csv", strings.NewReader(sheetHeader+"GLS;;;;;N;X;;;;national;;0;5;4;5\n"))
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected the store error, got %v", err)
	}
	if got := testutil.ToFloat64(u.metrics.ImportsTotal.WithLabelValues(metrics.OutcomeError)); got != 1 {
		t.Fatalf("error counter = %v", got)
	}
}

func TestImport_ArchiveFailureIsNotFatal(t *testing.T) {
	u, _ := newTestImportUsecase(&fakeRepo{}, &fakeArchiver{err: errors.New("bucket gone")})
	report, err := u.Import(context.Background(), "x.csv", strings.NewReader(sheetHeader+"GLS;;;;;N;X;;;;national;;0;5;4;5\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.ArchiveURL != "" || report.RowsImported != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}
