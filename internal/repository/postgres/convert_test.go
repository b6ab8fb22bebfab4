package postgres

import (
	"testing"

	"shiprate-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func TestNumericRoundTrip(t *testing.T) {
	for _, f := range []float64{0, 4.8, 7.73, 1234.5678, 0.001} {
		if got := numericToFloat64(float64ToNumeric(f)); got != f {
			t.Fatalf("round trip of %v gave %v", f, got)
		}
	}
	if got := numericToFloat64(pgtype.Numeric{}); got != 0 {
		t.Fatalf("NULL numeric should read as 0, got %v", got)
	}
}

func TestNullableConversions(t *testing.T) {
	if pgUUID(pgtype.UUID{}) != uuid.Nil {
		t.Fatalf("NULL uuid should map to uuid.Nil")
	}
	id := uuid.New()
	if pgUUID(pgtype.UUID{Bytes: id, Valid: true}) != id {
		t.Fatalf("uuid not preserved")
	}

	if int4Ptr(pgtype.Int4{}) != nil {
		t.Fatalf("NULL int4 should map to nil")
	}
	n := 48
	back := int4Ptr(intPtrToInt4(&n))
	if back == nil || *back != 48 {
		t.Fatalf("int4 round trip gave %v", back)
	}
	if intPtrToInt4(nil).Valid {
		t.Fatalf("nil pointer should be NULL")
	}
}

func TestDestinationsText(t *testing.T) {
	in := []domain.DestinationClass{domain.DestinationNational, domain.DestinationExtraEU}
	out := textToDestinations(destinationsToText(in))
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Fatalf("destinations round trip gave %v", out)
	}
}
