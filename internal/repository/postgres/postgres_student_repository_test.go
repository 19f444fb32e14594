package postgres

import (
	"math"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
)

func TestSchema_IDIsBigint(t *testing.T) {
	if !strings.Contains(schema, "id BIGINT PRIMARY KEY") {
		t.Fatalf("students.id must be BIGINT:\n%s", schema)
	}
	if !strings.Contains(schema, "ALTER COLUMN id SET DATA TYPE BIGINT") {
		t.Fatalf("existing INTEGER ids must be widened:\n%s", schema)
	}
}

func TestIDParameter_EncodesAsInt8(t *testing.T) {
	m := pgtype.NewMap()
	for _, id := range []int{0, 3000000000, math.MaxInt64, math.MinInt64} {
		if _, err := m.Encode(pgtype.Int8OID, pgtype.BinaryFormatCode, id, nil); err != nil {
			t.Fatalf("encode %d as int8: %v", id, err)
		}
	}
	if _, err := m.Encode(pgtype.Int4OID, pgtype.BinaryFormatCode, 3000000000, nil); err == nil {
		t.Fatal("int4 should reject ids beyond its range")
	}
}
