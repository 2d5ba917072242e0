package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertSQL(t *testing.T) {
	sql, err := UpsertSQL(UpsertConfig{
		Table:        "public.geocode_cache",
		Columns:      []string{"address_hash", "result"},
		ConflictKeys: []string{"address_hash"},
		Touch:        "cached_at",
	})
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "public"."geocode_cache" ("address_hash", "result", "cached_at") VALUES ($1, $2, now()) `+
			`ON CONFLICT ("address_hash") DO UPDATE SET "result" = EXCLUDED."result", "cached_at" = now()`,
		sql)
}

func TestUpsertSQL_ExplicitUpdateCols(t *testing.T) {
	sql, err := UpsertSQL(UpsertConfig{
		Table:        "cache",
		Columns:      []string{"k", "a", "b"},
		ConflictKeys: []string{"k"},
		UpdateCols:   []string{"b"},
	})
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "cache" ("k", "a", "b") VALUES ($1, $2, $3) ON CONFLICT ("k") DO UPDATE SET "b" = EXCLUDED."b"`, sql)
}

func TestUpsertSQL_NothingToUpdate(t *testing.T) {
	sql, err := UpsertSQL(UpsertConfig{
		Table:        "cache",
		Columns:      []string{"k"},
		ConflictKeys: []string{"k"},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "ON CONFLICT (\"k\") DO NOTHING")
}

func TestUpsertSQL_Invalid(t *testing.T) {
	_, err := UpsertSQL(UpsertConfig{Columns: []string{"k"}, ConflictKeys: []string{"k"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no table specified")

	_, err = UpsertSQL(UpsertConfig{Table: "cache", ConflictKeys: []string{"id"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")

	_, err = UpsertSQL(UpsertConfig{Table: "cache", Columns: []string{"id", "name"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", `"simple"`},
		{"public.geocode_cache", `"public"."geocode_cache"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeTable(tt.input))
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	assert.Equal(t, `"id", "name", "value"`, QuoteAndJoin([]string{"id", "name", "value"}))
}
