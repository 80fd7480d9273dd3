package csvsource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogbridge/reconciler/internal/domain"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRecords(t *testing.T) {
	t.Run("normalizes header names", func(t *testing.T) {
		path := writeFixture(t, "Handle,Title,Variant SKU\ntrellis-net,Trellis Netting,TN-515\n")
		src := New(domain.SourceShopify, path)

		records, err := src.Records(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, domain.SourceShopify, records[0].Source)
		assert.Equal(t, "trellis-net", records[0].Fields["handle"])
		assert.Equal(t, "TN-515", records[0].Fields["variant_sku"])
	})

	t.Run("quoted fields keep embedded commas and newlines", func(t *testing.T) {
		path := writeFixture(t, "handle,description\n"+
			"mylar-roll,\"Reflective, heavy duty.\nTear resistant.\"\n")
		src := New(domain.SourceShopify, path)

		records, err := src.Records(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Reflective, heavy duty.\nTear resistant.", records[0].Fields["description"])
	})

	t.Run("doubled quotes unescape", func(t *testing.T) {
		path := writeFixture(t, "handle,title\nstakes,\"4' \"\"Heavy\"\" Stakes\"\n")
		src := New(domain.SourceInventory, path)

		records, err := src.Records(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, `4' "Heavy" Stakes`, records[0].Fields["title"])
	})

	t.Run("ragged rows are tolerated", func(t *testing.T) {
		path := writeFixture(t, "handle,title,price\nshort-row,Short Row\nfull-row,Full Row,9.99\n")
		src := New(domain.SourceInventory, path)

		records, err := src.Records(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "", records[0].Fields["price"])
		assert.Equal(t, "9.99", records[1].Fields["price"])
	})

	t.Run("missing file wraps ErrSourceUnavailable", func(t *testing.T) {
		src := New(domain.SourceWoo, filepath.Join(t.TempDir(), "nope.csv"))
		_, err := src.Records(context.Background())
		assert.True(t, errors.Is(err, domain.ErrSourceUnavailable))
	})
}
