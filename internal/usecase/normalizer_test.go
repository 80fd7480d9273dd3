package usecase

import (
	"strings"
	"testing"

	"github.com/catalogbridge/reconciler/internal/domain"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(false)

	t.Run("maps shopify export columns", func(t *testing.T) {
		rec, ok := n.Normalize(domain.SourceShopify, map[string]string{
			"handle":      "gropro-trellis-net",
			"title":       "GroPro Trellis Netting",
			"vendor":      "GroPro",
			"tags":        "trellis, netting",
			"variant_sku": "GP-TN-515",
		})
		if !ok {
			t.Fatal("Normalize() rejected a valid shopify row")
		}
		if rec.Get(FieldHandle) != "gropro-trellis-net" {
			t.Errorf("handle = %q, want gropro-trellis-net", rec.Get(FieldHandle))
		}
		if rec.Get(FieldSKU) != "GP-TN-515" {
			t.Errorf("sku = %q, want GP-TN-515", rec.Get(FieldSKU))
		}
	})

	t.Run("maps scraped columns", func(t *testing.T) {
		rec, ok := n.Normalize(domain.SourceScraped, map[string]string{
			"url_key":   "gropro-trellis-net",
			"name":      "GroPro Trellis Netting",
			"brand":     "GroPro",
			"image_url": "https://cdn.example.com/trellis.jpg",
		})
		if !ok {
			t.Fatal("Normalize() rejected a valid scraped row")
		}
		if rec.Get(FieldHandle) != "gropro-trellis-net" {
			t.Errorf("handle = %q, want gropro-trellis-net (url_key fallback)", rec.Get(FieldHandle))
		}
		if rec.Get(FieldVendor) != "GroPro" {
			t.Errorf("vendor = %q, want GroPro", rec.Get(FieldVendor))
		}
		if rec.Get(FieldImageURL) != "https://cdn.example.com/trellis.jpg" {
			t.Errorf("image url = %q, want cdn url", rec.Get(FieldImageURL))
		}
	})

	t.Run("first non-empty candidate wins", func(t *testing.T) {
		rec, ok := n.Normalize(domain.SourceWoo, map[string]string{
			"slug":       "trellis-net",
			"name":       "",
			"post_title": "Trellis Netting",
		})
		if !ok {
			t.Fatal("Normalize() rejected a valid woo row")
		}
		if rec.Get(FieldTitle) != "Trellis Netting" {
			t.Errorf("title = %q, want Trellis Netting (post_title fallback)", rec.Get(FieldTitle))
		}
	})

	t.Run("strips html from text fields", func(t *testing.T) {
		rec, ok := n.Normalize(domain.SourceWoo, map[string]string{
			"slug":        "mylar-film",
			"name":        "<b>Mylar</b> Film",
			"description": "<p>Highly   reflective</p> sheeting",
		})
		if !ok {
			t.Fatal("Normalize() rejected row")
		}
		if rec.Get(FieldTitle) != "Mylar Film" {
			t.Errorf("title = %q, want Mylar Film", rec.Get(FieldTitle))
		}
		if rec.Get(FieldDescription) != "Highly reflective sheeting" {
			t.Errorf("description = %q, want collapsed plain text", rec.Get(FieldDescription))
		}
	})

	t.Run("rejects row without title", func(t *testing.T) {
		_, ok := n.Normalize(domain.SourceShopify, map[string]string{
			"handle": "orphan-handle",
		})
		if ok {
			t.Error("Normalize() accepted a row with no title")
		}
	})

	t.Run("rejects shopify row without handle", func(t *testing.T) {
		_, ok := n.Normalize(domain.SourceShopify, map[string]string{
			"title": "No Handle Product",
		})
		if ok {
			t.Error("Normalize() accepted a shopify row with no handle")
		}
	})

	t.Run("derives woo handle from sku", func(t *testing.T) {
		rec, ok := n.Normalize(domain.SourceWoo, map[string]string{
			"name": "Plant Stakes 4ft",
			"sku":  "PS 4FT (green)",
		})
		if !ok {
			t.Fatal("Normalize() rejected row")
		}
		if rec.Get(FieldHandle) != "ps-4ft-green" {
			t.Errorf("handle = %q, want ps-4ft-green", rec.Get(FieldHandle))
		}
	})

	t.Run("caps derived inventory handles at 50 chars", func(t *testing.T) {
		longTitle := strings.Repeat("trellis netting heavy duty ", 4)
		rec, ok := n.Normalize(domain.SourceInventory, map[string]string{
			"item_description": longTitle,
		})
		if !ok {
			t.Fatal("Normalize() rejected row")
		}
		if len(rec.Get(FieldHandle)) != 50 {
			t.Errorf("handle length = %d, want 50", len(rec.Get(FieldHandle)))
		}
	})

	t.Run("derivation is deterministic", func(t *testing.T) {
		row := map[string]string{"item_description": "Grow Tray Liner 10x20", "sku": "TL-1020"}
		a, _ := n.Normalize(domain.SourceInventory, row)
		b, _ := n.Normalize(domain.SourceInventory, row)
		if a.Get(FieldHandle) != b.Get(FieldHandle) {
			t.Errorf("handles differ across runs: %q vs %q", a.Get(FieldHandle), b.Get(FieldHandle))
		}
	})
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"GroPro Trellis Net", "gropro-trellis-net"},
		{"  pH Up (1 L)  ", "ph-up-1-l"},
		{"25' x 4' Roll", "25-x-4-roll"},
		{"---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeFieldName(t *testing.T) {
	if got := domain.NormalizeFieldName("  Item Description "); got != "item_description" {
		t.Errorf("NormalizeFieldName = %q, want item_description", got)
	}
}
