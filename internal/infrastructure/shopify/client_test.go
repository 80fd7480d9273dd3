package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogbridge/reconciler/config"
	"github.com/catalogbridge/reconciler/internal/domain"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.ShopifyConfig{
		ShopDomain:   serverURL,
		AccessToken:  "test-token",
		APIVersion:   "2024-07",
		Timeout:      5 * time.Second,
		RequestDelay: time.Millisecond,
	})
}

func decodeRequest(t *testing.T, r *http.Request) (string, map[string]any) {
	t.Helper()
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req.Query, req.Variables
}

func TestFetchAllProducts(t *testing.T) {
	t.Run("pages through the cursor", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			assert.Equal(t, "test-token", r.Header.Get("X-Shopify-Access-Token"))
			_, vars := decodeRequest(t, r)

			if calls == 1 {
				assert.Nil(t, vars["after"])
				w.Write([]byte(`{"data":{"products":{
					"nodes":[
						{"id":"gid://shopify/Product/1","handle":"trellis-net","title":"Trellis Netting","status":"ACTIVE",
						 "featuredImage":{"id":"gid://shopify/MediaImage/9"},"variants":{"nodes":[{"sku":"TN-515"}]}},
						{"id":"gid://shopify/Product/2","handle":"mylar-roll","title":"Mylar Roll","status":"DRAFT",
						 "featuredImage":null,"variants":{"nodes":[{"sku":""}]}}
					],
					"pageInfo":{"hasNextPage":true,"endCursor":"cursor-1"}}}}`))
				return
			}

			assert.Equal(t, "cursor-1", vars["after"])
			w.Write([]byte(`{"data":{"products":{
				"nodes":[
					{"id":"gid://shopify/Product/3","handle":"plant-stakes","title":"Plant Stakes","status":"ACTIVE",
					 "featuredImage":null,"variants":{"nodes":[]}}
				],
				"pageInfo":{"hasNextPage":false,"endCursor":""}}}}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		products, err := client.FetchAllProducts(context.Background())
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, 2, calls)

		assert.Equal(t, "trellis-net", products[0].Handle)
		assert.True(t, products[0].HasImage)
		assert.True(t, products[0].HasSKU)
		assert.False(t, products[1].HasImage)
		assert.False(t, products[1].HasSKU)
		assert.False(t, products[2].HasSKU)
	})

	t.Run("http error surfaces as api failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "throttled", http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.FetchAllProducts(context.Background())
		assert.True(t, errors.Is(err, domain.ErrShopifyAPIFailure))
	})

	t.Run("graphql errors surface as api failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"errors":[{"message":"access denied"}]}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.FetchAllProducts(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrShopifyAPIFailure))
		assert.Contains(t, err.Error(), "access denied")
	})
}

func TestCreateProduct(t *testing.T) {
	entry := &domain.CatalogEntry{
		DedupKey: "trellis-net",
		Title:    "Trellis Netting",
		Brand:    "GroPro",
		Vendor:   "Wholesale Garden",
		Category: "trellis",
	}

	t.Run("builds the input and returns the id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, vars := decodeRequest(t, r)
			input, ok := vars["input"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "Trellis Netting", input["title"])
			assert.Equal(t, "trellis-net", input["handle"])
			assert.Equal(t, "DRAFT", input["status"])
			assert.Equal(t, "GroPro", input["vendor"], "brand outranks the raw vendor")
			assert.Equal(t, "trellis", input["productType"])

			w.Write([]byte(`{"data":{"productCreate":{"product":{"id":"gid://shopify/Product/42"},"userErrors":[]}}}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		id, err := client.CreateProduct(context.Background(), entry)
		require.NoError(t, err)
		assert.Equal(t, "gid://shopify/Product/42", id)
	})

	t.Run("user errors become an api failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"productCreate":{"product":null,
				"userErrors":[{"field":["handle"],"message":"Handle has already been taken"}]}}}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.CreateProduct(context.Background(), entry)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrShopifyAPIFailure))
		assert.Contains(t, err.Error(), "already been taken")
	})

	t.Run("missing title is rejected without a request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.CreateProduct(context.Background(), &domain.CatalogEntry{DedupKey: "x"})
		assert.True(t, errors.Is(err, domain.ErrInvalidRecord))
	})
}

func TestAttachMedia(t *testing.T) {
	t.Run("sends the media input", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, vars := decodeRequest(t, r)
			assert.Equal(t, "gid://shopify/Product/42", vars["productId"])
			media, ok := vars["media"].([]any)
			require.True(t, ok)
			require.Len(t, media, 1)
			first := media[0].(map[string]any)
			assert.Equal(t, "https://cdn.example.com/trellis.jpg", first["originalSource"])
			assert.Equal(t, "IMAGE", first["mediaContentType"])

			w.Write([]byte(`{"data":{"productCreateMedia":{"media":[{"id":"gid://shopify/MediaImage/7"}],"mediaUserErrors":[]}}}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		err := client.AttachMedia(context.Background(), "gid://shopify/Product/42", "https://cdn.example.com/trellis.jpg")
		assert.NoError(t, err)
	})

	t.Run("media user errors become an api failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"productCreateMedia":{"media":[],
				"mediaUserErrors":[{"field":["media"],"message":"Image could not be downloaded"}]}}}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		err := client.AttachMedia(context.Background(), "gid://shopify/Product/42", "https://cdn.example.com/404.jpg")
		assert.True(t, errors.Is(err, domain.ErrShopifyAPIFailure))
	})

	t.Run("empty arguments are rejected", func(t *testing.T) {
		client := newTestClient("https://example.myshopify.com")
		err := client.AttachMedia(context.Background(), "", "")
		assert.True(t, errors.Is(err, domain.ErrInvalidRecord))
	})
}
