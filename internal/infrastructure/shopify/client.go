// Package shopify is a minimal GraphQL Admin API client covering the
// three operations the sync layer needs: paginated product fetch, product
// create, and media attach. Requests are sequential and paced by a fixed
// inter-request delay; failures are surfaced to the caller, never retried.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/catalogbridge/reconciler/config"
	"github.com/catalogbridge/reconciler/internal/domain"
)

const pageSize = 100

// Client handles communication with the Shopify GraphQL Admin API.
type Client struct {
	httpClient  *http.Client
	shopDomain  string
	accessToken string
	apiVersion  string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Shopify Admin API client.
func NewClient(cfg config.ShopifyConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	delay := cfg.RequestDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		shopDomain:  cfg.ShopDomain,
		accessToken: cfg.AccessToken,
		apiVersion:  cfg.APIVersion,
		rateLimiter: rate.NewLimiter(rate.Every(delay), 1),
		debug:       false,
	}
}

// SetDebug enables or disables debug logging.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// endpoint builds the GraphQL Admin endpoint URL. A shop domain that is
// already a full URL (as in tests) is used as-is.
func (c *Client) endpoint() (string, error) {
	domainStr := strings.TrimSpace(c.shopDomain)
	if domainStr == "" {
		return "", fmt.Errorf("%w: shop domain is empty", domain.ErrShopifyAPIFailure)
	}
	if !strings.HasPrefix(domainStr, "http://") && !strings.HasPrefix(domainStr, "https://") {
		domainStr = "https://" + domainStr
	}
	domainStr = strings.TrimRight(domainStr, "/")
	if c.apiVersion == "" {
		return "", fmt.Errorf("%w: api version is empty", domain.ErrShopifyAPIFailure)
	}
	return domainStr + "/admin/api/" + c.apiVersion + "/graphql.json", nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors,omitempty"`
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// graphql executes one GraphQL request after waiting for the rate limiter.
func (c *Client) graphql(ctx context.Context, query string, variables map[string]any, out any) error {
	endpoint, err := c.endpoint()
	if err != nil {
		return err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	payload, err := json.Marshal(graphQLRequest{Query: strings.TrimSpace(query), Variables: variables})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrShopifyAPIFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", domain.ErrShopifyAPIFailure, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", domain.ErrShopifyAPIFailure, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, len(gqlResp.Errors))
		for i, e := range gqlResp.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("%w: %s", domain.ErrShopifyAPIFailure, strings.Join(msgs, "; "))
	}
	if out == nil {
		return nil
	}
	if len(gqlResp.Data) == 0 {
		return fmt.Errorf("%w: response missing data", domain.ErrShopifyAPIFailure)
	}
	return json.Unmarshal(gqlResp.Data, out)
}

// userErrorsToError converts Shopify userErrors into one wrapped error.
func userErrorsToError(op string, errs []userError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return fmt.Errorf("%w: %s: %s", domain.ErrShopifyAPIFailure, op, strings.Join(msgs, "; "))
}

type productsQueryData struct {
	Products struct {
		Nodes []struct {
			ID            string `json:"id"`
			Handle        string `json:"handle"`
			Title         string `json:"title"`
			Status        string `json:"status"`
			FeaturedImage *struct {
				ID string `json:"id"`
			} `json:"featuredImage"`
			Variants struct {
				Nodes []struct {
					SKU string `json:"sku"`
				} `json:"nodes"`
			} `json:"variants"`
		} `json:"nodes"`
		PageInfo struct {
			HasNextPage bool   `json:"hasNextPage"`
			EndCursor   string `json:"endCursor"`
		} `json:"pageInfo"`
	} `json:"products"`
}

// FetchAllProducts pages through every product in the store. Requests are
// sequential; the cursor from each page drives the next.
func (c *Client) FetchAllProducts(ctx context.Context) ([]domain.RemoteProduct, error) {
	query := `
query products($first: Int!, $after: String) {
	products(first: $first, after: $after) {
		nodes {
			id
			handle
			title
			status
			featuredImage { id }
			variants(first: 1) {
				nodes { sku }
			}
		}
		pageInfo { hasNextPage endCursor }
	}
}`

	var (
		products []domain.RemoteProduct
		cursor   string
	)
	for {
		variables := map[string]any{"first": pageSize}
		if cursor != "" {
			variables["after"] = cursor
		}

		var data productsQueryData
		if err := c.graphql(ctx, query, variables, &data); err != nil {
			return nil, err
		}

		for _, node := range data.Products.Nodes {
			hasSKU := len(node.Variants.Nodes) > 0 && strings.TrimSpace(node.Variants.Nodes[0].SKU) != ""
			products = append(products, domain.RemoteProduct{
				ID:       node.ID,
				Handle:   node.Handle,
				Title:    node.Title,
				Status:   node.Status,
				HasImage: node.FeaturedImage != nil,
				HasSKU:   hasSKU,
			})
		}

		if c.debug {
			log.Printf("[SHOPIFY] fetched page: %d products (total %d)", len(data.Products.Nodes), len(products))
		}

		if !data.Products.PageInfo.HasNextPage || data.Products.PageInfo.EndCursor == "" {
			break
		}
		cursor = data.Products.PageInfo.EndCursor
	}

	return products, nil
}

type productCreateData struct {
	ProductCreate struct {
		Product *struct {
			ID string `json:"id"`
		} `json:"product"`
		UserErrors []userError `json:"userErrors"`
	} `json:"productCreate"`
}

// CreateProduct creates a product from a catalog entry and returns its id.
func (c *Client) CreateProduct(ctx context.Context, entry *domain.CatalogEntry) (string, error) {
	if strings.TrimSpace(entry.Title) == "" {
		return "", fmt.Errorf("%w: product title is required", domain.ErrInvalidRecord)
	}

	input := map[string]any{
		"title":  entry.Title,
		"handle": entry.DedupKey,
		"status": "DRAFT",
	}
	if entry.Brand != "" {
		input["vendor"] = entry.Brand
	} else if entry.Vendor != "" {
		input["vendor"] = entry.Vendor
	}
	if entry.Category != "" {
		input["productType"] = entry.Category
	}
	if entry.Tags != "" {
		input["tags"] = entry.Tags
	}
	if entry.Description != "" {
		input["descriptionHtml"] = entry.Description
	}

	query := `
mutation productCreate($input: ProductInput!) {
	productCreate(input: $input) {
		product { id }
		userErrors { field message }
	}
}`

	var data productCreateData
	if err := c.graphql(ctx, query, map[string]any{"input": input}, &data); err != nil {
		return "", err
	}
	if err := userErrorsToError("productCreate", data.ProductCreate.UserErrors); err != nil {
		return "", err
	}
	if data.ProductCreate.Product == nil || strings.TrimSpace(data.ProductCreate.Product.ID) == "" {
		return "", fmt.Errorf("%w: productCreate returned empty product id", domain.ErrShopifyAPIFailure)
	}

	if c.debug {
		log.Printf("[SHOPIFY] created product %s (%s)", data.ProductCreate.Product.ID, entry.DedupKey)
	}
	return data.ProductCreate.Product.ID, nil
}

type productCreateMediaData struct {
	ProductCreateMedia struct {
		Media []struct {
			ID string `json:"id"`
		} `json:"media"`
		MediaUserErrors []userError `json:"mediaUserErrors"`
	} `json:"productCreateMedia"`
}

// AttachMedia attaches an externally hosted image to a product.
func (c *Client) AttachMedia(ctx context.Context, productID, sourceURL string) error {
	if strings.TrimSpace(productID) == "" || strings.TrimSpace(sourceURL) == "" {
		return fmt.Errorf("%w: product id and source url are required", domain.ErrInvalidRecord)
	}

	query := `
mutation productCreateMedia($productId: ID!, $media: [CreateMediaInput!]!) {
	productCreateMedia(productId: $productId, media: $media) {
		media { id }
		mediaUserErrors { field message }
	}
}`

	var data productCreateMediaData
	err := c.graphql(ctx, query, map[string]any{
		"productId": productID,
		"media": []map[string]any{
			{"originalSource": sourceURL, "mediaContentType": "IMAGE"},
		},
	}, &data)
	if err != nil {
		return err
	}
	return userErrorsToError("productCreateMedia", data.ProductCreateMedia.MediaUserErrors)
}
