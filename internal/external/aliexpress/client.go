// Package aliexpress fetches marketplace metrics from the AliExpress affiliate API.
package aliexpress

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/internal/external"
	"github.com/wonny/dropscout/pkg/config"
	"github.com/wonny/dropscout/pkg/httputil"
	"github.com/wonny/dropscout/pkg/logger"
)

// Source names this provider in errors and metrics
const Source = "aliexpress"

const (
	methodProductQuery = "aliexpress.affiliate.product.query"
	methodProductGet   = "aliexpress.ds.product.get"

	defaultPageSize = 20
	maxPageSize     = 50
)

// ErrNoProducts is returned when a search matches nothing
var ErrNoProducts = errors.New("no matching products")

// Product is one marketplace listing
type Product struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Image   string  `json:"image,omitempty"`
	Price   float64 `json:"price"`
	Sales   int     `json:"sales"`
	Rating  float64 `json:"rating"`
	Reviews int     `json:"reviews"`
}

// SearchResult is one page of search results
type SearchResult struct {
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
	Products []Product `json:"products"`
}

// Client handles communication with the affiliate API
// ⭐ SSOT: AliExpress API calls are made from this client only
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	breaker    *external.Breaker
	baseURL    string
	appKey     string
	appSecret  string
	now        func() time.Time
}

// NewClient creates a new affiliate API client
func NewClient(httpClient *httputil.Client, cfg config.MarketplaceConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		breaker:    external.NewBreaker(Source, external.DefaultBreakerConfig(), log),
		baseURL:    cfg.BaseURL,
		appKey:     cfg.AppKey,
		appSecret:  cfg.AppSecret,
		now:        time.Now,
	}
}

// Sign computes the request signature: HMAC-SHA256 keyed by secret over
// the key+value concatenation of params in key order, as uppercase hex.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(params[k])
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sb.String()))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}

// signedURL builds the full request URL for method
func (c *Client) signedURL(method string, extra map[string]string) string {
	params := map[string]string{
		"app_key":     c.appKey,
		"sign_method": "sha256",
		"timestamp":   strconv.FormatInt(c.now().UnixMilli(), 10),
		"method":      method,
	}
	for k, v := range extra {
		params[k] = v
	}

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set("sign", Sign(params, c.appSecret))

	return fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
}

// call performs a signed request and returns the unwrapped result object
func (c *Client) call(ctx context.Context, method string, extra map[string]string) (contracts.RawPayload, error) {
	var envelope map[string]json.RawMessage
	if err := c.httpClient.GetJSON(ctx, c.signedURL(method, extra), &envelope); err != nil {
		return nil, fmt.Errorf("%s request failed: %w", method, err)
	}

	body, err := responseBody(envelope)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	var wrapper struct {
		Result contracts.RawPayload `json:"result"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if wrapper.Result == nil {
		return nil, fmt.Errorf("%s: response has no result", method)
	}

	if code := intValue(wrapper.Result["resp_code"]); code != 200 {
		msg := stringValue(wrapper.Result["resp_msg"])
		if msg == "" {
			msg = "AliExpress API error"
		}
		return nil, fmt.Errorf("%s: resp_code %d: %s", method, code, msg)
	}
	return wrapper.Result, nil
}

// responseBody picks the single "<method>_response" member of the envelope
func responseBody(envelope map[string]json.RawMessage) (json.RawMessage, error) {
	if raw, ok := envelope["error_response"]; ok {
		var e struct {
			Code string `json:"code"`
			Msg  string `json:"msg"`
		}
		_ = json.Unmarshal(raw, &e)
		return nil, fmt.Errorf("error_response %s: %s", e.Code, e.Msg)
	}

	keys := make([]string, 0, len(envelope))
	for k := range envelope {
		if k != "request_id" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.HasSuffix(k, "_response") {
			return envelope[k], nil
		}
	}
	if len(keys) > 0 {
		return envelope[keys[0]], nil
	}
	return nil, errors.New("empty response")
}

// SearchProducts queries listings by keyword
func (c *Client) SearchProducts(ctx context.Context, keyword string, page, pageSize int) (*SearchResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	result, err := c.breaker.Execute(ctx, func(ctx context.Context) (contracts.RawPayload, error) {
		return c.call(ctx, methodProductQuery, map[string]string{
			"traffic_source_type": "ECOMMERCE",
			"query":               keyword,
			"page_size":           strconv.Itoa(pageSize),
			"page_no":             strconv.Itoa(page),
		})
	})
	if err != nil {
		return nil, err
	}

	out := &SearchResult{
		Total:    intValue(result["total_record_count"]),
		Page:     page,
		PageSize: pageSize,
		Products: make([]Product, 0),
	}
	for _, p := range productList(result["products"]) {
		out.Products = append(out.Products, parseSearchProduct(p))
	}

	c.logger.WithFields(map[string]interface{}{
		"keyword": keyword,
		"page":    page,
		"count":   len(out.Products),
	}).Debug("AliExpress search completed")

	return out, nil
}

// FetchProduct returns marketplace metrics for ref.
// With an ID the product detail endpoint is used; otherwise the top search hit.
func (c *Client) FetchProduct(ctx context.Context, ref contracts.ProductRef) (contracts.RawPayload, error) {
	var product Product

	if ref.ID != "" {
		result, err := c.breaker.Execute(ctx, func(ctx context.Context) (contracts.RawPayload, error) {
			return c.call(ctx, methodProductGet, map[string]string{"product_id": ref.ID})
		})
		if err != nil {
			return nil, err
		}
		product = parseDetail(ref.ID, result)
	} else {
		res, err := c.SearchProducts(ctx, ref.Name, 1, 1)
		if err != nil {
			return nil, err
		}
		if len(res.Products) == 0 {
			return nil, contracts.NewUpstreamUnavailableError(Source, fmt.Errorf("%w for %q", ErrNoProducts, ref.Name))
		}
		product = res.Products[0]
	}

	return Payload(product, ref.Category), nil
}

// Payload maps a listing onto the marketplace payload shape the normalizer reads
func Payload(p Product, category string) contracts.RawPayload {
	return contracts.RawPayload{
		"productId": p.ID,
		"title":     p.Title,
		"reviews":   p.Reviews,
		"rating":    p.Rating,
		"orders":    p.Sales,
		"price":     p.Price,
		"category":  category,
	}
}

func parseSearchProduct(raw contracts.RawPayload) Product {
	p := Product{
		ID:     stringValue(raw["product_id"]),
		Title:  stringValue(raw["product_title"]),
		Image:  stringValue(raw["product_main_image_url"]),
		Sales:  intValue(raw["target_sale_volume"]),
		Rating: starRating(raw["evaluate_rate"]),
	}
	if price, ok := raw["target_sale_price"].(map[string]interface{}); ok {
		p.Price = floatValue(price["amount"])
	} else {
		p.Price = floatValue(raw["target_sale_price"])
	}
	return p
}

func parseDetail(id string, result contracts.RawPayload) Product {
	src := result
	if inner, ok := result["product"].(map[string]interface{}); ok {
		src = inner
	}
	return Product{
		ID:      id,
		Title:   stringValue(src["product_title"]),
		Price:   floatValue(src["product_price"]),
		Sales:   intValue(src["product_sales"]),
		Rating:  starRating(src["product_rating"]),
		Reviews: intValue(src["product_review_count"]),
	}
}

// productList accepts both `products: [...]` and `products: {product: [...]}`
func productList(v interface{}) []contracts.RawPayload {
	if m, ok := v.(map[string]interface{}); ok {
		v = m["product"]
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]contracts.RawPayload, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, contracts.RawPayload(m))
		}
	}
	return out
}

// starRating converts a positive-feedback percentage ("96.5%") to a 0-5 rating.
// Values already on the 0-5 scale pass through.
func starRating(v interface{}) float64 {
	s := strings.TrimSuffix(strings.TrimSpace(stringValue(v)), "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	if f > 5 {
		f = f / 20
	}
	if f > 5 {
		f = 5
	}
	return float64(int(f*100+0.5)) / 100
}

func stringValue(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(s)
	}
}

func floatValue(v interface{}) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(stringValue(v)), 64)
	if err != nil {
		return 0
	}
	return f
}

func intValue(v interface{}) int {
	f := floatValue(v)
	if f < 0 {
		return 0
	}
	return int(f)
}
