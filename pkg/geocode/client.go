// Package geocode provides a reusable SDK for OSM Nominatim reverse geocoding.
//
// Architecture:
//
// This is an **API SDK**, not just a "dumb" HTTP client. It provides:
//   - HTTP client with retry, rate limiting, and error classification
//   - Response decoding for the Nominatim jsonv2 format
//   - Address name synthesis (display name → road+house number → city)
//
// The public Nominatim instance enforces an absolute limit of 1 request per
// second; the built-in rate limiter makes it impossible to violate that
// policy by accident, no matter how many photos share a GPS cluster.
//
// Usage pattern:
//   - pkg/geocode - reusable SDK
//   - pkg/analysis - consumes it through the Geocoder interface
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ilkoid/photoarch/pkg/config"
	"github.com/ilkoid/photoarch/pkg/model"
	"github.com/ilkoid/photoarch/pkg/utils"
	"golang.org/x/time/rate"
)

// ErrorType представляет тип ошибки при работе с Nominatim API.
type ErrorType int

const (
	ErrUnknown ErrorType = iota
	ErrTimeout
	ErrNetwork
	ErrRateLimit
	ErrServer
)

// String возвращает строковое представление типа ошибки.
func (e ErrorType) String() string {
	switch e {
	case ErrTimeout:
		return "timeout"
	case ErrNetwork:
		return "network_error"
	case ErrRateLimit:
		return "rate_limit"
	case ErrServer:
		return "server_error"
	default:
		return "unknown"
	}
}

// APIError — классифицированная ошибка Nominatim API.
type APIError struct {
	Type       ErrorType
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("nominatim %s (status %d): %v", e.Type, e.StatusCode, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// HTTPClient интерфейс для выполнения HTTP запросов.
//
// Позволяет мокировать HTTP клиент в тестах.
// Стандартный *http.Client реализует этот интерфейс.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client — клиент обратного геокодинга.
type Client struct {
	http       HTTPClient
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
	acceptLang string
	maxRetries int
	backoff    time.Duration
	citySuffix bool
}

// New создает клиент из конфигурации.
func New(cfg config.GeocodingConfig) *Client {
	return &Client{
		http:       &http.Client{Timeout: cfg.Timeout.Std()},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		acceptLang: cfg.AcceptLanguage,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff.Std(),
		citySuffix: cfg.CitySuffixEnabled(),
	}
}

// NewWithHTTPClient создает клиент с кастомным HTTP клиентом (для тестов).
func NewWithHTTPClient(cfg config.GeocodingConfig, hc HTTPClient) *Client {
	c := New(cfg)
	c.http = hc
	return c
}

// nominatimResponse — ответ /reverse в формате jsonv2 (нужные нам поля).
type nominatimResponse struct {
	Name    string           `json:"name"`
	Address nominatimAddress `json:"address"`
}

type nominatimAddress struct {
	Amenity       string `json:"amenity"`
	HouseNumber   string `json:"house_number"`
	Road          string `json:"road"`
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	CityDistrict  string `json:"city_district"`
	City          string `json:"city"`
	ISO31662Lvl4  string `json:"ISO3166-2-lvl4"`
	Postcode      string `json:"postcode"`
	Country       string `json:"country"`
	CountryCode   string `json:"country_code"`
}

// ReverseGeocode возвращает адрес для координат или nil, если Nominatim
// не знает это место.
//
// Ошибки сети/API возвращаются классифицированными (*APIError) — вызывающий
// код решает, деградировать или падать. Анализатор деградирует: запись
// остаётся без адреса, событие получит место от соседей.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (*model.Address, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "jsonv2")
	q.Set("zoom", "18") // высокая детализация: дом/здание, не только город
	q.Set("addressdetails", "1")
	q.Set("accept-language", c.acceptLang)

	reqURL := c.baseURL + "?" + q.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Rate limiter: блокируемся до следующего разрешённого запроса
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		// Retry только для временных ошибок
		var apiErr *APIError
		if !errors.As(err, &apiErr) || (apiErr.Type != ErrNetwork && apiErr.Type != ErrServer && apiErr.Type != ErrRateLimit) {
			return nil, err
		}

		if attempt < c.maxRetries {
			// Экспоненциальный backoff: 500ms, 1s, 2s …
			delay := c.backoff * (1 << attempt)
			utils.Warn("Nominatim request failed, retrying",
				"attempt", attempt+1, "delay", delay, "error", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, lastErr
}

// doRequest выполняет один HTTP запрос и декодирует ответ.
func (c *Client) doRequest(ctx context.Context, reqURL string) (*model.Address, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	// Nominatim блокирует анонимные User-Agent
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		errType := ErrNetwork
		if errors.Is(err, context.DeadlineExceeded) {
			errType = ErrTimeout
		}
		return nil, &APIError{Type: errType, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &APIError{Type: ErrRateLimit, StatusCode: resp.StatusCode, Err: fmt.Errorf("too many requests")}
	case resp.StatusCode >= 500:
		return nil, &APIError{Type: ErrServer, StatusCode: resp.StatusCode, Err: fmt.Errorf("server error")}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{
			Type:       ErrUnknown,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(body))),
		}
	}

	var nr nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return c.buildAddress(nr), nil
}

// buildAddress конвертирует ответ API в model.Address и синтезирует имя места.
//
// Приоритет имени:
//  1. display name объекта (POI, здание с именем)
//  2. улица + номер дома
//  3. город
//
// При citySuffix (compat режим) город дописывается к имени всегда — даже
// если имя его уже содержит. Старые архивы были построены с таким
// поведением, и стабильность имён папок важнее красоты.
func (c *Client) buildAddress(nr nominatimResponse) *model.Address {
	a := nr.Address
	if a == (nominatimAddress{}) {
		return nil
	}

	addr := &model.Address{
		Amenity:       a.Amenity,
		HouseNumber:   a.HouseNumber,
		Road:          a.Road,
		Neighbourhood: a.Neighbourhood,
		Suburb:        a.Suburb,
		CityDistrict:  a.CityDistrict,
		City:          a.City,
		ISO31662Lvl4:  a.ISO31662Lvl4,
		Postcode:      a.Postcode,
		Country:       a.Country,
		CountryCode:   a.CountryCode,
	}

	name := nr.Name
	if name == "" && a.Road != "" {
		name = a.Road
		if a.HouseNumber != "" {
			name = a.Road + " " + a.HouseNumber
		}
	}

	if c.citySuffix {
		// Compat: город дописывается безусловно
		if name == "" {
			name = a.City
		}
		if a.City != "" {
			name += " " + a.City
		}
	} else if name == "" {
		name = a.City
	}

	addr.Name = strings.TrimSpace(name)
	return addr
}
