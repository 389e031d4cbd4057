package delivery

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	nlscBaseURL   = "https://maps.nlsc.gov.tw/S_Maps/LocationSearch"
	nlscReferer   = "https://maps.nlsc.gov.tw/"
	browserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	lookupTimeout = 10 * time.Second
	taipeiPrefix  = "臺北市"
)

var ErrNoCoordinate = errors.New("no coordinate for address")

var (
	htmlLat = regexp.MustCompile(`lat='([0-9.+-]+)'`)
	htmlLon = regexp.MustCompile(`lon='([0-9.+-]+)'`)
)

// Locator resolves a normalized address to a coordinate.
type Locator interface {
	Locate(ctx context.Context, address string) (Point, error)
}

type NLSCClient struct {
	log        *slog.Logger
	baseURL    string
	httpClient *http.Client
}

type Option func(*NLSCClient)

func WithBaseURL(u string) Option {
	return func(c *NLSCClient) { c.baseURL = u }
}

func NewNLSCClient(log *slog.Logger, opts ...Option) *NLSCClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// NLSC serves an inconsistent certificate chain. Verification is off on
	// this transport only; every other client keeps the default.
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec

	c := &NLSCClient{
		log:     log,
		baseURL: nlscBaseURL,
		httpClient: &http.Client{
			Timeout:   lookupTimeout,
			Transport: transport,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Locate searches once as given and once more with the Taipei prefix.
func (c *NLSCClient) Locate(ctx context.Context, address string) (Point, error) {
	p, err := c.search(ctx, address)
	if err == nil {
		return p, nil
	}
	c.log.Info("geocode miss, retrying with city prefix", "address", address, "err", err)

	rest := strings.TrimPrefix(strings.TrimPrefix(address, "台北市"), taipeiPrefix)
	return c.search(ctx, taipeiPrefix+rest)
}

func (c *NLSCClient) search(ctx context.Context, term string) (Point, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return Point{}, fmt.Errorf("invalid geocoder url: %w", err)
	}
	q := u.Query()
	q.Set("term", term)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Point{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserAgent)
	req.Header.Set("Referer", nlscReferer)
	req.Header.Set("Accept", "application/json, text/javascript, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("call geocoder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Point{}, fmt.Errorf("geocoder status %d", resp.StatusCode)
	}

	var candidates []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return Point{}, fmt.Errorf("decode geocoder response: %w", err)
	}
	for _, cand := range candidates {
		if p, ok := coordinateOf(cand); ok {
			return p, nil
		}
	}
	return Point{}, ErrNoCoordinate
}

func coordinateOf(cand map[string]any) (Point, bool) {
	if lon, ok := number(cand["x"]); ok {
		if lat, ok := number(cand["y"]); ok {
			return Point{Lat: lat, Lon: lon}, true
		}
	}
	if lon, ok := number(cand["lon"]); ok {
		if lat, ok := number(cand["lat"]); ok {
			return Point{Lat: lat, Lon: lon}, true
		}
	}
	for _, v := range cand {
		s, ok := v.(string)
		if !ok {
			continue
		}
		latM := htmlLat.FindStringSubmatch(s)
		lonM := htmlLon.FindStringSubmatch(s)
		if latM == nil || lonM == nil {
			continue
		}
		lat, errLat := strconv.ParseFloat(latM[1], 64)
		lon, errLon := strconv.ParseFloat(lonM[1], 64)
		if errLat == nil && errLon == nil {
			return Point{Lat: lat, Lon: lon}, true
		}
	}
	return Point{}, false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
