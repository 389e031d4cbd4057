// Package settings is the typed, read-through view over the key/value
// shop configuration. Nothing is cached: every read goes to the backend.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	KeyShopOpen         = "shop_open"
	KeyDeliveryEnabled  = "delivery_enabled"
	KeyEnableDelivery   = "enable_delivery" // legacy alias of delivery_enabled
	KeyDeliveryMinPrice = "delivery_min_price"
	KeyDeliveryMaxKm    = "delivery_max_km"
	KeyDeliveryFeeBase  = "delivery_fee_base"
	KeyDeliveryFeePerKm = "delivery_fee_per_km"
	KeyReportEmail      = "report_email"
	KeySenderEmail      = "sender_email"
	KeyResendAPIKey     = "resend_api_key"
)

var ErrUnknownKey = errors.New("unknown setting key")

// Defaults are seeded once at bootstrap and used when a key is missing.
var Defaults = map[string]string{
	KeyShopOpen:         "1",
	KeyDeliveryEnabled:  "0",
	KeyDeliveryMinPrice: "300",
	KeyDeliveryMaxKm:    "5",
	KeyDeliveryFeeBase:  "0",
	KeyDeliveryFeePerKm: "10",
	KeyReportEmail:      "",
	KeySenderEmail:      "onboarding@resend.dev",
	KeyResendAPIKey:     "",
}

// seededDefaults are the rows written at bootstrap. delivery_enabled stays
// unseeded so a stored enable_delivery keeps deciding until an admin saves.
func seededDefaults() map[string]string {
	out := make(map[string]string, len(Defaults))
	for k, v := range Defaults {
		if k != KeyDeliveryEnabled {
			out[k] = v
		}
	}
	return out
}

type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	All(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, values map[string]string) error
}

type Policy struct {
	Enabled  bool
	MinPrice uint64
	MaxKm    float64
	BaseFee  uint64
	FeePerKm uint64
}

type Mail struct {
	To     string
	From   string
	APIKey string
}

type Store struct {
	backend Backend
}

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

func (s *Store) String(ctx context.Context, key string) (string, error) {
	v, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("read setting %s: %w", key, err)
	}
	if !ok {
		return Defaults[key], nil
	}
	return v, nil
}

// Uint reads a non-negative integer; malformed values yield the default.
func (s *Store) Uint(ctx context.Context, key string) (uint64, error) {
	raw, err := s.String(ctx, key)
	if err != nil {
		return 0, err
	}
	if n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64); err == nil {
		return n, nil
	}
	n, _ := strconv.ParseUint(Defaults[key], 10, 64)
	return n, nil
}

func (s *Store) Float(ctx context.Context, key string) (float64, error) {
	raw, err := s.String(ctx, key)
	if err != nil {
		return 0, err
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && f >= 0 {
		return f, nil
	}
	f, _ := strconv.ParseFloat(Defaults[key], 64)
	return f, nil
}

func (s *Store) Bool(ctx context.Context, key string) (bool, error) {
	raw, err := s.String(ctx, key)
	if err != nil {
		return false, err
	}
	return parseBool(raw), nil
}

func (s *Store) ShopOpen(ctx context.Context) (bool, error) {
	return s.Bool(ctx, KeyShopOpen)
}

func (s *Store) DeliveryEnabled(ctx context.Context) (bool, error) {
	v, ok, err := s.backend.Get(ctx, KeyDeliveryEnabled)
	if err != nil {
		return false, fmt.Errorf("read setting %s: %w", KeyDeliveryEnabled, err)
	}
	if ok {
		return parseBool(v), nil
	}
	return s.Bool(ctx, KeyEnableDelivery)
}

func (s *Store) DeliveryPolicy(ctx context.Context) (Policy, error) {
	var (
		p   Policy
		err error
	)
	if p.Enabled, err = s.DeliveryEnabled(ctx); err != nil {
		return Policy{}, err
	}
	if p.MinPrice, err = s.Uint(ctx, KeyDeliveryMinPrice); err != nil {
		return Policy{}, err
	}
	if p.MaxKm, err = s.Float(ctx, KeyDeliveryMaxKm); err != nil {
		return Policy{}, err
	}
	if p.BaseFee, err = s.Uint(ctx, KeyDeliveryFeeBase); err != nil {
		return Policy{}, err
	}
	if p.FeePerKm, err = s.Uint(ctx, KeyDeliveryFeePerKm); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func (s *Store) Mail(ctx context.Context) (Mail, error) {
	var (
		m   Mail
		err error
	)
	if m.To, err = s.String(ctx, KeyReportEmail); err != nil {
		return Mail{}, err
	}
	if m.From, err = s.String(ctx, KeySenderEmail); err != nil {
		return Mail{}, err
	}
	if m.APIKey, err = s.String(ctx, KeyResendAPIKey); err != nil {
		return Mail{}, err
	}
	return m, nil
}

// All returns every known key with defaults filled in.
func (s *Store) All(ctx context.Context) (map[string]string, error) {
	stored, err := s.backend.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	out := make(map[string]string, len(Defaults))
	for k, v := range Defaults {
		out[k] = v
	}
	for k, v := range stored {
		if _, known := Defaults[k]; known {
			out[k] = v
		}
	}
	if v, ok := stored[KeyEnableDelivery]; ok {
		if _, canonical := stored[KeyDeliveryEnabled]; !canonical {
			out[KeyDeliveryEnabled] = v
		}
	}
	return out, nil
}

// Save upserts recognised keys. The legacy alias is stored under its canonical key.
func (s *Store) Save(ctx context.Context, values map[string]string) error {
	clean := make(map[string]string, len(values))
	for k, v := range values {
		if k == KeyEnableDelivery {
			k = KeyDeliveryEnabled
		}
		if _, known := Defaults[k]; !known {
			return fmt.Errorf("%w: %s", ErrUnknownKey, k)
		}
		clean[k] = strings.TrimSpace(v)
	}
	if len(clean) == 0 {
		return nil
	}
	return s.backend.Upsert(ctx, clean)
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}

func sortedDefaultKeys() []string {
	keys := make([]string, 0, len(Defaults))
	for k := range Defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
