// Package exchange fetches the USD/MXN FIX rate published by Banxico's SIE API.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

const (
	SeriesFIX = "SF43718"

	cacheKeyUSDMXN = "usd_mxn"
)

var ErrNoData = errors.New("banxico: series has no data")

type Rate struct {
	Value  decimal.Decimal `json:"value"`
	Date   string          `json:"date"`
	Source string          `json:"source"`
}

type Banxico struct {
	log         *slog.Logger
	client      *http.Client
	baseURL     string
	token       string
	defaultRate decimal.Decimal
	cache       *cache.Cache
}

type Option func(*Banxico)

func WithHTTPClient(c *http.Client) Option {
	return func(b *Banxico) {
		if c != nil {
			b.client = c
		}
	}
}

func NewBanxico(log *slog.Logger, baseURL, token string, ttl time.Duration, defaultRate decimal.Decimal, opts ...Option) *Banxico {
	b := &Banxico{
		log:         log,
		client:      &http.Client{Timeout: 5 * time.Second},
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		defaultRate: defaultRate,
		cache:       cache.New(ttl, 2*ttl),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

type sieResponse struct {
	Bmx struct {
		Series []struct {
			IDSerie string `json:"idSerie"`
			Datos   []struct {
				Fecha string `json:"fecha"`
				Dato  string `json:"dato"`
			} `json:"datos"`
		} `json:"series"`
	} `json:"bmx"`
}

// USDMXN returns the latest FIX rate. Without a token the configured default rate is used.
func (b *Banxico) USDMXN(ctx context.Context) (decimal.Decimal, error) {
	rate, err := b.Latest(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return rate.Value, nil
}

func (b *Banxico) Latest(ctx context.Context) (Rate, error) {
	const op = "exchange.Banxico.Latest"

	if b.token == "" {
		return Rate{Value: b.defaultRate, Source: "default"}, nil
	}

	if cached, ok := b.cache.Get(cacheKeyUSDMXN); ok {
		return cached.(Rate), nil
	}

	rate, err := b.fetch(ctx)
	if err != nil {
		return Rate{}, fmt.Errorf("%s: %w", op, err)
	}

	b.cache.SetDefault(cacheKeyUSDMXN, rate)
	b.log.Debug("tipo de cambio actualizado", slog.String("op", op), slog.String("rate", rate.Value.String()), slog.String("date", rate.Date))

	return rate, nil
}

func (b *Banxico) fetch(ctx context.Context) (Rate, error) {
	url := fmt.Sprintf("%s/series/%s/datos/oportuno", b.baseURL, SeriesFIX)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Rate{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Bmx-Token", b.token)

	resp, err := b.client.Do(req)
	if err != nil {
		return Rate{}, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Rate{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body sieResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Rate{}, fmt.Errorf("decode: %w", err)
	}

	for _, s := range body.Bmx.Series {
		if s.IDSerie != SeriesFIX || len(s.Datos) == 0 {
			continue
		}

		last := s.Datos[len(s.Datos)-1]
		value, err := decimal.NewFromString(strings.ReplaceAll(last.Dato, ",", ""))
		if err != nil {
			return Rate{}, fmt.Errorf("parse dato %q: %w", last.Dato, err)
		}

		return Rate{Value: value, Date: last.Fecha, Source: "banxico"}, nil
	}

	return Rate{}, ErrNoData
}
