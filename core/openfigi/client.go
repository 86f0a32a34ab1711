package openfigi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// IDTypeBBGlobal is the OpenFIGI id type of Bloomberg global identifiers (FIGIs).
const IDTypeBBGlobal = "ID_BB_GLOBAL"

// AnonymousBatchSize is the most jobs OpenFIGI accepts per request without an API key.
const AnonymousBatchSize = 10

// Mapping is the first instrument OpenFIGI returned for an identifier.
type Mapping struct {
	FIGI                string `json:"figi"`
	Name                string `json:"name"`
	Ticker              string `json:"ticker"`
	ExchCode            string `json:"exchCode"`
	MarketSector        string `json:"marketSector"`
	SecurityType        string `json:"securityType"`
	SecurityType2       string `json:"securityType2"`
	SecurityDescription string `json:"securityDescription"`
}

type job struct {
	IDType  string `json:"idType"`
	IDValue string `json:"idValue"`
}

type jobResult struct {
	Data    []Mapping `json:"data"`
	Error   string    `json:"error"`
	Warning string    `json:"warning"`
}

// Client resolves identifiers through the OpenFIGI mapping endpoint.
// It is safe for concurrent use. Resolved ids are shared across calls through a TTL cache.
type Client struct {
	http      *http.Client
	url       string
	apiKey    string
	batchSize int
	limiter   *rate.Limiter
	cache     *cache.Cache
	logger    *zap.Logger
}

// NewClient creates a mapping client from cfg.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.openfigi.com"
	}
	version := cfg.Version
	if version == "" {
		version = "v3"
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 100
	}
	if cfg.APIKey == "" && batch > AnonymousBatchSize {
		batch = AnonymousBatchSize
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}

	return &Client{
		http:      &http.Client{Timeout: timeout},
		url:       fmt.Sprintf("%s/%s/mapping", base, version),
		apiKey:    cfg.APIKey,
		batchSize: batch,
		limiter:   rate.NewLimiter(limit, 1),
		cache:     cache.New(ttl, 2*ttl),
		logger:    logger,
	}
}

// MapBatch resolves BB global ids. Ids are de-duplicated and sent in chunks of the batch size.
// Ids OpenFIGI cannot resolve are absent from the result.
func (c *Client) MapBatch(ctx context.Context, ids []string) (map[string]Mapping, error) {
	result := make(map[string]Mapping, len(ids))
	seen := make(map[string]struct{}, len(ids))
	var misses []string

	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if m, ok := c.cache.Get(id); ok {
			result[id] = m.(Mapping)
			continue
		}
		misses = append(misses, id)
	}

	for start := 0; start < len(misses); start += c.batchSize {
		end := min(start+c.batchSize, len(misses))
		chunk := misses[start:end]

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		results, err := c.post(ctx, chunk)
		if err != nil {
			return nil, err
		}

		for i, r := range results {
			id := chunk[i]
			if len(r.Data) == 0 {
				c.logger.Debug("Unresolved identifier", zap.String("id", id), zap.String("error", r.Error), zap.String("warning", r.Warning))
				continue
			}
			result[id] = r.Data[0]
			c.cache.SetDefault(id, r.Data[0])
		}
	}

	c.logger.Debug("Mapped identifiers",
		zap.Int("requested", len(seen)),
		zap.Int("fetched", len(misses)),
		zap.Int("resolved", len(result)))

	return result, nil
}

func (c *Client) post(ctx context.Context, ids []string) ([]jobResult, error) {
	jobs := make([]job, len(ids))
	for i, id := range ids {
		jobs[i] = job{IDType: IDTypeBBGlobal, IDValue: id}
	}
	body, err := json.Marshal(jobs)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-OPENFIGI-APIKEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openfigi request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("openfigi: bad response code %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var results []jobResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("openfigi: failed to decode response: %w", err)
	}
	if len(results) != len(ids) {
		return nil, fmt.Errorf("openfigi: got %d results for %d jobs", len(results), len(ids))
	}
	return results, nil
}
