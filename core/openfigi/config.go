package openfigi

// Config holds configuration for the OpenFIGI mapping client.
type Config struct {
	// APIKey is sent as X-OPENFIGI-APIKEY. Empty uses the anonymous quota.
	APIKey string `mapstructure:"api_key" default:""`
	// BaseURL is the API root.
	BaseURL string `mapstructure:"base_url" default:"https://api.openfigi.com"`
	// Version is the API version path segment.
	Version string `mapstructure:"version" default:"v3"`
	// BatchSize is the maximum number of jobs per mapping request.
	BatchSize int `mapstructure:"batch_size" default:"100"`
	// RequestsPerMinute bounds outgoing mapping requests.
	RequestsPerMinute int `mapstructure:"requests_per_minute" default:"25"`
	// CacheTTLMinutes is how long a resolved id stays cached.
	CacheTTLMinutes int `mapstructure:"cache_ttl_minutes" default:"720"`
	// TimeoutSeconds is the HTTP request timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
