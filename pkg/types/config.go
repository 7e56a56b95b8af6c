package types

// Pipeline defaults.
const (
	DefaultRepetitions    = 3
	DefaultFreshnessHours = 24
	DefaultPacingSeconds  = 2
)

// PlatformConfig configures one AI platform adapter.
type PlatformConfig struct {
	Name    Platform `yaml:"name" json:"name"`
	Model   string   `yaml:"model,omitempty" json:"model,omitempty"`
	APIKey  string   `yaml:"apiKey" json:"apiKey"`                     // literal, "env:VAR", or "aws-sm://name[#key]"
	BaseURL string   `yaml:"baseUrl,omitempty" json:"baseUrl,omitempty"` // override for testing / proxies
}

// AlertConfig configures one alert sink.
type AlertConfig struct {
	Type     AlertType `yaml:"type" json:"type"`
	URL      string    `yaml:"url,omitempty" json:"url,omitempty"`
	Path     string    `yaml:"path,omitempty" json:"path,omitempty"`
	TopicARN string    `yaml:"topicArn,omitempty" json:"topicArn,omitempty"`
}

// ServerConfig configures the read-only reporting API.
type ServerConfig struct {
	Addr   string `yaml:"addr,omitempty" json:"addr,omitempty"`
	APIKey string `yaml:"apiKey,omitempty" json:"apiKey,omitempty"`
}

// ProjectConfig is the top-level citewatch.yaml configuration.
// Backend-specific sections are decoded in a second pass by internal/config.
type ProjectConfig struct {
	Provider       string           `yaml:"provider" json:"provider"` // "dynamodb" or "memory"
	Platforms      []PlatformConfig `yaml:"platforms" json:"platforms"`
	Repetitions    int              `yaml:"repetitions,omitempty" json:"repetitions,omitempty"`
	FreshnessHours int              `yaml:"freshnessHours,omitempty" json:"freshnessHours,omitempty"`
	PacingSeconds  int              `yaml:"pacingSeconds,omitempty" json:"pacingSeconds,omitempty"`
	CatalogFile    string           `yaml:"catalogFile,omitempty" json:"catalogFile,omitempty"`
	CatalogDir     string           `yaml:"catalogDir,omitempty" json:"catalogDir,omitempty"`
	Alerts         []AlertConfig    `yaml:"alerts,omitempty" json:"alerts,omitempty"`
	Server         ServerConfig     `yaml:"server,omitempty" json:"server,omitempty"`

	// Populated by internal/config from the backend section matching Provider.
	DynamoDB interface{} `yaml:"-" json:"-"`
}
