package config

import "time"

// Config is the root configuration for DarkJarvis. Values come from defaults,
// an optional config.yaml, a .env file and the process environment, in that
// order of increasing precedence.
type Config struct {
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Persona   PersonaConfig   `mapstructure:"persona"`
	AI        AIConfig        `mapstructure:"ai"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Bot       BotConfig       `mapstructure:"bot"`
	Messages  MessagesConfig  `mapstructure:"messages"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// TelegramConfig holds the bot credentials. AdminID 0 disables admin features.
type TelegramConfig struct {
	Token   string `mapstructure:"token"    validate:"required"`
	AdminID int64  `mapstructure:"admin_id" validate:"gte=0"`
}

// PersonaConfig defines the simulated personality.
type PersonaConfig struct {
	Name            string `mapstructure:"name"             validate:"required"`
	Signature       string `mapstructure:"signature"`
	BaseIdentity    string `mapstructure:"base_identity"    validate:"required"`
	UnfilteredBlock string `mapstructure:"unfiltered_block" validate:"required"`
}

// AIConfig selects and configures the completion providers.
type AIConfig struct {
	DefaultProvider string        `mapstructure:"default_provider" validate:"oneof=openai deepseek gemini ollama"`
	Timeout         time.Duration `mapstructure:"timeout"          validate:"min=1s,max=10m"`
	Temperature     float32       `mapstructure:"temperature"      validate:"min=0,max=2"`

	OpenAI   OpenAICompatibleConfig `mapstructure:"openai"`
	DeepSeek OpenAICompatibleConfig `mapstructure:"deepseek"`
	Gemini   GeminiConfig           `mapstructure:"gemini"`
	Ollama   OllamaConfig           `mapstructure:"ollama"`
}

// OpenAICompatibleConfig configures a provider speaking the chat completions API.
type OpenAICompatibleConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
	Model   string `mapstructure:"model"    validate:"required"`
}

// GeminiConfig configures the Google Gemini provider.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model" validate:"required"`
}

// OllamaConfig configures a self-hosted Ollama server. An empty Host disables it.
type OllamaConfig struct {
	Host  string `mapstructure:"host"  validate:"omitempty,url"`
	Model string `mapstructure:"model" validate:"required"`
}

// WeatherConfig configures the OpenWeatherMap client.
type WeatherConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url" validate:"required,url"`
	Units    string        `mapstructure:"units"    validate:"oneof=metric imperial standard"`
	Language string        `mapstructure:"language"`
	Timeout  time.Duration `mapstructure:"timeout"  validate:"min=1s,max=2m"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend         string `mapstructure:"backend"            validate:"oneof=json sqlite"`
	UsersPath       string `mapstructure:"users_path"         validate:"required"`
	GroupsPath      string `mapstructure:"groups_path"        validate:"required"`
	SQLitePath      string `mapstructure:"sqlite_path"        validate:"required_if=Backend sqlite"`
	MaxWordsPerUser int    `mapstructure:"max_words_per_user" validate:"gte=0"`
}

// SchedulerConfig holds the timezone and per-task schedules.
type SchedulerConfig struct {
	Timezone  string                `mapstructure:"timezone"   validate:"required"`
	SendDelay time.Duration         `mapstructure:"send_delay" validate:"gte=0"`
	Tasks     map[string]TaskConfig `mapstructure:"tasks"      validate:"dive"`
}

// TaskConfig schedules one task either daily at a clock time ("HH:MM") or at a
// fixed interval. At takes precedence when both are set.
type TaskConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	At       string        `mapstructure:"at"       validate:"omitempty,datetime=15:04"`
	Interval time.Duration `mapstructure:"interval" validate:"gte=0"`
}

// BotConfig holds Telegram interaction tuning.
type BotConfig struct {
	FlowTimeout       time.Duration `mapstructure:"flow_timeout"        validate:"min=1m"`
	GroupMentionsOnly bool          `mapstructure:"group_mentions_only"`
	SendTimeout       time.Duration `mapstructure:"send_timeout"        validate:"min=1s"`
}

// MessagesConfig holds user-facing texts.
type MessagesConfig struct {
	Welcome           string `mapstructure:"welcome"            validate:"required"`
	Forbidden         string `mapstructure:"forbidden"          validate:"required"`
	NotConfigured     string `mapstructure:"not_configured"     validate:"required"`
	AIFallback        string `mapstructure:"ai_fallback"        validate:"required"`
	GeneralError      string `mapstructure:"general_error"      validate:"required"`
	ModeOn            string `mapstructure:"mode_on"            validate:"required"`
	ModeOff           string `mapstructure:"mode_off"           validate:"required"`
	MusicSoon         string `mapstructure:"music_soon"         validate:"required"`
	WeatherUsage      string `mapstructure:"weather_usage"      validate:"required"`
	WeatherNotFound   string `mapstructure:"weather_not_found"  validate:"required"`
	WeatherInvalidKey string `mapstructure:"weather_invalid_key" validate:"required"`
	AdminPanel        string `mapstructure:"admin_panel"        validate:"required"`
	Saved             string `mapstructure:"saved"              validate:"required"`
	SaveFailed        string `mapstructure:"save_failed"        validate:"required"`
	NoGroups          string `mapstructure:"no_groups"          validate:"required"`
	ChooseGroup       string `mapstructure:"choose_group"       validate:"required"`
	AskText           string `mapstructure:"ask_text"           validate:"required"`
	Confirm           string `mapstructure:"confirm"            validate:"required"`
	Cancelled         string `mapstructure:"cancelled"          validate:"required"`
	NothingToCancel   string `mapstructure:"nothing_to_cancel"  validate:"required"`
	FlowExpired       string `mapstructure:"flow_expired"       validate:"required"`
	Delivered         string `mapstructure:"delivered"          validate:"required"`
	ProviderSelected  string `mapstructure:"provider_selected"  validate:"required"`
}

// LoggerConfig controls slog output.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// MetricsConfig exposes Prometheus metrics when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}
