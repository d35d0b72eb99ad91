package moderation

import "fmt"

// Config carries every threshold the engine consults. It is supplied by the
// caller on each entry point and treated as an immutable value for the
// duration of that call; the engine never caches it.
type Config struct {
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
	Spam      SpamConfig      `mapstructure:"spam" yaml:"spam"`
	Toxicity  ToxicityConfig  `mapstructure:"toxicity" yaml:"toxicity"`
	PumpDump  PumpDumpConfig  `mapstructure:"pump_dump" yaml:"pump_dump"`
	CapsSpam  CapsSpamConfig  `mapstructure:"caps_spam" yaml:"caps_spam"`
	Trust     TrustConfig     `mapstructure:"trust" yaml:"trust"`
	Durations DurationConfig  `mapstructure:"durations" yaml:"durations"`
	// FailClosed blocks messages when the counter store is unreachable.
	// Default is fail-open: infrastructure failure never silences users.
	FailClosed bool `mapstructure:"fail_closed" yaml:"fail_closed"`
}

// RateLimitConfig bounds message throughput per user in fixed windows.
type RateLimitConfig struct {
	MessagesPerWindow int `mapstructure:"messages_per_window" yaml:"messages_per_window"`
	WindowSeconds     int `mapstructure:"window_seconds" yaml:"window_seconds"`
}

// SpamConfig tunes duplicate and repeat-message detection.
type SpamConfig struct {
	DuplicateMessageThreshold     int `mapstructure:"duplicate_message_threshold" yaml:"duplicate_message_threshold"`
	DuplicateMessageWindowSeconds int `mapstructure:"duplicate_message_window_seconds" yaml:"duplicate_message_window_seconds"`
}

// ToxicityConfig gates the toxicity classifier.
type ToxicityConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// PumpDumpConfig gates market-manipulation detection.
type PumpDumpConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// CapsSpamConfig tunes the all-caps shouting detector. Both comparisons are
// strict: a message exactly at the ratio threshold or exactly at the minimum
// length does not trigger.
type CapsSpamConfig struct {
	Enabled            bool    `mapstructure:"enabled" yaml:"enabled"`
	CapsRatioThreshold float64 `mapstructure:"caps_ratio_threshold" yaml:"caps_ratio_threshold"`
	MinMessageLength   int     `mapstructure:"min_message_length" yaml:"min_message_length"`
}

// TrustConfig bounds the trust score and sets the per-action penalties.
type TrustConfig struct {
	InitialScore   int `mapstructure:"initial_score" yaml:"initial_score"`
	MinScore       int `mapstructure:"min_score" yaml:"min_score"`
	MaxScore       int `mapstructure:"max_score" yaml:"max_score"`
	WarningPenalty int `mapstructure:"warning_penalty" yaml:"warning_penalty"`
	StrikePenalty  int `mapstructure:"strike_penalty" yaml:"strike_penalty"`
	MutePenalty    int `mapstructure:"mute_penalty" yaml:"mute_penalty"`
	BanPenalty     int `mapstructure:"ban_penalty" yaml:"ban_penalty"`
}

// DurationConfig sets default mute/ban durations in minutes.
type DurationConfig struct {
	MuteMinutes int `mapstructure:"mute_minutes" yaml:"mute_minutes"`
	BanMinutes  int `mapstructure:"ban_minutes" yaml:"ban_minutes"`
}

// DefaultConfig returns production defaults. Deployments override these via
// the moderation section of the app configuration.
func DefaultConfig() Config {
	return Config{
		RateLimit: RateLimitConfig{
			MessagesPerWindow: 10,
			WindowSeconds:     15,
		},
		Spam: SpamConfig{
			DuplicateMessageThreshold:     3,
			DuplicateMessageWindowSeconds: 60,
		},
		Toxicity: ToxicityConfig{Enabled: true},
		PumpDump: PumpDumpConfig{Enabled: true},
		CapsSpam: CapsSpamConfig{
			Enabled:            true,
			CapsRatioThreshold: 0.7,
			MinMessageLength:   10,
		},
		Trust: TrustConfig{
			InitialScore:   100,
			MinScore:       0,
			MaxScore:       100,
			WarningPenalty: 2,
			StrikePenalty:  5,
			MutePenalty:    10,
			BanPenalty:     25,
		},
		Durations: DurationConfig{
			MuteMinutes: 10,
			BanMinutes:  1440,
		},
	}
}

// Validate checks threshold ranges. It runs once at config load; the engine
// assumes a validated value on every call.
func (c Config) Validate() error {
	if c.RateLimit.MessagesPerWindow <= 0 {
		return fmt.Errorf("rate_limit.messages_per_window must be positive, got %d", c.RateLimit.MessagesPerWindow)
	}
	if c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate_limit.window_seconds must be positive, got %d", c.RateLimit.WindowSeconds)
	}
	if c.Spam.DuplicateMessageThreshold <= 0 {
		return fmt.Errorf("spam.duplicate_message_threshold must be positive, got %d", c.Spam.DuplicateMessageThreshold)
	}
	if c.Spam.DuplicateMessageWindowSeconds <= 0 {
		return fmt.Errorf("spam.duplicate_message_window_seconds must be positive, got %d", c.Spam.DuplicateMessageWindowSeconds)
	}
	if c.CapsSpam.CapsRatioThreshold <= 0 || c.CapsSpam.CapsRatioThreshold > 1 {
		return fmt.Errorf("caps_spam.caps_ratio_threshold must be in (0,1], got %v", c.CapsSpam.CapsRatioThreshold)
	}
	if c.CapsSpam.MinMessageLength < 0 {
		return fmt.Errorf("caps_spam.min_message_length must not be negative, got %d", c.CapsSpam.MinMessageLength)
	}
	if c.Trust.MinScore > c.Trust.MaxScore {
		return fmt.Errorf("trust.min_score %d exceeds trust.max_score %d", c.Trust.MinScore, c.Trust.MaxScore)
	}
	if c.Trust.InitialScore < c.Trust.MinScore || c.Trust.InitialScore > c.Trust.MaxScore {
		return fmt.Errorf("trust.initial_score %d outside [%d,%d]", c.Trust.InitialScore, c.Trust.MinScore, c.Trust.MaxScore)
	}
	for name, penalty := range map[string]int{
		"warning_penalty": c.Trust.WarningPenalty,
		"strike_penalty":  c.Trust.StrikePenalty,
		"mute_penalty":    c.Trust.MutePenalty,
		"ban_penalty":     c.Trust.BanPenalty,
	} {
		if penalty < 0 {
			return fmt.Errorf("trust.%s must not be negative, got %d", name, penalty)
		}
	}
	if c.Durations.MuteMinutes < 0 || c.Durations.BanMinutes < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}
