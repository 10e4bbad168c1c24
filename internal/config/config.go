// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) returning a Config with defaults.
// - Layer a YAML file and SAUDI_-prefixed env vars on top via Load.
// - External errors are wrapped via this package's sentinel kinds.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// AdminSecret is the shared secret that grants the admin role.
	AdminSecret string `koanf:"admin_secret"`

	// MaxTeams bounds team selection and info-card assignment.
	MaxTeams int `koanf:"max_teams"`

	// NoteDataDir is where the file-backed note store keeps its documents.
	// Empty selects the in-memory store.
	NoteDataDir string `koanf:"note_data_dir"`

	// DebounceMS is the quiet period after a note edit before persisting
	// and broadcasting, in milliseconds.
	DebounceMS int `koanf:"debounce_ms"`

	// SyncPulseMS is how long the syncing indicator stays lit after a
	// remote update arrives, in milliseconds.
	SyncPulseMS int `koanf:"sync_pulse_ms"`

	// BusBuffer sizes each subscriber inbox on the sync bus.
	BusBuffer int `koanf:"bus_buffer"`

	// FeedbackLatencyMinMS and FeedbackLatencyMaxMS bound the simulated
	// feedback collaborator latency.
	FeedbackLatencyMinMS int `koanf:"feedback_latency_min_ms"`
	FeedbackLatencyMaxMS int `koanf:"feedback_latency_max_ms"`
}

// New returns a Config populated with defaults. The debounce and pulse
// durations follow the reference classroom app.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		AdminSecret:          "6749467",
		MaxTeams:             12,
		NoteDataDir:          "",
		DebounceMS:           800,
		SyncPulseMS:          500,
		BusBuffer:            64,
		FeedbackLatencyMinMS: 80,
		FeedbackLatencyMaxMS: 150,
	}
}
