package domain

import "time"

// DefaultSessionDurationSecs is seven days.
const DefaultSessionDurationSecs int64 = 7 * 24 * 60 * 60

// Config is the persisted, process-wide configuration document.
// It is loaded once at startup and only changed by editing the file.
type Config struct {
	Auth AuthConfig `json:"auth"`
}

// AuthConfig controls the optional login gate.
type AuthConfig struct {
	Username string `json:"username"`
	// Password is either plain text or a bcrypt hash.
	Password            string `json:"password"`
	Enabled             bool   `json:"enabled"`
	SessionDurationSecs int64  `json:"session_duration_secs"`
}

// NewDefaultConfig returns the config seeded on first run. Missing fields in
// an existing file also fall back to these values.
func NewDefaultConfig(username, password string) Config {
	return Config{
		Auth: AuthConfig{
			Username:            username,
			Password:            password,
			Enabled:             false,
			SessionDurationSecs: DefaultSessionDurationSecs,
		},
	}
}

// SessionDuration is the sliding session window.
func (a AuthConfig) SessionDuration() time.Duration {
	return time.Duration(a.SessionDurationSecs) * time.Second
}
