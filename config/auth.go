package config

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AuthConfig groups session and password hashing configuration.
type AuthConfig struct {
	// SessionTTL is how long a session lives after login.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"8h"`

	// SessionKeyPrefix namespaces session keys in the session store.
	SessionKeyPrefix string `env:"SESSION_KEY_PREFIX" envDefault:"biplus:session:"`

	// BcryptCost is the bcrypt work factor for password hashing.
	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`
}

// Sanitize applies guardrails to authentication configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionTTL <= 0 {
		a.SessionTTL = 8 * time.Hour
	}
	if a.BcryptCost < bcrypt.MinCost || a.BcryptCost > bcrypt.MaxCost {
		a.BcryptCost = bcrypt.DefaultCost
	}
}
