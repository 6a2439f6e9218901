package config

import (
	"fmt"
	"strings"
)

// DirectoryBackend selects where the identity directory is stored.
type DirectoryBackend string

const (
	// DirectoryBackendPostgres stores identities as database rows.
	DirectoryBackendPostgres DirectoryBackend = "postgres"
	// DirectoryBackendFile stores identities in a YAML credentials file,
	// mirroring the layout the early dashboards read from their secrets.
	DirectoryBackendFile DirectoryBackend = "file"
)

// UnmarshalText implements encoding.TextUnmarshaler for DirectoryBackend.
func (d *DirectoryBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "postgres", "file":
		*d = DirectoryBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid DirectoryBackend: %q (valid options: postgres, file)", v)
	}
}

// DirectoryConfig selects and configures the identity directory backend.
type DirectoryConfig struct {
	// Backend determines which store holds identity records.
	Backend DirectoryBackend `env:"BACKEND" envDefault:"postgres"`

	// FilePath is the YAML credentials file (used when Backend=file).
	FilePath string `env:"FILE_PATH" envDefault:"credentials.yaml"`
}
