// Package config holds the run configuration assembled from defaults, an
// optional YAML file, and command-line flags. The assembled Config is not
// mutated after Validate; components receive it read-only.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Alby-Shinoj7/docker-setup/internal/models"
)

// DefaultPath is consulted when no --config flag is given; its absence is
// not an error.
const DefaultPath = "/etc/docker-setup/config.yaml"

// DefaultMirror is the upstream package host used unless a mirror is
// configured.
const DefaultMirror = "https://download.docker.com"

// namePattern matches valid operator user names.
var namePattern = regexp.MustCompile(`^[a-z_][a-z0-9_-]*\$?$`)

// Config is the run configuration.
type Config struct {
	// Channel selects the upstream release channel.
	Channel string `yaml:"channel" validate:"oneof=stable test"`

	// Compose requests the compose plugin alongside the engine.
	Compose bool `yaml:"compose"`

	// Mirror is the base URL packages and keys are fetched from.
	Mirror string `yaml:"mirror" validate:"required,url"`

	// User is the operator to enroll in the runtime group. Empty falls
	// back to $SUDO_USER.
	User string `yaml:"user" validate:"omitempty,unixname"`

	// Flag-only switches, never read from the file.
	DryRun    bool `yaml:"-"`
	Verbose   bool `yaml:"-"`
	AssumeYes bool `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Channel: models.ChannelStable,
		Compose: true,
		Mirror:  DefaultMirror,
	}
}

// Load overlays the YAML file at path onto cfg. When explicit is false the
// path is the default location and a missing file is ignored.
func Load(path string, explicit bool, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	return nil
}

// Validate checks the assembled configuration.
func (c Config) Validate() error {
	v := validator.New()

	_ = v.RegisterValidation("unixname", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	})

	err := v.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s fails %q", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return fmt.Errorf("invalid configuration: %w", err)
}

// MirrorHost returns the host part of the configured mirror URL, used to
// decide whether an existing repository file already points at the mirror.
func (c Config) MirrorHost() string {
	u, err := url.Parse(c.Mirror)
	if err != nil {
		return ""
	}
	return u.Host
}
