// Package config loads the connection settings for a LIMS server from
// a YAML file, with environment variables taking precedence.
//
// A configuration file looks like this:
//
//	baseuri: https://lims.example.com
//	username: apiuser
//	password: secret
//	version: v2
//	main_log: /var/log/clarity.log
package config // import "github.com/CognitoIQ/go-clarity/config"

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultVersion is the API version used when none is configured.
const DefaultVersion = "v2"

// Environment variables that override the file.
const (
	EnvBaseURI  = "CLARITY_BASEURI"
	EnvUsername = "CLARITY_USERNAME"
	EnvPassword = "CLARITY_PASSWORD"
	EnvVersion  = "CLARITY_VERSION"
)

// ErrNotFound is returned by Load when no path is given and none of
// the search path exists.
var ErrNotFound = errors.New("no clarity configuration file found")

// Config holds the settings needed to open a session.
type Config struct {
	BaseURI  string `yaml:"baseuri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Version  string `yaml:"version"`
	// MainLog is a file to write the log to. Empty means stderr.
	MainLog string `yaml:"main_log"`
}

// APIRoot is the root of the REST API, for example
// https://lims.example.com/api/v2.
func (c *Config) APIRoot() string {
	return strings.TrimRight(c.BaseURI, "/") + "/api/" + c.Version
}

// SearchPath lists the files Load tries, in order, when it is given
// no path. The first one that exists is used.
func SearchPath() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".clarity.yaml"))
	}
	return append(paths, ".clarity.yaml", "/etc/clarity.yaml")
}

// Load reads the configuration at path, or the first file found on
// SearchPath if path is empty, and applies environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = find(SearchPath()); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read clarity configuration")
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return c, nil
}

// Parse decodes a configuration document, applies environment
// overrides and defaults, and checks that the required settings are
// present.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "parse clarity configuration")
	}
	c.applyEnv()
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports the first required setting that is empty.
func (c *Config) Validate() error {
	for _, f := range []struct{ key, value string }{
		{"baseuri", c.BaseURI},
		{"username", c.Username},
		{"password", c.Password},
	} {
		if f.value == "" {
			return errors.Errorf("clarity configuration: %s is not set", f.key)
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	for _, v := range []struct {
		env string
		dst *string
	}{
		{EnvBaseURI, &c.BaseURI},
		{EnvUsername, &c.Username},
		{EnvPassword, &c.Password},
		{EnvVersion, &c.Version},
	} {
		if s, ok := os.LookupEnv(v.env); ok && s != "" {
			*v.dst = s
		}
	}
}

func (c *Config) applyDefaults() {
	c.BaseURI = strings.TrimSpace(c.BaseURI)
	c.Username = strings.TrimSpace(c.Username)
	c.Version = strings.TrimSpace(c.Version)
	c.MainLog = strings.TrimSpace(c.MainLog)
	if c.Version == "" {
		c.Version = DefaultVersion
	}
}

func find(paths []string) (string, error) {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", errors.WithStack(ErrNotFound)
}
