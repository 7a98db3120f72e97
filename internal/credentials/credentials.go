// Package credentials manages the Azure DevOps credentials used to queue and inspect pipeline runs.
package credentials

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/funcinfra/pipelinectl/internal/yaml"
)

// Credentials contains a DevOps user name and its personal access token (PAT).
type Credentials struct {
	Username string `yaml:"username"`
	PAT      string `yaml:"pat"`
	Source   string `yaml:"-"`
}

// Get returns the configured credentials.
//
// The lookup order is:
//  1. Environment variables (see FromEnv)
//  2. Credentials file (see FromFile)
func Get() Credentials {
	if c := FromEnv(); c.IsSet() {
		return c
	}

	return FromFile()
}

// FromEnv reads the credentials from the user environment.
func FromEnv() Credentials {
	return Credentials{
		Username: os.Getenv("DEVOPS_USERNAME"),
		PAT:      os.Getenv("DEVOPS_PAT"),
		Source:   "Environment variables($DEVOPS_USERNAME, $DEVOPS_PAT)",
	}
}

// FromFile reads the credentials that are stored in the default file location.
func FromFile() Credentials {
	return fromFile(defaultFilepath())
}

func fromFile(path string) Credentials {
	var c Credentials
	if err := yaml.ReadFile(path, &c); err != nil {
		if os.IsNotExist(err) {
			// not a real error, credentials may not have been persisted yet
			return Credentials{}
		}

		log.Error().Msgf("failed to read credentials: %v", err)
		return Credentials{}
	}
	c.Source = "credentials file " + path

	return c
}

// ToFile stores the provided credentials in the default file location.
func ToFile(c Credentials) error {
	return toFile(c, defaultFilepath())
}

func toFile(c Credentials, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("unable to create configuration folder: %w", err)
	}
	return yaml.WriteFile(path, c, 0600)
}

// defaultFilepath returns the default location of the credentials file.
func defaultFilepath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".pipelinectl", "credentials.yml")
}

// IsSet checks whether both the user name and the PAT are set.
func (c *Credentials) IsSet() bool {
	return c.Username != "" && c.PAT != ""
}

// BasicAuth returns the value of an Authorization header for HTTP Basic authentication.
func (c *Credentials) BasicAuth() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.Username+":"+c.PAT))
}
