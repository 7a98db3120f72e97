package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/funcinfra/pipelinectl/internal/errkind"
	"github.com/funcinfra/pipelinectl/internal/viper"
)

// Storage represents the storage account that results are uploaded to.
type Storage struct {
	AccountName string `yaml:"accountName"`
	AccountKey  string `yaml:"accountKey"`
	Container   string `yaml:"container"`
}

// DevOps represents the Azure DevOps project that hosts the pipeline.
type DevOps struct {
	URL          string `yaml:"url"`
	Organization string `yaml:"organization"`
	Project      string `yaml:"project"`
	Username     string `yaml:"username"`
	PAT          string `yaml:"pat"`
}

// Pipeline represents the pipeline that is invoked.
type Pipeline struct {
	Name         string `yaml:"name"`
	DisplayName  string `yaml:"displayName"`
	Owner        string `yaml:"owner"`
	DefinitionID int    `yaml:"definitionID"`
	SourceBranch string `yaml:"sourceBranch"`
	// Parameters is a `key=value;key=value` string passed on to the run.
	Parameters string `yaml:"parameters"`
	Type       string `yaml:"type"`
}

// Polling controls how the run's status is watched.
type Polling struct {
	Interval time.Duration `yaml:"interval"`
	MaxTries int           `yaml:"maxTries"`
}

// When represents a conditional status for when notifications should be sent.
type When string

// These conditions indicate when notifications are to be sent.
const (
	WhenFail   When = "fail"
	WhenPass   When = "pass"
	WhenNever  When = "never"
	WhenAlways When = "always"
)

// IsNow returns true if When fulfills its own condition of 'passed'.
func (w When) IsNow(passed bool) bool {
	if w == WhenAlways {
		return true
	}
	if w == WhenFail && !passed {
		return true
	}
	if w == WhenPass && passed {
		return true
	}
	return false
}

func (w When) valid() bool {
	switch w {
	case "", WhenFail, WhenPass, WhenNever, WhenAlways:
		return true
	}
	return false
}

// Slack represents slack notification settings.
type Slack struct {
	Channels []string `yaml:"channels"`
	Send     When     `yaml:"send"`
}

// Notifications represents the notification settings.
type Notifications struct {
	Slack Slack `yaml:"slack"`
}

// Run represents the configuration of `pipelinectl run`.
type Run struct {
	Storage          Storage       `yaml:"storage"`
	FunctionsVersion string        `yaml:"functionsVersion"`
	DevOps           DevOps        `yaml:"devops"`
	Pipeline         Pipeline      `yaml:"pipeline"`
	Polling          Polling       `yaml:"polling"`
	ResultsDir       string        `yaml:"resultsDir"`
	BadgeURL         string        `yaml:"badgeURL"`
	Notifications    Notifications `yaml:"notifications"`
}

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Is reports a ValidationError as a validation error.
func (e *ValidationError) Is(target error) bool {
	return target == errkind.ErrValidation
}

// Validate checks that all required settings are present and well-formed.
func (r *Run) Validate() error {
	var problems []string
	require := func(v, name string) {
		if strings.TrimSpace(v) == "" {
			problems = append(problems, "missing "+name)
		}
	}

	require(r.Storage.AccountName, "storage account name")
	require(r.Storage.AccountKey, "storage account key")
	require(r.FunctionsVersion, "functions version")
	require(r.DevOps.Username, "DevOps user name")
	require(r.DevOps.PAT, "DevOps personal access token")
	require(r.DevOps.Organization, "DevOps organization")
	require(r.DevOps.Project, "DevOps project")

	if r.Pipeline.DefinitionID <= 0 {
		problems = append(problems, fmt.Sprintf("invalid pipeline definition id %d", r.Pipeline.DefinitionID))
	}
	if r.Polling.Interval <= 0 {
		problems = append(problems, fmt.Sprintf("invalid poll interval %s", r.Polling.Interval))
	}
	if r.Polling.MaxTries <= 0 {
		problems = append(problems, fmt.Sprintf("invalid max tries %d", r.Polling.MaxTries))
	}
	if !r.Notifications.Slack.Send.valid() {
		problems = append(problems, fmt.Sprintf("invalid slack send condition %q", r.Notifications.Slack.Send))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ApplyEnv fills settings that have not been configured from the environment.
func (r *Run) ApplyEnv() {
	setIfEmpty(&r.Storage.AccountName, os.Getenv("AZURE_STORAGE_ACCOUNT"))
	setIfEmpty(&r.Storage.AccountKey, os.Getenv("AZURE_STORAGE_KEY"))
	setIfEmpty(&r.DevOps.Username, os.Getenv("DEVOPS_USERNAME"))
	setIfEmpty(&r.DevOps.PAT, os.Getenv("DEVOPS_PAT"))
}

func setIfEmpty(field *string, v string) {
	if *field == "" {
		*field = v
	}
}

// Unmarshal parses the file cfgPath, if any, together with all bound flags into the given struct.
func Unmarshal(cfgPath string, v interface{}) error {
	if cfgPath != "" {
		name := strings.TrimSuffix(filepath.Base(cfgPath), filepath.Ext(cfgPath)) // config name without extension
		viper.SetConfigName(name)
		viper.AddConfigPath(filepath.Dir(cfgPath))
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", cfgPath, err)
		}
	}

	return viper.Unmarshal(v, func(decodeCfg *mapstructure.DecoderConfig) {
		decodeCfg.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			func(in reflect.Kind, out reflect.Kind, v interface{}) (interface{}, error) {
				return expandEnv(v), nil
			},
		)
	})
}

func expandEnv(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case string:
		return os.ExpandEnv(val)
	case []string:
		var strs []string
		for _, item := range val {
			strs = append(strs, os.ExpandEnv(item))
		}
		return strs
	case []interface{}:
		var items []interface{}
		for _, item := range val {
			items = append(items, expandEnv(item))
		}
		return items
	case map[string]interface{}:
		for key, item := range val {
			val[key] = expandEnv(item)
		}
		return val
	}
	return v
}
