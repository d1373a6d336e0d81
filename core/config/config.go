package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/josephlewis42/rush/core/syntax"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte

	aliasNameRegex = regexp.MustCompile(`^\w+$`)
)

const (
	ConfigurationName = "config.yaml"

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type Configuration struct {
	configFs afero.Fs
	dir      string

	// Prompt is used when PS1 isn't set.
	Prompt string `json:"prompt"`
	Color  string `json:"color" validate:"omitempty,oneof=auto always never"`

	HistoryFile  string `json:"history_file"`
	HistoryLimit int    `json:"history_limit" validate:"gte=0"`

	EventLog string `json:"event_log"`

	// Path replaces PATH when set.
	Path string `json:"path"`

	Aliases   map[string]string `json:"aliases" validate:"dive,keys,alias_name,endkeys"`
	Variables map[string]string `json:"variables" validate:"dive,keys,var_name,endkeys"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})
	validate.RegisterValidation("alias_name", func(fl validator.FieldLevel) bool {
		return aliasNameRegex.MatchString(fl.Field().String())
	})
	validate.RegisterValidation("var_name", func(fl validator.FieldLevel) bool {
		return syntax.IsName(fl.Field().String())
	})

	return validate.Struct(c)
}

// Dir returns the directory the configuration was loaded from, empty for the
// built-in default.
func (c *Configuration) Dir() string {
	return c.dir
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		return afero.NewOsFs()
	}
	return c.configFs
}

// resolve returns where a file named in the configuration lives. Relative
// names are inside the configuration directory.
func (c *Configuration) resolve(name string) string {
	if filepath.IsAbs(name) || c.dir == "" {
		return name
	}
	return filepath.Join(c.dir, name)
}

// HistoryPath returns the history file, empty if history isn't saved.
func (c *Configuration) HistoryPath() string {
	if c.HistoryFile == "" {
		return ""
	}
	return c.resolve(c.HistoryFile)
}

// EventLogPath returns the event log, empty if events aren't recorded.
func (c *Configuration) EventLogPath() string {
	if c.EventLog == "" {
		return ""
	}
	return c.resolve(c.EventLog)
}

// OpenEventLog opens the event log in an append only state.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	return c.fs().OpenFile(c.EventLogPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the event log for reading.
func (c *Configuration) ReadEventLog() (afero.File, error) {
	return c.fs().OpenFile(c.EventLogPath(), os.O_RDONLY, 0600)
}

// ColorEnabled reports whether error messages should be colorized.
func (c *Configuration) ColorEnabled(interactive bool) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return interactive
	}
}

// Default returns the built-in configuration.
func Default() *Configuration {
	return defaultConfig()
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
