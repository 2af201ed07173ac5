// Package config provides configuration management for the esconfig tool.
// It loads the declarative cluster configuration from the working directory,
// optionally merged with a local override file, and resolves which
// environment an invocation targets.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the declarative configuration file looked up in the working directory
	FileName = ".esconfig.json"
	// LocalFileName is an optional file merged over FileName, usually kept out of version control
	LocalFileName = ".esconfig.local.json"
)

// yamlFileNames are tried, in order, when FileName does not exist
var yamlFileNames = []string{".esconfig.yaml", ".esconfig.yml"}

var (
	// ErrConfigMissing is returned when no configuration file exists in the working directory
	ErrConfigMissing = errors.New("could not find config file")
	// ErrConfigInvalid is returned when the configuration file cannot be parsed or is empty
	ErrConfigInvalid = errors.New("invalid config file")
	// ErrHostUndefined is returned when the resolved environment has no host entry
	ErrHostUndefined = errors.New("no host defined")
	// ErrWarmUndefined is returned when the resolved environment has no warm-up command
	ErrWarmUndefined = errors.New("no warm up defined")
)

// Section names of the configuration document
const (
	sectionDefaultEnvironment = "default_environment"
	sectionHost               = "host"
	sectionWarm               = "warm"
	sectionIndexes            = "indexes"
	sectionIngest             = "_ingest"
)

// Config represents the declarative cluster configuration. Only the top
// level is decoded when the file is loaded; each section is decoded when an
// operation reads it, so a malformed section only fails the operations that
// use it.
type Config struct {
	sections map[string]json.RawMessage
}

// IndexConfig declares an index to be recreated by reset. Settings and
// mappings are forwarded to the cluster untouched.
type IndexConfig struct {
	Name     string          `json:"name" validate:"required"`
	Settings json.RawMessage `json:"settings,omitempty"`
	Mappings json.RawMessage `json:"mappings,omitempty"`

	decodeErr error
}

// PipelineConfig declares an ingest pipeline to be recreated by reset-ingest
type PipelineConfig struct {
	Name string          `json:"name" validate:"required"`
	Body json.RawMessage `json:"body"`

	decodeErr error
}

// DefaultEnvironment returns the configured default environment, or an empty
// string when none is set or it is not a string
func (c *Config) DefaultEnvironment() string {
	var env string
	if err := c.decode(sectionDefaultEnvironment, &env); err != nil {
		return ""
	}
	return env
}

// Indexes returns the declared indexes. An entry that cannot be decoded is
// still returned, and reports the problem from Validate.
func (c *Config) Indexes() ([]IndexConfig, error) {
	var entries []json.RawMessage
	if err := c.decode(sectionIndexes, &entries); err != nil {
		return nil, err
	}

	indexes := make([]IndexConfig, 0, len(entries))
	for _, raw := range entries {
		var index IndexConfig
		if err := json.Unmarshal(raw, &index); err != nil {
			index = IndexConfig{decodeErr: err}
		}
		indexes = append(indexes, index)
	}
	return indexes, nil
}

// Pipelines returns the pipelines declared under _ingest.pipelines. An entry
// that cannot be decoded is still returned, and reports the problem from
// Validate.
func (c *Config) Pipelines() ([]PipelineConfig, error) {
	var ingest struct {
		Pipelines []json.RawMessage `json:"pipelines"`
	}
	if err := c.decode(sectionIngest, &ingest); err != nil {
		return nil, err
	}

	pipelines := make([]PipelineConfig, 0, len(ingest.Pipelines))
	for _, raw := range ingest.Pipelines {
		var pipeline PipelineConfig
		if err := json.Unmarshal(raw, &pipeline); err != nil {
			pipeline = PipelineConfig{decodeErr: err}
		}
		pipelines = append(pipelines, pipeline)
	}
	return pipelines, nil
}

// decode unmarshals a section into v. A missing or null section leaves v
// untouched.
func (c *Config) decode(section string, v interface{}) error {
	raw, ok := c.sections[section]
	if !ok || isNullJSON(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: section %q: %v", ErrConfigInvalid, section, err)
	}
	return nil
}

// Validate checks that the index entry can be sent to the cluster
func (i IndexConfig) Validate() error {
	if i.decodeErr != nil {
		return fmt.Errorf("invalid index definition: %w", i.decodeErr)
	}
	if err := validator.New().Struct(i); err != nil {
		return fmt.Errorf("invalid index definition: %w", err)
	}
	return nil
}

// CreateBody returns the request body used to create the index, with
// undeclared settings or mappings sent as empty objects.
func (i IndexConfig) CreateBody() ([]byte, error) {
	body := struct {
		Settings json.RawMessage `json:"settings"`
		Mappings json.RawMessage `json:"mappings"`
	}{
		Settings: objectOrEmpty(i.Settings),
		Mappings: objectOrEmpty(i.Mappings),
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal index %s: %w", i.Name, err)
	}
	return data, nil
}

// Validate checks that the pipeline entry has a name and a body
func (p PipelineConfig) Validate() error {
	if p.decodeErr != nil {
		return fmt.Errorf("invalid pipeline definition: %w", p.decodeErr)
	}
	if err := validator.New().Struct(p); err != nil {
		return fmt.Errorf("invalid pipeline definition: %w", err)
	}
	if isEmptyJSON(p.Body) {
		return fmt.Errorf("invalid pipeline definition: pipeline %s has no body", p.Name)
	}
	return nil
}

func isNullJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// isEmptyJSON reports whether raw counts as undeclared: absent, null, false,
// 0, "", "0" or [].
func isEmptyJSON(raw json.RawMessage) bool {
	if isNullJSON(raw) {
		return true
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}

	switch val := v.(type) {
	case bool:
		return !val
	case float64:
		return val == 0
	case string:
		return val == "" || val == "0"
	case []interface{}:
		return len(val) == 0
	}
	return false
}

func objectOrEmpty(raw json.RawMessage) json.RawMessage {
	if isEmptyJSON(raw) {
		return json.RawMessage("{}")
	}
	return raw
}

// LoadConfig loads the configuration file from dir and merges the optional
// local override file over it. Map entries (host, warm) are merged key by
// key; other non-empty values in the override replace the base.
func LoadConfig(dir string) (*Config, error) {
	path, err := findConfigFile(dir)
	if err != nil {
		return nil, err
	}

	config, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	localPath := filepath.Join(dir, LocalFileName)
	if _, err := os.Stat(localPath); err == nil {
		local, err := readConfigFile(localPath)
		if err != nil {
			return nil, err
		}
		config.merge(local)
	}

	return config, nil
}

func findConfigFile(dir string) (string, error) {
	candidates := append([]string{FileName}, yamlFileNames...)
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w [%s]", ErrConfigMissing, filepath.Join(dir, FileName))
}

func readConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file [%s]: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%w [%s]: %v", ErrConfigInvalid, path, err)
		}
	}

	config, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w [%s]: %v", ErrConfigInvalid, path, err)
	}
	return config, nil
}

// parse splits a JSON document into its sections. The document must be a
// non-empty object; nothing beyond that is checked here.
func parse(data []byte) (*Config, error) {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, errors.New("document is empty")
	}
	return &Config{sections: sections}, nil
}

// merge applies a local override. Host and warm entries are merged key by
// key when both sides are objects; any other non-empty section replaces the
// base one.
func (c *Config) merge(local *Config) {
	for name, raw := range local.sections {
		if isEmptyJSON(raw) {
			continue
		}
		if name == sectionHost || name == sectionWarm {
			if merged, err := mergeStringMaps(c.sections[name], raw); err == nil {
				c.sections[name] = merged
				continue
			}
		}
		c.sections[name] = raw
	}
}

func mergeStringMaps(base, override json.RawMessage) (json.RawMessage, error) {
	dst := map[string]string{}
	if !isNullJSON(base) {
		if err := json.Unmarshal(base, &dst); err != nil {
			return nil, err
		}
	}
	var src map[string]string
	if err := json.Unmarshal(override, &src); err != nil {
		return nil, err
	}

	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return nil, err
	}
	return json.Marshal(dst)
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("document is empty")
	}
	return json.Marshal(doc)
}

type Context struct {
	Config *CLIConfig
}

type CLIConfig struct {
	Dir        string // holds the config and environment marker files
	Kubeconfig string
	Debug      bool
	Quiet      bool
	Out        io.Writer // console output, stdout when nil
}

func NewContext() *Context {
	return &Context{
		Config: &CLIConfig{
			Dir: ".",
		},
	}
}
