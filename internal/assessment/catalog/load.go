package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"migratio/internal/assessment/models"
)

// Spec is a question set as authored in a seed file.
type Spec struct {
	Version     int               `json:"version" yaml:"version"`
	QuizVersion string            `json:"quiz_version" yaml:"quiz_version"`
	Questions   []models.Question `json:"questions" yaml:"questions"`
}

// LoadFile reads, parses and validates a question set. The returned issues
// are warnings that do not block ingestion.
func LoadFile(path string) (Spec, []Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, nil, fmt.Errorf("read question file: %w", err)
	}
	return Load(data, path)
}

// Load parses and validates a question set; name selects the format by
// extension and defaults to YAML.
func Load(data []byte, name string) (Spec, []Issue, error) {
	spec, err := parseSpec(data, name)
	if err != nil {
		return Spec{}, nil, err
	}
	return NormalizeSpec(spec)
}

//go:embed seed/questions.yaml
var defaultSeed []byte

// DefaultSpec returns the built-in question set.
func DefaultSpec() (Spec, []Issue, error) {
	return Load(defaultSeed, "questions.yaml")
}

func parseSpec(data []byte, path string) (Spec, error) {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return parseJSONSpec(data)
	}
	return parseYAMLSpec(data)
}

func parseJSONSpec(data []byte) (Spec, error) {
	var spec Spec
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	decoder.UseNumber()
	if err := decoder.Decode(&spec); err != nil {
		return Spec{}, fmt.Errorf("parse json: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Spec{}, fmt.Errorf("parse json: multiple documents are not supported")
		}
		return Spec{}, fmt.Errorf("parse json: %w", err)
	}
	return spec, nil
}

func parseYAMLSpec(data []byte) (Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return Spec{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Spec{}, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return Spec{}, fmt.Errorf("parse yaml: %w", err)
	}
	return spec, nil
}
