package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/cado/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Output formats understood by the evaluator.
const (
	// FormatJSON expects a single JSON object in the outputs file.
	FormatJSON = "json"
	// FormatLines expects name=value lines; values that parse as JSON are decoded.
	FormatLines = "lines"
)

// LanguageConfig describes how to run cells of one language as a process.
// The cell code, wrapped in Prelude and Epilogue, is written to a file
// with the given Extension and passed as the last argument to Command.
type LanguageConfig struct {
	Language    domain.Language   `yaml:"language" json:"language"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Extension   string            `yaml:"extension" json:"extension"`
	Prelude     string            `yaml:"prelude" json:"prelude"`
	Epilogue    string            `yaml:"epilogue" json:"epilogue"`
	Format      string            `yaml:"format" json:"format"`

	// ExportBindings also exposes each binding as an environment variable
	// named after it; non-string values are JSON encoded. Values larger
	// than MaxExportedBinding are only in the inputs file.
	ExportBindings bool   `yaml:"export_bindings" json:"export_bindings"`
	Description    string `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of evaluators.yaml.
type ConfigFile struct {
	Evaluators []LanguageConfig `yaml:"evaluators" json:"evaluators"`
}

// LoadConfig reads a configuration file (YAML or JSON) and returns the
// language definitions it contains. A missing file yields no definitions.
func LoadConfig(path string) (map[domain.Language]LanguageConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[domain.Language]LanguageConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read evaluators config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	langs := make(map[domain.Language]LanguageConfig)
	for _, l := range cfg.Evaluators {
		if l.Language == "" {
			continue
		}
		if l.Command == "" {
			return nil, fmt.Errorf("evaluator %q: command is required", l.Language)
		}
		switch l.Format {
		case "":
			l.Format = FormatJSON
		case FormatJSON, FormatLines:
		default:
			return nil, fmt.Errorf("evaluator %q: unknown output format %q", l.Language, l.Format)
		}
		langs[l.Language] = l
	}
	return langs, nil
}

const pythonPrelude = `import json as __cado_json, os as __cado_os
with open(__cado_os.environ["CADO_INPUTS_FILE"]) as __cado_f:
    globals().update(__cado_json.load(__cado_f))
del __cado_f
`

const pythonEpilogue = `
def __cado_export():
    out = {}
    for k, v in list(globals().items()):
        if k.startswith("_"):
            continue
        try:
            __cado_json.dumps(v)
        except (TypeError, ValueError):
            continue
        out[k] = v
    with open(__cado_os.environ["CADO_OUTPUTS"], "w") as f:
        __cado_json.dump(out, f)
__cado_export()
`

const shellPrelude = `output() { printf '%s=%s\n' "$1" "$2" >> "$CADO_OUTPUTS"; }
inputs() { cat "$CADO_INPUTS_FILE"; }
`

// Builtins returns the default language definitions: python (python3) and
// shell (sh). Python cells see bindings as globals and export every
// JSON-serializable global; shell cells read bindings from environment
// variables (or the JSON printed by "inputs" for large values) and call
// "output NAME VALUE".
func Builtins() map[domain.Language]LanguageConfig {
	return map[domain.Language]LanguageConfig{
		domain.LanguagePython: {
			Language:    domain.LanguagePython,
			Command:     "python3",
			Extension:   ".py",
			Prelude:     pythonPrelude,
			Epilogue:    pythonEpilogue,
			Format:      FormatJSON,
			Description: "CPython 3 interpreter",
		},
		domain.LanguageShell: {
			Language:       domain.LanguageShell,
			Command:        "sh",
			Extension:      ".sh",
			Prelude:        shellPrelude,
			Format:         FormatLines,
			ExportBindings: true,
			Description:    "POSIX shell",
		},
	}
}
