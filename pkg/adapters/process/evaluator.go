// Package process evaluates cells by running an external interpreter.
//
// Bindings reach the program as a JSON object in the file named by
// CADO_INPUTS_FILE. The program writes its output bindings to the file named
// by CADO_OUTPUTS. Stdout and stderr are captured; a non-zero exit status is a
// failure whose message includes stderr.
package process

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aretw0/cado/pkg/domain"
)

// Environment variables set for every evaluated program.
const (
	EnvInputsFile = "CADO_INPUTS_FILE"
	EnvOutputs    = "CADO_OUTPUTS"
	EnvCellID     = "CADO_CELL_ID"
)

// MaxExportedBinding is the largest value exported as an environment
// variable. Linux rejects single environment strings above 128 KiB.
const MaxExportedBinding = 64 << 10

const waitDelay = 500 * time.Millisecond

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Evaluator implements ports.Evaluator for process-backed languages.
// It follows an allow-list: only configured languages can run.
type Evaluator struct {
	languages map[domain.Language]LanguageConfig
	baseDir   string
	logger    *slog.Logger
}

// Option configures the Evaluator.
type Option func(*Evaluator)

// WithLanguages adds or replaces language definitions, e.g. from LoadConfig.
func WithLanguages(langs map[domain.Language]LanguageConfig) Option {
	return func(e *Evaluator) {
		for lang, cfg := range langs {
			e.Register(lang, cfg)
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) Option {
	return func(e *Evaluator) {
		e.baseDir = dir
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// New creates an evaluator preloaded with Builtins.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		languages: Builtins(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds a language to the allow-list.
func (e *Evaluator) Register(lang domain.Language, cfg LanguageConfig) {
	cfg.Language = lang
	if cfg.Format == "" {
		cfg.Format = FormatJSON
	}
	e.languages[lang] = cfg
}

// Languages returns the configured language tags.
func (e *Evaluator) Languages() []domain.Language {
	out := make([]domain.Language, 0, len(e.languages))
	for l := range e.languages {
		out = append(out, l)
	}
	return out
}

// Evaluate writes the cell to a temp file and runs it.
func (e *Evaluator) Evaluate(ctx context.Context, req domain.EvalRequest) (domain.EvalResult, error) {
	cfg, ok := e.languages[req.Language]
	if !ok {
		return domain.EvalResult{}, fmt.Errorf("no process evaluator for language %q", req.Language)
	}

	workDir, err := os.MkdirTemp("", "cado-cell-*")
	if err != nil {
		return domain.EvalResult{}, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	script := filepath.Join(workDir, "cell"+cfg.Extension)
	source := cfg.Prelude + req.Code + "\n" + cfg.Epilogue
	if err := os.WriteFile(script, []byte(source), 0o600); err != nil {
		return domain.EvalResult{}, fmt.Errorf("failed to write cell source: %w", err)
	}
	outputsPath := filepath.Join(workDir, "outputs")

	inputs, err := json.Marshal(bindingsOrEmpty(req.Bindings))
	if err != nil {
		return domain.EvalResult{}, fmt.Errorf("failed to encode bindings: %w", err)
	}
	inputsPath := filepath.Join(workDir, "inputs.json")
	if err := os.WriteFile(inputsPath, inputs, 0o600); err != nil {
		return domain.EvalResult{}, fmt.Errorf("failed to write bindings: %w", err)
	}

	args := append(append([]string{}, cfg.Args...), script)
	cmd := exec.CommandContext(ctx, cfg.Command, args...)
	cmd.Dir = e.baseDir
	// Children of the interpreter may keep the output pipes open after it is killed.
	cmd.WaitDelay = waitDelay

	env := cmd.Environ()
	for k, v := range cfg.Environment {
		env = append(env, k+"="+v)
	}
	if cfg.ExportBindings {
		exported, skipped := exportBindings(req.Bindings)
		if len(skipped) > 0 {
			e.logger.Debug("bindings too large for the environment", "cell_id", req.CellID, "names", skipped)
		}
		env = append(env, exported...)
	}
	env = append(env,
		EnvInputsFile+"="+inputsPath,
		EnvOutputs+"="+outputsPath,
		EnvCellID+"="+req.CellID,
	)
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debug("running cell process", "cell_id", req.CellID, "command", cfg.Command, "language", req.Language)
	runErr := cmd.Run()

	res := domain.EvalResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if runErr != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return res, fmt.Errorf("execution failed: %v", runErr)
		}
		return res, fmt.Errorf("execution failed: %v: %s", runErr, msg)
	}

	outputs, err := readOutputs(outputsPath, cfg.Format)
	if err != nil {
		return res, err
	}
	res.Outputs = outputs
	return res, nil
}

func bindingsOrEmpty(b map[string]any) map[string]any {
	if b == nil {
		return map[string]any{}
	}
	return b
}

// exportBindings renders bindings as NAME=value pairs. Names that are not
// valid identifiers and values above MaxExportedBinding are left out; they
// remain available through CADO_INPUTS_FILE. Oversized names are returned.
func exportBindings(bindings map[string]any) (env, skipped []string) {
	env = make([]string, 0, len(bindings))
	for name, v := range bindings {
		if !identifier.MatchString(name) {
			continue
		}
		var val string
		switch t := v.(type) {
		case string:
			val = t
		case nil:
			val = ""
		default:
			b, err := json.Marshal(v)
			if err != nil {
				val = fmt.Sprintf("%v", v)
			} else {
				val = string(b)
			}
		}
		if len(val) > MaxExportedBinding {
			skipped = append(skipped, name)
			continue
		}
		env = append(env, name+"="+val)
	}
	return env, skipped
}

// readOutputs decodes the outputs file. A program that wrote nothing
// produced no bindings.
func readOutputs(path, format string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to read outputs: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	switch format {
	case FormatLines:
		return parseLines(data), nil
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var out map[string]any
		if err := dec.Decode(&out); err != nil {
			return nil, fmt.Errorf("outputs are not a JSON object: %w", err)
		}
		return out, nil
	}
}

func parseLines(data []byte) map[string]any {
	out := make(map[string]any)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		name, raw, ok := strings.Cut(sc.Text(), "=")
		if !ok || name == "" {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err == nil && !dec.More() {
			out[name] = v
			continue
		}
		out[name] = raw
	}
	return out
}
