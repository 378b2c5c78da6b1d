package process_test

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/cado/pkg/adapters/process"
	"github.com/aretw0/cado/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireSh(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("sh is not available on windows")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found")
	}
}

func TestEvaluate_Shell(t *testing.T) {
	requireSh(t)
	ev := process.New()

	res, err := ev.Evaluate(context.Background(), domain.EvalRequest{
		CellID:   "c1",
		Language: domain.LanguageShell,
		Code: `echo "computing"
output total $((a + 1))
output greeting "hello $name"
output list '[1,2]'`,
		Bindings: map[string]any{"a": 41, "name": "bob"},
	})

	require.NoError(t, err)
	assert.Equal(t, "computing\n", res.Stdout)
	assert.Equal(t, json.Number("42"), res.Outputs["total"])
	assert.Equal(t, "hello bob", res.Outputs["greeting"])
	assert.Equal(t, []any{json.Number("1"), json.Number("2")}, res.Outputs["list"])
}

func TestEvaluate_ShellInputsAsJSON(t *testing.T) {
	requireSh(t)
	ev := process.New()

	res, err := ev.Evaluate(context.Background(), domain.EvalRequest{
		Language: domain.LanguageShell,
		Code:     `inputs`,
		Bindings: map[string]any{"weird-name": true},
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"weird-name": true}`, res.Stdout)
	assert.Empty(t, res.Outputs)
}

func TestEvaluate_ShellLargeBinding(t *testing.T) {
	requireSh(t)
	ev := process.New()
	big := strings.Repeat("x", 200<<10)

	res, err := ev.Evaluate(context.Background(), domain.EvalRequest{
		Language: domain.LanguageShell,
		Code: `output exported "${big:-unset}"
output small "$small"
output size $(inputs | wc -c)`,
		Bindings: map[string]any{"big": big, "small": "s"},
	})

	require.NoError(t, err)
	assert.Equal(t, "unset", res.Outputs["exported"], "oversized values stay out of the environment")
	assert.Equal(t, "s", res.Outputs["small"])
	size, ok := res.Outputs["size"].(json.Number)
	require.True(t, ok, "size is numeric, got %v", res.Outputs["size"])
	n, err := size.Int64()
	require.NoError(t, err)
	assert.Greater(t, n, int64(200<<10))
}

func TestEvaluate_Failure(t *testing.T) {
	requireSh(t)
	ev := process.New()

	res, err := ev.Evaluate(context.Background(), domain.EvalRequest{
		Language: domain.LanguageShell,
		Code:     "echo before\necho broken >&2\nexit 3",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Contains(t, err.Error(), "exit status 3")
	assert.Equal(t, "before\n", res.Stdout)
}

func TestEvaluate_Cancelled(t *testing.T) {
	requireSh(t)
	ev := process.New()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := ev.Evaluate(ctx, domain.EvalRequest{
		Language: domain.LanguageShell,
		Code:     "sleep 5",
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEvaluate_UnknownLanguage(t *testing.T) {
	_, err := process.New().Evaluate(context.Background(), domain.EvalRequest{Language: "cobol"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cobol")
}

func TestEvaluate_CustomJSONLanguage(t *testing.T) {
	requireSh(t)
	ev := process.New(process.WithLanguages(map[domain.Language]process.LanguageConfig{
		"jsonsh": {
			Command:     "sh",
			Environment: map[string]string{"GREETING": "hi"},
		},
	}))

	res, err := ev.Evaluate(context.Background(), domain.EvalRequest{
		Language: "jsonsh",
		Code:     `printf '{"x": "%s", "n": 1.5}' "$GREETING" > "$CADO_OUTPUTS"`,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": "hi", "n": json.Number("1.5")}, res.Outputs)

	_, err = ev.Evaluate(context.Background(), domain.EvalRequest{
		Language: "jsonsh",
		Code:     `echo "not json" > "$CADO_OUTPUTS"`,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a JSON object")
}

func TestEvaluate_Python(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not found")
	}
	ev := process.New()

	res, err := ev.Evaluate(context.Background(), domain.EvalRequest{
		Language: domain.LanguagePython,
		Code:     "b = a * 2\nprint('b is', b)\nimport math",
		Bindings: map[string]any{"a": 9},
	})

	require.NoError(t, err)
	assert.Equal(t, "b is 18\n", res.Stdout)
	assert.Equal(t, json.Number("18"), res.Outputs["b"])
	assert.NotContains(t, res.Outputs, "math", "modules are not exported")
}

func TestEvaluate_PythonLargeBinding(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not found")
	}
	ev := process.New()

	res, err := ev.Evaluate(context.Background(), domain.EvalRequest{
		Language: domain.LanguagePython,
		Code:     "n = len(big)",
		Bindings: map[string]any{"big": strings.Repeat("x", 200<<10)},
	})

	require.NoError(t, err)
	assert.Equal(t, json.Number("204800"), res.Outputs["n"])
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "evaluators.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
evaluators:
  - language: ruby
    command: ruby
    extension: .rb
    format: lines
  - language: node
    command: node
    args: ["--no-warnings"]
`), 0o644))

	langs, err := process.LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, langs, 2)
	assert.Equal(t, "ruby", langs["ruby"].Command)
	assert.Equal(t, process.FormatLines, langs["ruby"].Format)
	assert.Equal(t, []string{"--no-warnings"}, langs["node"].Args)
	assert.Equal(t, process.FormatJSON, langs["node"].Format)
}

func TestLoadConfig_Errors(t *testing.T) {
	langs, err := process.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, langs)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"evaluators":[{"language":"x"}]}`), 0o644))
	_, err = process.LoadConfig(bad)
	require.ErrorContains(t, err, "command is required")

	format := filepath.Join(dir, "format.yaml")
	require.NoError(t, os.WriteFile(format, []byte("evaluators:\n  - language: x\n    command: x\n    format: xml\n"), 0o644))
	_, err = process.LoadConfig(format)
	require.ErrorContains(t, err, "unknown output format")
}
