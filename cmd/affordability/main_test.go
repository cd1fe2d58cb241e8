package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/home-affordability/pkg/eligibility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = "../../test/test_config.yaml"

func execute(t *testing.T, args ...string) (string, *app, error) {
	t.Helper()
	var out bytes.Buffer
	a := &app{out: &out}
	root := newRootCommand(a)
	root.SetArgs(append([]string{"--config", testConfig, "--log-level", "error"}, args...))
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.Execute()
	return out.String(), a, err
}

func TestQuoteCommand(t *testing.T) {
	out, _, err := execute(t, "quote", "--output-format", "pretty", "--price", "500000", "--down-payment", "20")
	require.NoError(t, err)

	assert.Contains(t, out, "Loan amount           | $400,000.00")
	assert.Contains(t, out, "Cash to close         | $100,000.00")
}

func TestQuoteCommandRejectsPercentages(t *testing.T) {
	_, _, err := execute(t, "quote", "--seller-concession", "100")
	assert.Error(t, err)

	_, _, err = execute(t, "quote", "--down-payment", "-1")
	assert.Error(t, err)
}

func TestEvaluateCommandUsesConfigDefaults(t *testing.T) {
	out, a, err := execute(t, "evaluate")
	require.NoError(t, err)

	// test config selects csv output
	assert.Equal(t, "csv", a.outputFormat)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "C.10.0,Eligible,807000.00,726300.00,"))
}

func TestEvaluateCommandReportsCorrections(t *testing.T) {
	out, _, err := execute(t, "evaluate", "--output-format", "pretty", "--price", "850000", "--formula", "C.3.0")
	require.NoError(t, err)

	assert.Contains(t, out, "Status                | ExceedsConforming")
	assert.Contains(t, out, "suggestion 1: raise down payment")
	assert.Contains(t, out, "suggestion 2: switch to C.10.0")
}

func TestEvaluateCommandUnknownFormula(t *testing.T) {
	_, _, err := execute(t, "evaluate", "--formula", "C.99.0")
	assert.ErrorIs(t, err, eligibility.ErrUnknownFormula)
}

func TestEvaluateCommandRejectsUnits(t *testing.T) {
	_, _, err := execute(t, "evaluate", "--units", "5")
	assert.Error(t, err)
}

func TestAlternativesCommand(t *testing.T) {
	out, _, err := execute(t, "alternatives")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	for i, id := range []string{"C.3.0", "C.10.0", "C.20.0", "HB.10.0", "HB.20.0"} {
		assert.True(t, strings.HasPrefix(lines[i+1], id+","), lines[i+1])
	}
}

func TestResolveCommand(t *testing.T) {
	out, _, err := execute(t, "resolve", "--output-format", "pretty", "--price", "2000000", "--formula", "C.20.0")
	require.NoError(t, err)

	assert.Contains(t, out, "Step 0 (CorrectionOffered)")
	assert.Contains(t, out, "Step 1 (Resolved)")
}

func TestResolveCommandFailsWithoutFix(t *testing.T) {
	// below conforming, no adjustment applies and no HB formula lands in band
	_, _, err := execute(t, "resolve", "--price", "500000", "--formula", "HB.10.0")
	assert.Error(t, err)
}

func TestFormulasCommand(t *testing.T) {
	out, _, err := execute(t, "formulas")
	require.NoError(t, err)

	assert.Contains(t, out, "C.10.0  | C    | 10.00% | 0.00% | 90.00%")
	assert.Less(t, strings.Index(out, "C.20.0"), strings.Index(out, "HB.10.0"))
}

func TestMissingExplicitConfig(t *testing.T) {
	var out bytes.Buffer
	root := newRootCommand(&app{out: &out})
	root.SetArgs([]string{"--config", "does-not-exist.yaml", "formulas"})
	root.SetErr(&out)
	assert.Error(t, root.Execute())
}

func TestMissingDefaultConfigFallsBack(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	var out bytes.Buffer
	a := &app{out: &out}
	root := newRootCommand(a)
	root.SetArgs([]string{"--log-level", "error", "formulas"})
	require.NoError(t, root.Execute())

	assert.Equal(t, eligibility.DefaultCatalog().Len(), a.resolver.Catalog().Len())
	assert.Equal(t, "pretty", a.outputFormat)
}

func TestConfigCommand(t *testing.T) {
	out, _, err := execute(t, "config")
	require.NoError(t, err)

	assert.Contains(t, out, "purchasePrice: 807000")
	assert.Contains(t, out, "backend: redis")
	assert.Contains(t, out, "maxUploadSize: 256K")
}

func TestServeRequiresNamedOverlay(t *testing.T) {
	_, _, err := execute(t, "serve", "--server-config", "does-not-exist.yaml")
	assert.ErrorContains(t, err, "does-not-exist.yaml")
}

func TestServeOverlayRejectsBadUploadSize(t *testing.T) {
	overlay := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(overlay, []byte("server:\n  maxUploadSize: lots\n"), 0600))

	_, a, err := execute(t, "serve", "--server-config", overlay)
	assert.ErrorContains(t, err, "invalid server configuration")
	assert.Equal(t, "lots", a.conf.Server.MaxUploadSize)
}
