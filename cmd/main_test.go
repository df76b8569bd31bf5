package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airstation/config"
	"github.com/airstation/internal/eval"
	"github.com/airstation/utils"
)

func TestCheckAccuracy(t *testing.T) {
	assert.NoError(t, checkAccuracy(50, 0))
	assert.NoError(t, checkAccuracy(90, 90))
	assert.NoError(t, checkAccuracy(95, 90))

	err := checkAccuracy(85, 90)
	var exit *exitError
	require.True(t, errors.As(err, &exit))
	assert.Equal(t, 2, exit.code)
	assert.Contains(t, exit.Error(), "85.00%")
}

func TestHarnessConfig(t *testing.T) {
	cfg := config.EvalConfig{
		Workers:         2,
		RatePerSecond:   1.5,
		BreakerFailures: 3,
		Timeout:         utils.Duration{Duration: 30 * time.Second},
	}

	h := harnessConfig(cfg, 0)
	assert.Equal(t, 2, h.Workers)
	assert.Equal(t, 1.5, h.RatePerSecond)
	assert.Equal(t, uint32(3), h.BreakerFailures)
	assert.Equal(t, 30*time.Second, h.Timeout)

	assert.Equal(t, 4, harnessConfig(cfg, 4).Workers)
}

func TestLoadCases(t *testing.T) {
	cases, err := loadCases("", "")
	require.NoError(t, err)
	assert.Len(t, cases, 20)

	dir := t.TempDir()
	path := filepath.Join(dir, "cases.yaml")
	content := "cases:\n  - question: 生成今天的日报\n    expected_agent: report_agent\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cases, err = loadCases("", path)
	require.NoError(t, err)
	require.Equal(t, []eval.Case{{Question: "生成今天的日报", ExpectedAgent: "report_agent"}}, cases)

	_, err = loadCases(filepath.Join(dir, "missing.toml"), path)
	require.Error(t, err)
}

func TestCasesCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"cases"})

	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 20)
	assert.True(t, strings.HasPrefix(lines[0], " 1. [dispatch_agent] "))
}
