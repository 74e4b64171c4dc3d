package main

import (
	"flag"
	"testing"

	"MiningPulse/internal/analysis"
	"MiningPulse/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsApply(t *testing.T) {
	req, err := options{symbols: "adro, ptba", window: "6mo", ma: "5,200", rsi: 21, period: "w"}.apply(analysis.DefaultRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"ADRO", "PTBA"}, req.Symbols)
	assert.Equal(t, model.Preset6M, req.Window.Preset)
	assert.Equal(t, []int{5, 200}, req.MAPeriods)
	assert.Equal(t, 21, req.RSIPeriod)
	assert.Equal(t, model.Weekly, req.ChangePeriod)
}

func TestOptionsApplyKeepsDefaults(t *testing.T) {
	req, err := options{}.apply(analysis.DefaultRequest())
	require.NoError(t, err)
	assert.Equal(t, analysis.DefaultRequest(), req)
}

func TestOptionsApplyCustomWindow(t *testing.T) {
	req, err := options{start: "2023-01-02", end: "2023-06-30"}.apply(analysis.DefaultRequest())
	require.NoError(t, err)
	assert.True(t, req.Window.IsCustom())

	_, err = options{start: "2023-07-01", end: "2023-06-30"}.apply(analysis.DefaultRequest())
	assert.ErrorIs(t, err, model.ErrInvalidWindow)

	_, err = options{start: "2023-07-01"}.apply(analysis.DefaultRequest())
	assert.ErrorIs(t, err, model.ErrInvalidWindow)

	_, err = options{window: "2w"}.apply(analysis.DefaultRequest())
	assert.ErrorIs(t, err, model.ErrUnknownPreset)
}

func TestRegisterFlags(t *testing.T) {
	var opts options
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	registerFlags(fs, &opts)

	assert.Contains(t, fs.Lookup("period").Usage, "D, W, M or Y")
	require.NoError(t, fs.Parse([]string{"-symbols", "itmg", "-period", "Y", "-export", "parquet"}))
	assert.Equal(t, "configs/config.yaml", opts.configPath)
	assert.Equal(t, "exports", opts.outDir)

	req, err := opts.apply(analysis.DefaultRequest())
	require.NoError(t, err)
	assert.Equal(t, model.Yearly, req.ChangePeriod)
	assert.Equal(t, []string{"ITMG"}, req.Symbols)
}
