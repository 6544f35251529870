package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunUsage(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	require.Equal(t, 2, run(nil, strings.NewReader(""), &stdout, &stderr))
	require.Contains(t, stderr.String(), "Usage: hwcalib")

	stderr.Reset()
	require.Equal(t, 2, run([]string{"bermudan"}, strings.NewReader(""), &stdout, &stderr))
	require.Contains(t, stderr.String(), `unknown command "bermudan"`)

	stdout.Reset()
	require.Equal(t, 0, run([]string{"help"}, strings.NewReader(""), &stdout, &stderr))
	require.Contains(t, stdout.String(), "calibrate")
}

func TestRunCalibrate(t *testing.T) {
	t.Parallel()

	input := `{
		"reference_date": "2002-02-19",
		"flat_rate": 0.04875825,
		"swaptions": [
			{"expiry": "1Y", "length": "5Y", "vol": 0.1148},
			{"expiry": "2Y", "length": "4Y", "vol": 0.1108},
			{"expiry": "3Y", "length": "3Y", "vol": 0.1070},
			{"expiry": "4Y", "length": "2Y", "vol": 0.1021},
			{"expiry": "5Y", "length": "1Y", "vol": 0.1000}
		]
	}`
	var stdout, stderr bytes.Buffer
	code := run([]string{"calibrate"}, strings.NewReader(input), &stdout, &stderr)
	require.Equal(t, 0, code, stdout.String()+stderr.String())

	var out struct {
		RunID  string `json:"run_id"`
		Params struct {
			A     float64 `json:"a"`
			Sigma float64 `json:"sigma"`
		} `json:"params"`
		EndCriteria string `json:"end_criteria"`
		Instruments []struct {
			Name string `json:"name"`
		} `json:"instruments"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	require.Empty(t, out.Error)
	require.NotEmpty(t, out.RunID)
	require.NotEmpty(t, out.EndCriteria)
	require.Greater(t, out.Params.Sigma, 0.0)
	require.Len(t, out.Instruments, 5)
}

func TestRunCalibrateReportsErrors(t *testing.T) {
	t.Parallel()

	for _, input := range []string{
		`not json`,
		`{"reference_date": "2002-02-19", "swaptions": [{"expiry": "1Y", "length": "5Y", "vol": 0.1}]}`,
		`{"reference_date": "2002-02-19", "flat_rate": 0.04}`,
		`{"reference_date": "2002-02-19", "flat_rate": 0.04, "swaptions": [{"expiry": "1Y", "length": "5Y", "vol": 0.1}], "error_kind": "Vega"}`,
	} {
		var stdout, stderr bytes.Buffer
		require.Equal(t, 1, run([]string{"calibrate"}, strings.NewReader(input), &stdout, &stderr), input)

		var out struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
		require.NotEmpty(t, out.Error, input)
	}
}
