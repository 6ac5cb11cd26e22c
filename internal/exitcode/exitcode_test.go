// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

package exitcode_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagevm/vminit/internal/exitcode"
)

func TestFprint(t *testing.T) {
	var buf bytes.Buffer

	_, err := exitcode.Fprint(&buf, 42)
	require.NoError(t, err)

	assert.Equal(t, "\nVMINIT_EXIT_CODE: 42\n", buf.String())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		expectedCode int
		expectedOK   bool
	}{
		{
			name:         "zero",
			line:         "VMINIT_EXIT_CODE: 0",
			expectedCode: 0,
			expectedOK:   true,
		},
		{
			name:         "nonzero",
			line:         "VMINIT_EXIT_CODE: 143",
			expectedCode: 143,
			expectedOK:   true,
		},
		{
			name:         "negative",
			line:         "VMINIT_EXIT_CODE: -1",
			expectedCode: -1,
			expectedOK:   true,
		},
		{
			name: "empty",
			line: "",
		},
		{
			name: "unrelated output",
			line: "some kernel message",
		},
		{
			name: "identifier without code",
			line: "VMINIT_EXIT_CODE: none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := exitcode.Parse(tt.line)

			assert.Equal(t, tt.expectedOK, ok)
			assert.Equal(t, tt.expectedCode, code)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	_, err := exitcode.Fprint(&buf, 7)
	require.NoError(t, err)

	var found bool

	for _, line := range bytes.Split(buf.Bytes(), []byte("\n")) {
		if code, ok := exitcode.Parse(string(line)); ok {
			assert.Equal(t, 7, code)

			found = true
		}
	}

	assert.True(t, found, "exit code line not found in output")
}
