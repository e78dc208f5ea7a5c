// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLiteral(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   string
		want    any
		wantErr bool
	}{
		{
			name:  "single quoted string",
			input: `'hello'`,
			want:  "hello",
		},
		{
			name:  "double quoted string with escapes",
			input: `"it\'s \"quoted\"\n"`,
			want:  "it's \"quoted\"\n",
		},
		{
			name:  "empty list",
			input: `[]`,
			want:  []any{},
		},
		{
			name:  "nested lists",
			input: `[['pytest', '-x'], ['coverage', 'report']]`,
			want:  []any{[]any{"pytest", "-x"}, []any{"coverage", "report"}},
		},
		{
			name:  "tuple with trailing comma",
			input: `('a',)`,
			want:  []any{"a"},
		},
		{
			name:  "dict keeps order",
			input: `{'B': 'x', 'A': '{env:A:}'}`,
			want:  []pyItem{{Key: "B", Value: "x"}, {Key: "A", Value: "{env:A:}"}},
		},
		{
			name:  "bare words",
			input: `[True, None, 3]`,
			want:  []any{"True", "None", "3"},
		},
		{
			name:    "unterminated string",
			input:   `['abc`,
			wantErr: true,
		},
		{
			name:    "missing separator",
			input:   `['a' 'b']`,
			wantErr: true,
		},
		{
			name:    "trailing input",
			input:   `['a'] x`,
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   ``,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseLiteral(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrLiteral)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStringHelpers(t *testing.T) {
	t.Parallel()

	list, err := stringList(`['bash', 'make']`)
	require.NoError(t, err)
	assert.Equal(t, []string{"bash", "make"}, list)

	lists, err := stringLists(`[['pytest', 'tests'], ['flake8']]`)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"pytest", "tests"}, {"flake8"}}, lists)

	vars, err := stringDict(`{'PYTHONHASHSEED': '0', 'HOME': '{env:HOME}'}`)
	require.NoError(t, err)
	assert.Equal(t, []EnvVar{{Key: "PYTHONHASHSEED", Value: "0"}, {Key: "HOME", Value: "{env:HOME}"}}, vars)

	_, err = stringList(`'bash'`)
	require.ErrorIs(t, err, ErrLiteral)

	_, err = stringLists(`['bash']`)
	require.ErrorIs(t, err, ErrLiteral)

	_, err = stringDict(`{'A': ['x']}`)
	require.ErrorIs(t, err, ErrLiteral)
}
