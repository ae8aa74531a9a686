// Copyright 2016 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string   `json:"name"`
	Count   int      `json:"count,omitempty"`
	Pragmas []string `json:"pragmas,omitempty"`
}

func TestLoadData(t *testing.T) {
	tests := []struct {
		input  string
		output testConfig
		err    string
	}{
		{
			input:  `{"name": "C"}`,
			output: testConfig{Name: "C"},
		},
		{
			input: `
# a comment line
{
	"name": "D",
	# another one
	"pragmas": ["experimental ABIEncoderV2"]
}`,
			output: testConfig{Name: "D", Pragmas: []string{"experimental ABIEncoderV2"}},
		},
		{
			input: `{"name": "C", "foo": 1}`,
			err:   `failed to parse config file: json: unknown field "foo"`,
		},
		{
			input: `{"name": 1}`,
			err:   "failed to parse config file",
		},
	}
	for i, test := range tests {
		var cfg testConfig
		err := LoadData([]byte(test.input), &cfg)
		if test.err != "" {
			require.Error(t, err, "test #%v", i)
			assert.Contains(t, err.Error(), test.err, "test #%v", i)
			continue
		}
		require.NoError(t, err, "test #%v", i)
		assert.Equal(t, test.output, cfg, "test #%v", i)
	}
}

func TestLoadYAML(t *testing.T) {
	var cfg testConfig
	require.NoError(t, LoadYAML([]byte("name: E\ncount: 3\npragmas:\n  - solidity >=0.5.0\n"), &cfg))
	assert.Equal(t, testConfig{Name: "E", Count: 3, Pragmas: []string{"solidity >=0.5.0"}}, cfg)

	err := LoadYAML([]byte("name: E\nbogus: true\n"), &cfg)
	assert.ErrorContains(t, err, `unknown field "bogus"`)
}

func TestLoadSaveFile(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, LoadFile("", &testConfig{}))

	jsonFile := filepath.Join(dir, "cfg.json")
	want := testConfig{Name: "F", Count: 2}
	require.NoError(t, SaveFile(jsonFile, want))
	var got testConfig
	require.NoError(t, LoadFile(jsonFile, &got))
	assert.Equal(t, want, got)

	yamlFile := filepath.Join(dir, "cfg.yml")
	require.NoError(t, os.WriteFile(yamlFile, []byte("name: G\n"), 0644))
	got = testConfig{}
	require.NoError(t, LoadFile(yamlFile, &got))
	assert.Equal(t, testConfig{Name: "G"}, got)
}
