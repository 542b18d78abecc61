package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nzslang/nzslc/pkg/compiler"
)

func TestParseFormatsSplitsCommasAndHeaderSuffix(t *testing.T) {
	got := parseFormats([]string{"nzsl,spv-header", "glsl"})
	require.Equal(t, []outputFormat{
		{format: compiler.FormatNZSL, header: false},
		{format: compiler.FormatSPV, header: true},
		{format: compiler.FormatGLSL, header: false},
	}, got)
}

func TestParseFormatsIgnoresEmptyEntries(t *testing.T) {
	got := parseFormats([]string{" nzslb , , spv-dis "})
	require.Equal(t, []outputFormat{
		{format: compiler.FormatNZSLB, header: false},
		{format: compiler.FormatSPVDis, header: false},
	}, got)
}

func TestWriteOutputHonorsNullSentinel(t *testing.T) {
	err := writeOutput("shader.nzsl", "@null", false, compiler.Output{Format: compiler.FormatNZSL, Text: "module;"})
	require.NoError(t, err)
}

func TestWriteOutputWritesBesideInputByDefault(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "shader.nzsl")
	require.NoError(t, os.WriteFile(input, []byte("module;"), 0o644))

	err := writeOutput(input, "", false, compiler.Output{Format: compiler.FormatNZSL, Text: "module;\n"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "shader.nzsl"))
	require.NoError(t, err)
	require.Equal(t, "module;\n", string(data))
}

func TestWriteOutputWritesHeaderVariant(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "shader.nzsl")
	require.NoError(t, os.WriteFile(input, []byte("module;"), 0o644))

	err := writeOutput(input, dir, true, compiler.Output{Format: compiler.FormatSPV, Binary: []byte{0x03, 0x02, 0x23, 0x07}})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "shader.spv.h"))
	require.NoError(t, err)
	require.Contains(t, string(data), "static const unsigned char")
	require.Contains(t, string(data), "0x03,")
}
