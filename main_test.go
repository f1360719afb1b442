package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdftriage/internal/report"
	"pdftriage/internal/testutil"
)

func TestRun_ExitCodes(t *testing.T) {
	out := t.TempDir()

	assert.Equal(t, 2, run([]string{"-o", out}), "missing input")
	assert.Equal(t, 2, run([]string{"-i", t.TempDir(), "-o", out, "-f", "webp"}), "unknown format")
	assert.Equal(t, 2, run([]string{"--bogus"}))
	assert.Equal(t, 2, run([]string{"-i", t.TempDir()}), "missing output")
	assert.Equal(t, 2, run([]string{"-i", t.TempDir(), "-o", out, "-w", "many"}))
	assert.Equal(t, 2, run([]string{"-i", t.TempDir(), "-o", out, "extra"}), "positional arguments")
	assert.Equal(t, 1, run([]string{"-i", filepath.Join(out, "missing"), "-o", out}))

	file := filepath.Join(t.TempDir(), "file.pdf")
	testutil.WriteFile(t, file, []byte("x"))
	assert.Equal(t, 1, run([]string{"--input", file, "--output", out}), "input is not a directory")

	assert.Equal(t, 0, run([]string{"-v"}))
	assert.Equal(t, 0, run([]string{"--help"}))
}

func TestRootCmd_Help(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--help"})
	require.NoError(t, cmd.Execute())

	help := out.String()
	for _, flag := range []string{"-i, --input", "-o, --output", "-f, --format", "-w, --workers", "-c, --config", "-v, --version"} {
		assert.Equal(t, 1, strings.Count(help, flag), flag)
	}
	assert.Contains(t, help, "tiff, png, jpeg")
}

func TestRootCmd_Version(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "dev (commit: unknown)")
}

func TestRun_ConfigFilesAndFlagPriority(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	testutil.WritePDF(t, filepath.Join(in, "doc.pdf"), testutil.PageSpec{JPEGs: []int{16}})

	dir := t.TempDir()
	first := filepath.Join(dir, "first.toml")
	second := filepath.Join(dir, "second.toml")
	testutil.WriteFile(t, first, []byte(`format = "jpeg"`))
	testutil.WriteFile(t, second, []byte(`format = "png"`))

	assert.Equal(t, 0, run([]string{"-i", in, "-o", out, "-c", first, "--config", second}))
	assert.FileExists(t, filepath.Join(out, "doc_1_of_1_largest_image.png"))

	out = t.TempDir()
	assert.Equal(t, 0, run([]string{"-i", in, "-o", out, "-c", second, "-f", "tiff"}))
	assert.FileExists(t, filepath.Join(out, "doc_1_of_1_largest_image.tiff"))
}

func TestRun_EmptyInput(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "created")

	assert.Equal(t, 0, run([]string{"-i", in, "-o", out}))
	assert.DirExists(t, out)
	assert.NoFileExists(t, filepath.Join(out, report.FileName))
}

func TestRun_WritesReport(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	testutil.WritePDF(t, filepath.Join(in, "doc.pdf"),
		testutil.PageSpec{Rects: 2, DrawColor: [3]int{0, 255, 0}, JPEGs: []int{24}},
	)

	assert.Equal(t, 0, run([]string{"-i", in, "-o", out, "-f", "jpeg", "-w", "2"}))

	for _, name := range []string{"doc_1_of_1.pdf", "doc_1_of_1_largest_image.jpg", report.FileName} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
}
