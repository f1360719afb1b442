package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileNames(t *testing.T) {
	assert.Equal(t, "report_2_of_3.pdf", SplitFileName("report", 2, 3))
	assert.Equal(t, "report_2_of_3_largest_image", ImageBaseName("report", 2, 3))
	assert.Equal(t, "my.scan_1_of_1.pdf", SplitFileName("my.scan", 1, 1))
}

func TestSizeKB(t *testing.T) {
	assert.Equal(t, 0.0, SizeKB(0))
	assert.Equal(t, 2.0, SizeKB(2048))
	assert.Equal(t, 1.2275390625, SizeKB(1257))
}

func TestRecord(t *testing.T) {
	row := PageStatistics{
		PointCount:       2,
		LineCount:        2,
		PolygonCount:     1,
		RasterCount:      0,
		VectorColors:     "(1.0, 0.0, 0.0)",
		OriginalFile:     "report.pdf",
		OutputFile:       "report_1_of_3.pdf",
		PageNumber:       1,
		TotalPages:       3,
		FileSizeKB:       1,
		LargestImageFile: NotApplicable,
	}
	assert.Equal(t, []string{
		"2", "2", "1", "0", "(1.0, 0.0, 0.0)", "report.pdf", "report_1_of_3.pdf",
		"1", "3", "1.0", "N/A",
	}, row.Record())
	assert.Len(t, row.Record(), len(Header))
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	rows := []PageStatistics{
		{PointCount: 1, VectorColors: "(1.0, 0.0, 0.0), (0.0, 0.0, 1.0)", OriginalFile: "a.pdf", OutputFile: "a_1_of_2.pdf", PageNumber: 1, TotalPages: 2, FileSizeKB: 0.5, LargestImageFile: NotApplicable},
		{RasterCount: 1, VectorColors: "None", OriginalFile: "a.pdf", OutputFile: "a_2_of_2.pdf", PageNumber: 2, TotalPages: 2, FileSizeKB: 3.25, LargestImageFile: "a_2_of_2_largest_image.tiff"},
	}

	require.NoError(t, WriteCSV(path, rows))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, "(1.0, 0.0, 0.0), (0.0, 0.0, 1.0)", records[1][4])
	assert.Equal(t, "0.5", records[1][9])
	assert.Equal(t, "a_2_of_2_largest_image.tiff", records[2][10])
}

func TestWriteCSV_BadPath(t *testing.T) {
	err := WriteCSV(filepath.Join(t.TempDir(), "missing", FileName), nil)
	assert.ErrorContains(t, err, "create report")
}
