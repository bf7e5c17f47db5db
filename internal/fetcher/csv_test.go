package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, rowCh <-chan []string, errCh <-chan error) ([][]string, error) {
	t.Helper()
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	for err := range errCh {
		if err != nil {
			return rows, err
		}
	}
	return rows, nil
}

func TestStreamCSV_Basic(t *testing.T) {
	input := "zip,lat,lon\n10001,40.75,-73.99\n02134,42.35,-71.13\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"zip", "lat", "lon"}, rows[0])
	assert.Equal(t, []string{"02134", "42.35", "-71.13"}, rows[2])
}

func TestStreamCSV_HeaderChannel(t *testing.T) {
	input := "zip,lat,lon\n10001,40.75,-73.99\n"
	headerCh := make(chan []string, 1)

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
	})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"zip", "lat", "lon"}, <-headerCh)
}

func TestStreamCSV_HeaderSkippedWithoutChannel(t *testing.T) {
	input := "zip,lat,lon\n10001,40.75,-73.99\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{HasHeader: true})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "10001", rows[0][0])
}

func TestStreamCSV_Options(t *testing.T) {
	input := "# generated\n zip | lat \n 501 | 40.8 \n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		Delimiter: '|',
		Comment:   '#',
		TrimSpace: true,
	})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"501", "40.8"}, rows[1])
}

func TestStreamCSV_Empty(t *testing.T) {
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(""), CSVOptions{HasHeader: true})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStreamCSV_MalformedRow(t *testing.T) {
	input := "zip,lat\n\"10001,40.7\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	_, err := collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: read row")
}

func TestStreamCSV_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rowCh, errCh := StreamCSV(ctx, strings.NewReader("a\nb\n"), CSVOptions{})
	_, err := collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}

func TestHeaderIndex(t *testing.T) {
	idx := HeaderIndex([]string{"\ufeffZIP", " Lat ", "LON", "lat"})
	assert.Equal(t, 0, idx["zip"])
	assert.Equal(t, 1, idx["lat"])
	assert.Equal(t, 2, idx["lon"])
	_, ok := idx["name"]
	assert.False(t, ok)
}

func TestStreamCSV_RequiredColumns(t *testing.T) {
	required := [][]string{{"zip", "zcta"}, {"lat", "latitude"}}

	t.Run("present under an alias", func(t *testing.T) {
		headerCh := make(chan []string, 1)
		rowCh, errCh := StreamCSV(context.Background(), strings.NewReader("ZCTA,Latitude\n501,40.8\n"), CSVOptions{
			HeaderCh: headerCh,
			Required: required,
		})
		rows, err := collectRows(t, rowCh, errCh)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, []string{"ZCTA", "Latitude"}, <-headerCh)
	})

	t.Run("missing column", func(t *testing.T) {
		rowCh, errCh := StreamCSV(context.Background(), strings.NewReader("zip,lon\n501,-73\n"), CSVOptions{Required: required})
		rows, err := collectRows(t, rowCh, errCh)
		require.Error(t, err)
		assert.Empty(t, rows)
		assert.Contains(t, err.Error(), "header missing columns lat")
	})

	t.Run("header only", func(t *testing.T) {
		rowCh, errCh := StreamCSV(context.Background(), strings.NewReader("foo,bar\n"), CSVOptions{Required: required})
		_, err := collectRows(t, rowCh, errCh)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "header missing columns zip, lat")
	})

	t.Run("empty input", func(t *testing.T) {
		rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(""), CSVOptions{Required: required})
		_, err := collectRows(t, rowCh, errCh)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing header row")
	})
}

func TestMissingColumns(t *testing.T) {
	idx := HeaderIndex([]string{"zip", "lng"})
	assert.Equal(t, 1, Column(idx, "lon", "lng"))
	assert.Equal(t, -1, Column(idx, "lat"))
	assert.Equal(t, []string{"lat"}, MissingColumns(idx, [][]string{{"zip"}, {"lat", "latitude"}, {"lon", "lng"}}))
	assert.Empty(t, MissingColumns(idx, nil))
}
