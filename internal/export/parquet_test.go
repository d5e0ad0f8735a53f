package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/reader"

	"ridelog/internal/geo"
	"ridelog/internal/store"
	"ridelog/internal/stream"
)

func testActivity() *store.Activity {
	return &store.Activity{
		ID:        3,
		Date:      time.Date(2024, 6, 4, 7, 0, 0, 0, time.UTC),
		Power:     stream.Stream{stream.Of(200), stream.Null(), stream.Of(220)},
		HeartRate: stream.FromValues(140, 141, 142),
		LatLng:    []geo.NullLatLng{geo.Point(45, 7), {}, geo.Point(45.001, 7)},
	}
}

func TestActivityParquet(t *testing.T) {
	data, err := ActivityParquet(testActivity(), []store.SegmentResult{{StartIndex: 1, EndIndex: 2}})
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, "PAR1", string(data[:4]))
	assert.Equal(t, "PAR1", string(data[len(data)-4:]))

	pr, err := reader.NewParquetReader(parquetbuffer.NewBufferFileFromBytes(data), new(sampleRow), 1)
	require.NoError(t, err)
	defer pr.ReadStop()
	assert.Equal(t, int64(3), pr.GetNumRows())
}

func TestActivityParquetEmpty(t *testing.T) {
	_, err := ActivityParquet(&store.Activity{ID: 1}, nil)
	assert.ErrorIs(t, err, ErrNoSamples)
}

func TestWriteActivity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ride.parquet")
	require.NoError(t, WriteActivity(path, testActivity(), nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
