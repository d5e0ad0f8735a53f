// Package export writes activity streams as Parquet for analysis tools.
package export

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"ridelog/internal/store"
	"ridelog/internal/stream"
)

// ErrNoSamples is returned for activities without stored streams
var ErrNoSamples = errors.New("activity has no samples")

// sampleRow is one second of an activity. Missing values are NaN.
type sampleRow struct {
	TSUTCISO   string  `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ElapsedS   int64   `parquet:"name=elapsed_s, type=INT64"`
	PowerW     float64 `parquet:"name=power_w, type=DOUBLE"`
	HRBPM      float64 `parquet:"name=hr_bpm, type=DOUBLE"`
	CadenceRPM float64 `parquet:"name=cadence_rpm, type=DOUBLE"`
	SpeedKmh   float64 `parquet:"name=speed_kmh, type=DOUBLE"`
	DistanceM  float64 `parquet:"name=distance_m, type=DOUBLE"`
	ElevationM float64 `parquet:"name=elevation_m, type=DOUBLE"`
	GradePct   float64 `parquet:"name=grade_pct, type=DOUBLE"`
	Lat        float64 `parquet:"name=lat, type=DOUBLE"`
	Lng        float64 `parquet:"name=lng, type=DOUBLE"`
	InSegment  bool    `parquet:"name=in_segment, type=BOOLEAN"`
}

// ActivityParquet encodes the per-second samples of act. Samples covered
// by any of results are flagged in_segment.
func ActivityParquet(act *store.Activity, results []store.SegmentResult) ([]byte, error) {
	n := act.SampleCount()
	if n == 0 {
		return nil, ErrNoSamples
	}

	inSegment := make([]bool, n)
	for _, r := range results {
		for i := max(r.StartIndex, 0); i <= r.EndIndex && i < n; i++ {
			inSegment[i] = true
		}
	}

	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(sampleRow), 4)
	if err != nil {
		return nil, fmt.Errorf("creating parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := 0; i < n; i++ {
		row := sampleRow{
			TSUTCISO:   act.Date.Add(time.Duration(i) * time.Second).UTC().Format(time.RFC3339),
			ElapsedS:   int64(i),
			PowerW:     valueOrNaN(act.Power.At(i)),
			HRBPM:      valueOrNaN(act.HeartRate.At(i)),
			CadenceRPM: valueOrNaN(act.Cadence.At(i)),
			SpeedKmh:   valueOrNaN(act.Speed.At(i)),
			DistanceM:  valueOrNaN(act.Distance.At(i)),
			ElevationM: valueOrNaN(act.Elevation.At(i)),
			GradePct:   valueOrNaN(act.Grade.At(i)),
			Lat:        math.NaN(),
			Lng:        math.NaN(),
			InSegment:  inSegment[i],
		}
		if i < len(act.LatLng) && act.LatLng[i].Valid {
			row.Lat, row.Lng = act.LatLng[i].Lat, act.LatLng[i].Lng
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("finishing parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

// WriteActivity writes the Parquet encoding of act to path
func WriteActivity(path string, act *store.Activity, results []store.SegmentResult) error {
	data, err := ActivityParquet(act, results)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func valueOrNaN(v stream.Sample) float64 {
	return v.GetOr(math.NaN())
}
