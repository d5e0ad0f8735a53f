package strava

import "time"

// Activity is the detailed activity returned by GET /activities/{id}
type Activity struct {
	ID               int64     `json:"id"`
	Athlete          Athlete   `json:"athlete"`
	Name             string    `json:"name"`
	SportType        string    `json:"sport_type"`
	StartDate        time.Time `json:"start_date"`
	Distance         float64   `json:"distance"`      // meters
	MovingTime       int       `json:"moving_time"`   // seconds
	ElapsedTime      int       `json:"elapsed_time"`  // seconds
	AverageSpeed     float64   `json:"average_speed"` // m/s
	MaxSpeed         float64   `json:"max_speed"`     // m/s
	AverageHeartrate float64   `json:"average_heartrate"`
	MaxHeartrate     float64   `json:"max_heartrate"`
	AverageCadence   float64   `json:"average_cadence"`
	AverageWatts     float64   `json:"average_watts"`
	MaxWatts         float64   `json:"max_watts"`
	DeviceWatts      bool      `json:"device_watts"`
	HasHeartrate     bool      `json:"has_heartrate"`
	Laps             []Lap     `json:"laps"`
}

// Athlete is the minimal athlete reference embedded in an activity
type Athlete struct {
	ID int64 `json:"id"`
}

// Lap is a device or manual lap of an activity
type Lap struct {
	StartDate   time.Time `json:"start_date"`
	ElapsedTime int       `json:"elapsed_time"` // seconds
}

// Streams is the key_by_type stream response. Samples may be null where
// the device dropped out.
type Streams struct {
	Time           *StreamData[int]       `json:"time"`
	LatLng         *StreamData[[]float64] `json:"latlng"`
	Altitude       *StreamData[*float64]  `json:"altitude"`
	VelocitySmooth *StreamData[*float64]  `json:"velocity_smooth"` // m/s
	Heartrate      *StreamData[*float64]  `json:"heartrate"`
	Cadence        *StreamData[*float64]  `json:"cadence"`
	Watts          *StreamData[*float64]  `json:"watts"`
	GradeSmooth    *StreamData[*float64]  `json:"grade_smooth"`
	Distance       *StreamData[*float64]  `json:"distance"`
}

// StreamData is a single stream
type StreamData[T any] struct {
	Data         []T    `json:"data"`
	SeriesType   string `json:"series_type"`
	OriginalSize int    `json:"original_size"`
	Resolution   string `json:"resolution"`
}

// Len returns the number of time samples, or 0 if there are none
func (s *Streams) Len() int {
	if s == nil || s.Time == nil {
		return 0
	}
	return len(s.Time.Data)
}
