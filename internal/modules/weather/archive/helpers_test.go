package archive

import (
	"encoding/json"
	"testing"
	"testing/fstest"
	"time"

	"mateometeo/internal/modules/weather/types"
)

func utc(year int, month time.Month, day, hour, min int) int64 {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC).UnixMilli()
}

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

// testArchive has June and July 2025 with a manifest that also lists August,
// whose file is missing.
func testArchive(t *testing.T) fstest.MapFS {
	t.Helper()
	june := []types.Sample{
		{Timestamp: utc(2025, 6, 30, 21, 30), Temperature: types.Float(18)},
		{Timestamp: utc(2025, 6, 30, 22, 30), Temperature: types.Float(17)},
	}
	july := []types.Sample{
		{Timestamp: utc(2025, 7, 1, 21, 59), Temperature: types.Float(25)},
		{Timestamp: utc(2025, 7, 1, 12, 0), Temperature: types.Float(30)},
		{Timestamp: utc(2025, 7, 1, 22, 0), Temperature: types.Float(22)},
	}
	return fstest.MapFS{
		ManifestFile:   {Data: mustJSON(t, Manifest{AvailableFiles: []string{"2025_06.json", "2025_07.json", "2025_08.json"}})},
		"2025_06.json": {Data: mustJSON(t, june)},
		"2025_07.json": {Data: mustJSON(t, july)},
	}
}
