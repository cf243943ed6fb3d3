package field

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// LoadCSV reads gridded samples from a CSV file, one row per grid point.
// Column detection (case-insensitive): lat|latitude|y, lon|lng|long|longitude|x,
// an optional time|date|valid_time column (RFC 3339), and one column per field
// named by ParseID. Rows sharing a time form one record; records are returned
// in time order. Empty or NaN cells are Missing.
func LoadCSV(path string) ([]*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

type csvRow struct {
	lon, lat float64
	vals     []float64
}

// ReadCSV is LoadCSV over an open reader.
func ReadCSV(rd io.Reader) ([]*Record, error) {
	r := csv.NewReader(rd)
	r.TrimLeadingSpace = true
	recs, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, errors.New("csv: empty file")
	}
	header := recs[0]
	idxLat, idxLon, idxTime := -1, -1, -1
	var cols []int
	var ids []ID
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "lat", "latitude", "y":
			if idxLat == -1 {
				idxLat = i
			}
		case "lon", "lng", "long", "longitude", "x":
			if idxLon == -1 {
				idxLon = i
			}
		case "time", "date", "valid_time":
			if idxTime == -1 {
				idxTime = i
			}
		default:
			if id, ok := ParseID(h); ok {
				cols = append(cols, i)
				ids = append(ids, id)
			}
		}
	}
	if idxLat == -1 || idxLon == -1 {
		return nil, errors.New("csv: latitude/longitude columns not found")
	}
	if len(ids) == 0 {
		return nil, errors.New("csv: no field columns found")
	}

	byTime := map[time.Time][]csvRow{}
	for n, row := range recs[1:] {
		if idxLon >= len(row) || idxLat >= len(row) {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(row[idxLon]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(row[idxLat]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		var t time.Time
		if idxTime >= 0 && idxTime < len(row) {
			t, err = time.Parse(time.RFC3339, strings.TrimSpace(row[idxTime]))
			if err != nil {
				return nil, fmt.Errorf("csv: row %d: %w", n+2, err)
			}
		}
		cr := csvRow{lon: lon, lat: lat, vals: make([]float64, len(cols))}
		for k, c := range cols {
			cr.vals[k] = Missing
			if c >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[c]), 64)
			if err != nil || math.IsNaN(v) {
				continue
			}
			cr.vals[k] = v
		}
		byTime[t] = append(byTime[t], cr)
	}
	if len(byTime) == 0 {
		return nil, errors.New("csv: no valid rows parsed")
	}

	times := make([]time.Time, 0, len(byTime))
	for t := range byTime {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	out := make([]*Record, 0, len(times))
	for _, t := range times {
		rows := byTime[t]
		lons, dlon, err := axis(rows, func(r csvRow) float64 { return r.lon })
		if err != nil {
			return nil, fmt.Errorf("csv: longitudes: %w", err)
		}
		lats, dlat, err := axis(rows, func(r csvRow) float64 { return r.lat })
		if err != nil {
			return nil, fmt.Errorf("csv: latitudes: %w", err)
		}
		rec := NewRecord(t)
		grids := make([]*Grid, len(ids))
		for k, id := range ids {
			grids[k] = NewGrid(len(lons), len(lats), lons[0], lats[0], dlon, dlat)
			rec.Fields[id] = grids[k]
		}
		for _, r := range rows {
			i := int(math.Round((r.lon - lons[0]) / dlon))
			j := int(math.Round((r.lat - lats[0]) / dlat))
			for k := range grids {
				grids[k].Set(i, j, r.vals[k])
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// axis returns the sorted unique coordinates of one grid axis and its step.
// The axis must be regularly spaced.
func axis(rows []csvRow, coord func(csvRow) float64) ([]float64, float64, error) {
	seen := map[float64]bool{}
	var vs []float64
	for _, r := range rows {
		c := coord(r)
		if !seen[c] {
			seen[c] = true
			vs = append(vs, c)
		}
	}
	sort.Float64s(vs)
	if len(vs) < 2 {
		return vs, 1, nil
	}
	d := vs[1] - vs[0]
	for k := 2; k < len(vs); k++ {
		if math.Abs((vs[k]-vs[k-1])-d) > 1e-6*math.Max(1, math.Abs(d)) {
			return nil, 0, fmt.Errorf("irregular spacing at %g", vs[k])
		}
	}
	return vs, d, nil
}
