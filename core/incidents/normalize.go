package incidents

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Normalize maps a raw document onto Incident. Missing or mistyped optional
// fields stay empty; placeholders are a rendering concern.
func Normalize(rec RawRecord) Incident {
	d := rec.Data
	return Incident{
		ID:        rec.ID,
		CreatedAt: parseTimestamp(d["createdAt"]),
		Agent:     stringField(d, "nombreAgente"),
		Point:     stringField(d, "punto"),
		Note:      stringField(d, "observacion"),
		Status:    stringField(d, "estado"),
		Priority:  stringField(d, "prioridad"),
		Evidence:  stringField(d, "evidenciaDataUrl"),
	}
}

func NormalizeAll(recs []RawRecord) []Incident {
	out := make([]Incident, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Normalize(rec))
	}
	return out
}

func stringField(d map[string]any, key string) string {
	if d == nil {
		return ""
	}
	s, ok := d[key].(string)
	if !ok {
		return ""
	}
	return s
}

// epoch values above this are milliseconds
const millisThreshold = 1e11

func parseTimestamp(v any) *time.Time {
	var t time.Time
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		t = val
	case *time.Time:
		if val == nil {
			return nil
		}
		t = *val
	case map[string]any:
		secs, ok := numeric(val["seconds"])
		if !ok {
			secs, ok = numeric(val["_seconds"])
		}
		if !ok {
			return nil
		}
		nanos, _ := numeric(val["nanoseconds"])
		t = time.Unix(int64(secs), int64(nanos))
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			n, convErr := strconv.ParseFloat(s, 64)
			if convErr != nil {
				return nil
			}
			t = fromEpoch(n)
		} else {
			t = parsed
		}
	default:
		n, ok := numeric(val)
		if !ok {
			return nil
		}
		t = fromEpoch(n)
	}
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}

func fromEpoch(n float64) time.Time {
	if math.Abs(n) >= millisThreshold {
		return time.UnixMilli(int64(n))
	}
	return time.Unix(int64(n), 0)
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
