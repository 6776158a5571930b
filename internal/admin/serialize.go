package admin

import (
	"fmt"
	"time"

	"github.com/JiaLiangChen99/robyn-admin/internal/records"
)

// SerializedRecord carries both renditions of one record: display applies
// field-level formatting for humans, data is the raw values for populating
// an edit form. Both derive from the same record snapshot.
type SerializedRecord struct {
	Display map[string]any `json:"display"`
	Data    map[string]any `json:"data"`
}

// serializeRecord renders one record with the given field list. The id is
// always carried in both renditions so the surface can address the record.
func serializeRecord(fields []Field, rec records.Record) (SerializedRecord, error) {
	display := make(map[string]any, len(fields)+1)
	data := make(map[string]any, len(fields)+1)
	if id, ok := rec["id"]; ok {
		display["id"] = normalizeValue(id)
		data["id"] = normalizeValue(id)
	}
	for _, f := range fields {
		value, ok := rec[f.Name]
		if !ok {
			continue
		}
		rendered, err := f.DisplayValue(value)
		if err != nil {
			return SerializedRecord{}, err
		}
		display[f.Name] = normalizeValue(rendered)
		data[f.Name] = normalizeValue(value)
	}
	return SerializedRecord{Display: display, Data: data}, nil
}

// normalizeValue converts driver-specific values into JSON-friendly ones.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return v
	}
}
