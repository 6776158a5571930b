package admin

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DisplayType tags how a consuming surface should render a field value.
type DisplayType string

// Display types understood by the list surface.
const (
	DisplayText     DisplayType = "text"
	DisplayDatetime DisplayType = "datetime"
	DisplayDate     DisplayType = "date"
	DisplayLink     DisplayType = "link"
	DisplayImage    DisplayType = "image"
	DisplaySwitch   DisplayType = "switch"
	DisplayJSON     DisplayType = "json"
)

// ProcessFunc converts raw form input into the stored value.
type ProcessFunc func(raw string) (any, error)

// FormatFunc converts a stored value into its display form.
type FormatFunc func(value any) (any, error)

// Field declares one column of a descriptor: its semantic name, label,
// input processing, display type, and list-surface hints.
type Field struct {
	Name        string
	Label       string
	DisplayType DisplayType
	Sortable    bool
	Width       int
	IsLink      bool

	// Process converts raw input before persisting; nil stores the raw
	// string unchanged.
	Process ProcessFunc
	// Format overrides the default display rendering for this field.
	Format FormatFunc
}

// ProcessValue runs the field's input processor.
func (f Field) ProcessValue(raw string) (any, error) {
	if f.Process == nil {
		return raw, nil
	}
	value, err := f.Process(raw)
	if err != nil {
		return nil, fmt.Errorf("admin: field %s: %w", f.Name, err)
	}
	return value, nil
}

// DisplayValue renders a stored value for the list surface.
func (f Field) DisplayValue(value any) (any, error) {
	if f.Format != nil {
		rendered, err := f.Format(value)
		if err != nil {
			return nil, fmt.Errorf("admin: format %s: %w", f.Name, err)
		}
		return rendered, nil
	}
	if value == nil {
		return "", nil
	}
	switch f.DisplayType {
	case DisplayDatetime:
		if t, ok := value.(time.Time); ok {
			return t.Format("2006-01-02 15:04:05"), nil
		}
	case DisplayDate:
		if t, ok := value.(time.Time); ok {
			return t.Format("2006-01-02"), nil
		}
	case DisplaySwitch:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	}
	return value, nil
}

// Config is the field metadata handed to the consuming surface unchanged,
// so it can render without re-deriving field semantics.
func (f Field) Config() FieldConfig {
	displayType := f.DisplayType
	if displayType == "" {
		displayType = DisplayText
	}
	return FieldConfig{
		Name:        f.Name,
		Label:       f.Label,
		DisplayType: string(displayType),
		Sortable:    f.Sortable,
		Width:       f.Width,
		IsLink:      f.IsLink,
	}
}

// FieldConfig is the JSON shape of field metadata.
type FieldConfig struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	DisplayType string `json:"display_type"`
	Sortable    bool   `json:"sortable"`
	Width       int    `json:"width,omitempty"`
	IsLink      bool   `json:"is_link"`
}

// Common input processors.

// ProcessInt parses the input as a 64-bit integer.
func ProcessInt(raw string) (any, error) {
	return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
}

// ProcessFloat parses the input as a float.
func ProcessFloat(raw string) (any, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

// ProcessBool accepts the usual true/false spellings plus on/off.
func ProcessBool(raw string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no", "":
		return false, nil
	}
	return nil, fmt.Errorf("not a boolean: %q", raw)
}

// ProcessDatetime parses common datetime layouts.
func ProcessDatetime(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("not a datetime: %q", raw)
}

// ProcessPassword hashes the input with bcrypt before storage.
func ProcessPassword(hash func(string) (string, error)) ProcessFunc {
	return func(raw string) (any, error) {
		return hash(raw)
	}
}
