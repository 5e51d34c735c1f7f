package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Schema identifies a structured extraction target.
type Schema string

// Supported extraction schemas.
const (
	SchemaDoorSchedule  Schema = "door_schedule"
	SchemaRoomSummary   Schema = "room_summary"
	SchemaEquipmentList Schema = "equipment_list"
)

// AllSchemas returns every supported schema.
func AllSchemas() []Schema {
	return []Schema{SchemaDoorSchedule, SchemaRoomSummary, SchemaEquipmentList}
}

// ParseSchema validates a schema name.
func ParseSchema(name string) (Schema, error) {
	s := Schema(strings.TrimSpace(name))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedSchema, name)
	}
	return s, nil
}

// IsValid returns true if the schema is recognised.
func (s Schema) IsValid() bool {
	switch s {
	case SchemaDoorSchedule, SchemaRoomSummary, SchemaEquipmentList:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Schema) String() string {
	return string(s)
}

// Queries returns the retrieval queries tuned to the schema's vocabulary.
func (s Schema) Queries() []string {
	switch s {
	case SchemaDoorSchedule:
		return []string{
			"door schedule specifications",
			"door types fire rating dimensions",
			"door hardware requirements",
		}
	case SchemaRoomSummary:
		return []string{
			"room schedule area floor finish",
			"room types specifications ceiling",
			"space planning room dimensions",
		}
	case SchemaEquipmentList:
		return []string{
			"mechanical equipment HVAC specifications",
			"electrical equipment MEP systems",
			"plumbing fixtures equipment schedule",
		}
	default:
		return nil
	}
}

// ArrayKeys are the object keys a model may wrap a record array in.
var ArrayKeys = []string{"data", "items", "results", "records", "doors", "rooms", "equipment"}

// Number is a JSON number that also accepts numeric strings such as
// "900mm" or "2,400". Null and unparseable values decode as invalid.
type Number struct {
	Value float64
	Valid bool
}

// NewNumber returns a valid Number.
func NewNumber(v float64) Number {
	return Number{Value: v, Valid: true}
}

var leadingNumber = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		m := leadingNumber.FindString(strings.ReplaceAll(s, ",", ""))
		if m == "" {
			return nil
		}
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return nil //nolint:nilerr // Unparseable text is an absent value.
		}
		*n = NewNumber(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return nil //nolint:nilerr // Booleans and objects are absent values.
	}
	*n = NewNumber(v)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// MarshalYAML renders the number, or null when absent.
func (n Number) MarshalYAML() (any, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Value, nil
}

// String returns the number without trailing zeros, or "N/A".
func (n Number) String() string {
	if !n.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// Text is a JSON string that tolerates numbers, objects and null.
// Non-string values keep their compact JSON form.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*t = Text(buf.String())
	}
	return nil
}

// OrNA returns the text, or "N/A" when empty.
func (t Text) OrNA() string {
	if t == "" {
		return "N/A"
	}
	return string(t)
}

// DoorRecord is one row of a door schedule.
type DoorRecord struct {
	Mark       Text   `json:"mark" yaml:"mark"`
	Location   Text   `json:"location" yaml:"location"`
	WidthMM    Number `json:"width_mm" yaml:"width_mm"`
	HeightMM   Number `json:"height_mm" yaml:"height_mm"`
	FireRating Text   `json:"fire_rating" yaml:"fire_rating"`
	Material   Text   `json:"material" yaml:"material"`
}

// RoomRecord is one row of a room summary.
type RoomRecord struct {
	Name           Text   `json:"name" yaml:"name"`
	AreaSqm        Number `json:"area_sqm" yaml:"area_sqm"`
	FloorFinish    Text   `json:"floor_finish" yaml:"floor_finish"`
	CeilingHeightM Number `json:"ceiling_height_m" yaml:"ceiling_height_m"`
	OccupancyType  Text   `json:"occupancy_type" yaml:"occupancy_type"`
}

// EquipmentRecord is one row of an equipment list.
type EquipmentRecord struct {
	Type           Text `json:"type" yaml:"type"`
	Description    Text `json:"description" yaml:"description"`
	Model          Text `json:"model" yaml:"model"`
	Location       Text `json:"location" yaml:"location"`
	Specifications Text `json:"specifications" yaml:"specifications"`
}

// DecodeRecords decodes a JSON array into the schema's typed record slice.
// It returns the slice as any together with its length.
func DecodeRecords(s Schema, array []byte) (any, int, error) {
	switch s {
	case SchemaDoorSchedule:
		var out []DoorRecord
		if err := json.Unmarshal(array, &out); err != nil {
			return nil, 0, err
		}
		return nonNil(out), len(out), nil
	case SchemaRoomSummary:
		var out []RoomRecord
		if err := json.Unmarshal(array, &out); err != nil {
			return nil, 0, err
		}
		return nonNil(out), len(out), nil
	case SchemaEquipmentList:
		var out []EquipmentRecord
		if err := json.Unmarshal(array, &out); err != nil {
			return nil, 0, err
		}
		return nonNil(out), len(out), nil
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnsupportedSchema, s)
	}
}

// EmptyRecords returns a zero-length typed slice for the schema.
func EmptyRecords(s Schema) any {
	switch s {
	case SchemaDoorSchedule:
		return []DoorRecord{}
	case SchemaRoomSummary:
		return []RoomRecord{}
	case SchemaEquipmentList:
		return []EquipmentRecord{}
	default:
		return []any{}
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ExtractionResult is the outcome of a structured extraction.
type ExtractionResult struct {
	// Schema is the extraction target.
	Schema Schema `json:"schema" yaml:"schema"`

	// Data is a typed record slice ([]DoorRecord, []RoomRecord or
	// []EquipmentRecord). It is never nil.
	Data any `json:"data" yaml:"data"`

	// Count is the number of records in Data.
	Count int `json:"count" yaml:"count"`

	// Sources are the pages the records were drawn from.
	Sources []Source `json:"sources" yaml:"sources"`
}
