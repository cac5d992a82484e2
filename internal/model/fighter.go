package model

import (
	"encoding/json"
	"fmt"
)

// Fighter is a card participant. The upstream API ships this field in two
// shapes: a bare name string, or a structured record with an id and a
// win-loss record. Both decode into this single tagged form; Structured
// tells callers which fields are meaningful.
type Fighter struct {
	Name       string
	ID         int64
	Record     string
	Structured bool
}

type fighterRecord struct {
	Name   string `json:"name"`
	ID     int64  `json:"id"`
	Record string `json:"record"`
}

// UnmarshalJSON accepts either `"Jon Jones"` or
// `{"name":"Jon Jones","id":27,"record":"27-1-0"}`.
func (f *Fighter) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*f = Fighter{Name: name}
		return nil
	}

	var rec fighterRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("fighter: unsupported shape: %w", err)
	}
	*f = Fighter{
		Name:       rec.Name,
		ID:         rec.ID,
		Record:     rec.Record,
		Structured: true,
	}
	return nil
}

// MarshalJSON always emits the structured shape so downstream consumers see
// one format regardless of what upstream sent.
func (f Fighter) MarshalJSON() ([]byte, error) {
	return json.Marshal(fighterRecord{
		Name:   f.Name,
		ID:     f.ID,
		Record: f.Record,
	})
}
