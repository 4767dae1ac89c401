package models

import "encoding/json"

// FlexTags accepts the tag field of a raw record, which the generator
// scripts emit either as a JSON array or as a single delimited string.
type FlexTags []string

func (t *FlexTags) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*t = arr
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*t = nil
		} else {
			*t = []string{s}
		}
		return nil
	}

	// Anything else (null, number, object) is treated as no tags.
	*t = nil
	return nil
}

func (t FlexTags) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(t))
}
