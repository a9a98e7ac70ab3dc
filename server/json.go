package server

import "encoding/json"

// mergeJSON adds fields to a marshaled JSON object, nil values are skipped.
func mergeJSON(object []byte, fields map[string]any) ([]byte, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(object, &m); err != nil {
		return nil, err
	}
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if string(raw) == "null" {
			continue
		}
		m[k] = raw
	}
	return json.Marshal(m)
}
