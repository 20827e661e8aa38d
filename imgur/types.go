package imgur

import (
	"encoding/json"
	"fmt"
)

// Response is the envelope every successful API call returns.
type Response struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
	Status  int             `json:"status"`
}

// Decode unmarshals the data field into v.
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 {
		return fmt.Errorf("response has no data")
	}
	return json.Unmarshal(r.Data, v)
}

// Map returns the envelope as generic JSON values, for use with selectors.
func (r *Response) Map() (map[string]any, error) {
	var data any
	if len(r.Data) > 0 {
		if err := json.Unmarshal(r.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to decode data: %w", err)
		}
	}

	return map[string]any{
		"data":    data,
		"success": r.Success,
		"status":  r.Status,
	}, nil
}
