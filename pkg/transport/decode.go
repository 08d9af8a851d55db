package transport

import (
	"encoding/json"
	"fmt"
)

func decodeData(data []byte, v interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("transport: empty message payload")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("transport: decoding payload: %w", err)
	}
	return nil
}
