// internal/websocket/utils.go
package websocket

import "encoding/json"

// DecodeData converts a message's generic payload into target via JSON
func DecodeData(data interface{}, target interface{}) error {
	if data == nil {
		return nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, target)
}
