package response

import (
	"encoding/json"
	"fmt"
	"io"
)

// Response is the standard envelope returned by the platform HTTP APIs.
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

// ErrorInfo contains error details.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorInfo) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Decode reads an envelope from r and unmarshals its data into out.
// An unsuccessful envelope is returned as *ErrorInfo.
func Decode(r io.Reader, out interface{}) error {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !resp.Success {
		if resp.Error != nil {
			return resp.Error
		}
		return &ErrorInfo{Code: "UNKNOWN", Message: "request was not successful"}
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return fmt.Errorf("response has no data")
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
