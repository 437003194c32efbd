package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// decodeResponse decodes a control API response into out, turning a
// non-2xx reply into an error carrying the server's message.
func decodeResponse(resp *http.Response, out any) error {
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode/100 != 2 {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Error == "" {
			body.Error = resp.Status
		}
		return fmt.Errorf("daemon returned error: %s", body.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
