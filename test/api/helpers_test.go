package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

func makeRequest(method, path string, body interface{}, token string) TestResponse {
	jsonBody, _ := json.Marshal(body)

	req, err := http.NewRequest(method, baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return TestResponse{Status: "error", Message: err.Error()}
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{}
	response, err := client.Do(req)
	if err != nil {
		return TestResponse{Status: "error", Message: err.Error()}
	}
	defer response.Body.Close()

	respBody, err := io.ReadAll(response.Body)
	if err != nil {
		return TestResponse{Status: "error", Message: err.Error()}
	}

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusCreated {
		return TestResponse{
			StatusCode: response.StatusCode,
			Status:     "error",
			Message:    fmt.Sprintf("HTTP %d: %s", response.StatusCode, string(respBody)),
		}
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return TestResponse{
			Status:  "error",
			Message: fmt.Sprintf("Failed to parse response: %s\nRaw response: %s", err.Error(), string(respBody)),
		}
	}

	testResp := TestResponse{
		StatusCode: response.StatusCode,
		Status:     apiResp.Status,
		Message:    apiResp.Message,
		RawData:    string(apiResp.Data),
	}

	if len(apiResp.Data) > 0 {
		var data map[string]interface{}
		if err := json.Unmarshal(apiResp.Data, &data); err == nil {
			testResp.Data = data
		}
	}

	return testResp
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, time.Now().UnixNano())
}
