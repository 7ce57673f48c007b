package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

var (
	baseURL     = "http://localhost:8080/api/v1"
	serverUp    bool
	authToken   string
	dependantID string
)

// APIResponse represents the API response structure
type APIResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// TestResponse wraps the API response for testing
type TestResponse struct {
	StatusCode int
	Status     string
	Message    string
	Data       map[string]interface{}
	RawData    string
}

func (r TestResponse) IsSuccess() bool {
	return r.Status == "success"
}

func (r TestResponse) GetString(key string) string {
	if r.Data == nil {
		return ""
	}
	if v, ok := r.Data[key].(string); ok {
		return v
	}
	return ""
}

func checkAPIServer() error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(baseURL + "/health/live")
	if err != nil {
		return fmt.Errorf("API server not reachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status %d", resp.StatusCode)
	}
	return nil
}

// requireServer skips the test when no running API server is available.
func requireServer(t *testing.T) {
	t.Helper()
	if !serverUp {
		t.Skip("API server not running, set MEDREMIND_API_URL to enable")
	}
}

func TestMain(m *testing.M) {
	if url := os.Getenv("MEDREMIND_API_URL"); url != "" {
		baseURL = url
	}

	if err := checkAPIServer(); err == nil {
		serverUp = true
		setupAuth()
	}

	os.Exit(m.Run())
}

func setupAuth() {
	email := fmt.Sprintf("caregiver_%d@example.com", time.Now().UnixNano())
	registerResp := makeRequest("POST", "/auth/register", map[string]string{
		"email":      email,
		"password":   "secret-password-1",
		"first_name": "Test",
		"last_name":  "Caregiver",
	}, "")
	if !registerResp.IsSuccess() {
		fmt.Printf("Failed to register caregiver: %s\n", registerResp.Message)
		serverUp = false
		return
	}

	loginResp := makeRequest("POST", "/auth/login", map[string]string{
		"email":    email,
		"password": "secret-password-1",
	}, "")
	if !loginResp.IsSuccess() {
		fmt.Printf("Failed to login: %s\n", loginResp.Message)
		serverUp = false
		return
	}

	authToken = loginResp.GetString("access_token")
	if authToken == "" {
		fmt.Println("Failed to get auth token")
		serverUp = false
	}
}
