package api_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMedicationFlow(t *testing.T) {
	requireServer(t)
	if dependantID == "" {
		t.Skip("dependant setup failed")
	}

	base := fmt.Sprintf("/dependants/%s/medications", dependantID)
	today := time.Now().Format("2006-01-02")

	createResp := makeRequest("POST", base, map[string]interface{}{
		"name":          uniqueName("Metformin"),
		"start_date":    today,
		"end_date":      today,
		"start_time":    "08:00",
		"end_time":      "20:00",
		"doses_per_day": 3,
	}, authToken)
	assert.True(t, createResp.IsSuccess(), "Failed to create medication: %s", createResp.Message)
	medicationID := createResp.GetString("id")
	assert.NotEmpty(t, medicationID)

	// The generated schedule should surface as three tasks today.
	tasksResp := makeRequest("GET", "/tasks?date="+today, nil, authToken)
	assert.True(t, tasksResp.IsSuccess())
	tasks := dayTasks(t, tasksResp)
	assert.GreaterOrEqual(t, len(tasks), 3)

	// Mark the first dose done and verify the toggle round-trips.
	doseTime := time.Date(time.Now().Year(), time.Now().Month(), time.Now().Day(), 8, 0, 0, 0, time.Local)
	completionBody := map[string]interface{}{"dose_time": doseTime.Format(time.RFC3339)}

	completeResp := makeRequest("POST", fmt.Sprintf("%s/%s/completions", base, medicationID), completionBody, authToken)
	assert.True(t, completeResp.IsSuccess(), "Failed to set completion: %s", completeResp.Message)

	// Marking again is idempotent.
	repeatResp := makeRequest("POST", fmt.Sprintf("%s/%s/completions", base, medicationID), completionBody, authToken)
	assert.True(t, repeatResp.IsSuccess())
	assert.Equal(t, completeResp.GetString("key"), repeatResp.GetString("key"))

	uncompleteResp := makeRequest("DELETE", fmt.Sprintf("%s/%s/completions", base, medicationID), completionBody, authToken)
	assert.True(t, uncompleteResp.IsSuccess())

	// Update doses per day and verify the schedule overwrites.
	updateResp := makeRequest("PUT", fmt.Sprintf("%s/%s", base, medicationID), map[string]interface{}{
		"doses_per_day": 2,
	}, authToken)
	assert.True(t, updateResp.IsSuccess())

	deleteResp := makeRequest("DELETE", fmt.Sprintf("%s/%s", base, medicationID), nil, authToken)
	assert.True(t, deleteResp.IsSuccess())

	getResp := makeRequest("GET", fmt.Sprintf("%s/%s", base, medicationID), nil, authToken)
	assert.False(t, getResp.IsSuccess())
}

func TestMedicationRejectsBadDescriptor(t *testing.T) {
	requireServer(t)
	if dependantID == "" {
		t.Skip("dependant setup failed")
	}

	resp := makeRequest("POST", fmt.Sprintf("/dependants/%s/medications", dependantID), map[string]interface{}{
		"name":          uniqueName("Broken"),
		"start_date":    time.Now().Format("2006-01-02"),
		"start_time":    "8am",
		"doses_per_day": 3,
	}, authToken)
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, 400, resp.StatusCode)
}

func TestCalendarGrid(t *testing.T) {
	requireServer(t)

	today := time.Now().Format("2006-01-02")
	resp := makeRequest("GET", fmt.Sprintf("/calendar?from=%s&to=%s", today, today), nil, authToken)
	assert.True(t, resp.IsSuccess(), "Failed to get calendar: %s", resp.Message)
	assert.Equal(t, "grid", resp.Data["mode"])
}

// dayTasks unwraps the list projection returned by /tasks.
func dayTasks(t *testing.T, resp TestResponse) []interface{} {
	t.Helper()
	day, ok := resp.Data["day"].(map[string]interface{})
	if !ok {
		return nil
	}
	raw, _ := json.Marshal(day["tasks"])
	var tasks []interface{}
	json.Unmarshal(raw, &tasks)
	return tasks
}
