package api_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDependantFlow(t *testing.T) {
	requireServer(t)

	createResp := makeRequest("POST", "/dependants", map[string]interface{}{
		"first_name": "Test",
		"last_name":  uniqueName("Dependant"),
		"notes":      "allergic to penicillin",
	}, authToken)
	assert.True(t, createResp.IsSuccess(), "Failed to create dependant: %s", createResp.Message)
	dependantID = createResp.GetString("id")
	assert.NotEmpty(t, dependantID)

	getResp := makeRequest("GET", fmt.Sprintf("/dependants/%s", dependantID), nil, authToken)
	assert.True(t, getResp.IsSuccess())
	assert.Equal(t, createResp.Data["last_name"], getResp.Data["last_name"])
	assert.Equal(t, "allergic to penicillin", getResp.Data["notes"])

	updateResp := makeRequest("PUT", fmt.Sprintf("/dependants/%s", dependantID), map[string]interface{}{
		"notes": "no known allergies",
	}, authToken)
	assert.True(t, updateResp.IsSuccess())
	assert.Equal(t, "no known allergies", updateResp.Data["notes"])

	listResp := makeRequest("GET", "/dependants", nil, authToken)
	assert.True(t, listResp.IsSuccess())
}

func TestDependantRequiresAuth(t *testing.T) {
	requireServer(t)

	resp := makeRequest("GET", "/dependants", nil, "")
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, 401, resp.StatusCode)
}
