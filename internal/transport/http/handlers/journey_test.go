package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"hrcore/internal/app/server"
	"hrcore/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		Environment:        "test",
		SeedOrgName:        "Test Org",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
	}
}

func startApp(t *testing.T) (*server.App, *httptest.Server) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	app, err := server.New(context.Background(), testConfig(dbURL))
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return app, ts
}

// registerOwner creates a fresh user plus a fresh organization, so each test
// works in an org no other test touches.
func registerOwner(t *testing.T, client *http.Client, baseURL, label string) (token, userID string) {
	t.Helper()
	email := fmt.Sprintf("%s-%d@example.com", label, time.Now().UnixNano())
	resp := postJSON(t, client, baseURL+"/api/v1/auth/register", "", map[string]any{
		"email":    email,
		"password": "Owner123!",
	})
	var payload struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	if payload.Token == "" || payload.User.ID == "" {
		t.Fatal("expected token and user id from register")
	}

	postJSON(t, client, baseURL+"/api/v1/org/bootstrap", payload.Token, map[string]any{
		"name": fmt.Sprintf("%s Org %d", label, time.Now().UnixNano()),
	})
	return payload.Token, payload.User.ID
}

func createEmployee(t *testing.T, client *http.Client, baseURL, token string, extra map[string]any) string {
	t.Helper()
	body := map[string]any{
		"employeeCode":     fmt.Sprintf("EMP-%d", time.Now().UnixNano()),
		"firstName":        "Journey",
		"lastName":         "Tester",
		"email":            fmt.Sprintf("journey-%d@example.com", time.Now().UnixNano()),
		"employmentStatus": "active",
		"joiningDate":      "2026-01-05",
	}
	for k, v := range extra {
		body[k] = v
	}
	resp := postJSON(t, client, baseURL+"/api/v1/employees", token, body)
	return idFrom(t, resp, "employee")
}

func createLeaveType(t *testing.T, client *http.Client, baseURL, token string, quota float64) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/leave/types", token, map[string]any{
		"name":        "Annual",
		"annualQuota": quota,
		"accrualRate": 0,
		"isPaid":      true,
	})
	return idFrom(t, resp, "leave type")
}

func seedBalances(t *testing.T, client *http.Client, baseURL, token, employeeID string) int {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/leave/balances/seed", token, map[string]any{
		"employeeId": employeeID,
	})
	var payload struct {
		Seeded int `json:"seeded"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode seed response: %v", err)
	}
	return payload.Seeded
}

func createLeaveRequest(t *testing.T, client *http.Client, baseURL, token, leaveTypeID, start, end string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/leave/requests", token, map[string]any{
		"leaveTypeId": leaveTypeID,
		"startDate":   start,
		"endDate":     end,
		"reason":      "Rest",
	})
	return idFrom(t, resp, "leave request")
}

func listBalances(t *testing.T, client *http.Client, baseURL, token, employeeID string) []map[string]any {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/leave/balances?employeeId="+employeeID, token)
	var payload []map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode balances response: %v", err)
	}
	return payload
}

func idFrom(t *testing.T, resp envelope, what string) string {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode %s response: %v", what, err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatalf("expected %s id", what)
	}
	return id
}

func TestLeaveRequestJourney(t *testing.T) {
	_, ts := startApp(t)
	client := ts.Client()

	token, userID := registerOwner(t, client, ts.URL, "leave-owner")
	employeeID := createEmployee(t, client, ts.URL, token, map[string]any{"userId": userID})
	leaveTypeID := createLeaveType(t, client, ts.URL, token, 10)

	postJSON(t, client, ts.URL+"/api/v1/leave/holidays", token, map[string]any{
		"name": "Founders Day",
		"date": "2026-03-04",
	})

	if seeded := seedBalances(t, client, ts.URL, token, employeeID); seeded != 1 {
		t.Fatalf("expected 1 seeded balance, got %d", seeded)
	}

	// Mon 2026-03-02 through Fri 2026-03-06 with the Wednesday holiday
	// counts as 4 working days.
	requestID := createLeaveRequest(t, client, ts.URL, token, leaveTypeID, "2026-03-02", "2026-03-06")

	resp := postJSON(t, client, ts.URL+"/api/v1/leave/requests/"+requestID+"/approve", token, map[string]any{})
	var approval map[string]any
	if err := json.Unmarshal(resp.Data, &approval); err != nil {
		t.Fatalf("failed to decode approve response: %v", err)
	}
	if approval["status"] != "approved" {
		t.Fatalf("expected status approved, got %v", approval["status"])
	}

	reqResp := getJSON(t, client, ts.URL+"/api/v1/leave/requests/"+requestID, token)
	var request map[string]any
	if err := json.Unmarshal(reqResp.Data, &request); err != nil {
		t.Fatalf("failed to decode request response: %v", err)
	}
	if days, _ := request["days"].(float64); days != 4 {
		t.Fatalf("expected 4 leave days, got %v", request["days"])
	}
	if request["status"] != "approved" {
		t.Fatalf("expected request status approved, got %v", request["status"])
	}

	balances := listBalances(t, client, ts.URL, token, employeeID)
	if len(balances) != 1 {
		t.Fatalf("expected one balance row, got %d", len(balances))
	}
	if balance, _ := balances[0]["balance"].(float64); balance != 6 {
		t.Fatalf("expected balance 6 after approval, got %v", balances[0]["balance"])
	}

	// Approved requests are terminal.
	postJSONStatus(t, client, ts.URL+"/api/v1/leave/requests/"+requestID+"/approve", token,
		map[string]any{}, http.StatusConflict)
}

func TestLeaveApprovalInsufficientBalance(t *testing.T) {
	_, ts := startApp(t)
	client := ts.Client()

	token, userID := registerOwner(t, client, ts.URL, "leave-short")
	employeeID := createEmployee(t, client, ts.URL, token, map[string]any{"userId": userID})
	leaveTypeID := createLeaveType(t, client, ts.URL, token, 2)

	if seeded := seedBalances(t, client, ts.URL, token, employeeID); seeded != 1 {
		t.Fatalf("expected 1 seeded balance, got %d", seeded)
	}

	// Five working days against a balance of two.
	requestID := createLeaveRequest(t, client, ts.URL, token, leaveTypeID, "2026-03-09", "2026-03-13")
	postJSONStatus(t, client, ts.URL+"/api/v1/leave/requests/"+requestID+"/approve", token,
		map[string]any{}, http.StatusUnprocessableEntity)

	reqResp := getJSON(t, client, ts.URL+"/api/v1/leave/requests/"+requestID, token)
	var request map[string]any
	if err := json.Unmarshal(reqResp.Data, &request); err != nil {
		t.Fatalf("failed to decode request response: %v", err)
	}
	if request["status"] != "pending" {
		t.Fatalf("expected request to stay pending, got %v", request["status"])
	}

	balances := listBalances(t, client, ts.URL, token, employeeID)
	if balance, _ := balances[0]["balance"].(float64); balance != 2 {
		t.Fatalf("expected balance untouched at 2, got %v", balances[0]["balance"])
	}
}

func TestCrossOrgEmployeeInvisible(t *testing.T) {
	_, ts := startApp(t)
	client := ts.Client()

	tokenA, _ := registerOwner(t, client, ts.URL, "org-a")
	tokenB, _ := registerOwner(t, client, ts.URL, "org-b")

	employeeID := createEmployee(t, client, ts.URL, tokenA, nil)

	getJSON(t, client, ts.URL+"/api/v1/employees/"+employeeID, tokenA)
	getJSONStatus(t, client, ts.URL+"/api/v1/employees/"+employeeID, tokenB, http.StatusNotFound)

	listResp := getJSON(t, client, ts.URL+"/api/v1/employees", tokenB)
	var listing struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(listResp.Data, &listing); err != nil {
		t.Fatalf("failed to decode employee listing: %v", err)
	}
	if listing.Total != 0 {
		t.Fatalf("expected no employees visible across orgs, got %d", listing.Total)
	}
}

func TestSoftDeleteAndRestoreEmployee(t *testing.T) {
	_, ts := startApp(t)
	client := ts.Client()

	token, _ := registerOwner(t, client, ts.URL, "soft-delete")
	employeeID := createEmployee(t, client, ts.URL, token, nil)

	deleteJSON(t, client, ts.URL+"/api/v1/employees/"+employeeID, token)
	getJSONStatus(t, client, ts.URL+"/api/v1/employees/"+employeeID, token, http.StatusNotFound)

	listResp := getJSON(t, client, ts.URL+"/api/v1/employees", token)
	var listing struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(listResp.Data, &listing); err != nil {
		t.Fatalf("failed to decode employee listing: %v", err)
	}
	if listing.Total != 0 {
		t.Fatalf("expected deleted employee hidden from listing, got total %d", listing.Total)
	}

	deletedResp := getJSON(t, client, ts.URL+"/api/v1/employees?includeDeleted=true", token)
	if err := json.Unmarshal(deletedResp.Data, &listing); err != nil {
		t.Fatalf("failed to decode employee listing: %v", err)
	}
	if listing.Total != 1 {
		t.Fatalf("expected deleted employee visible with includeDeleted, got total %d", listing.Total)
	}

	postJSON(t, client, ts.URL+"/api/v1/employees/"+employeeID+"/restore", token, map[string]any{})

	// Restore only clears the deletion marker; the inactive status set at
	// delete time stays as stored until someone updates the record.
	restoredResp := getJSON(t, client, ts.URL+"/api/v1/employees/"+employeeID, token)
	var restored map[string]any
	if err := json.Unmarshal(restoredResp.Data, &restored); err != nil {
		t.Fatalf("failed to decode restored employee: %v", err)
	}
	if restored["employmentStatus"] != "inactive" {
		t.Fatalf("expected restored employee to keep status inactive, got %v", restored["employmentStatus"])
	}
}

func TestOnboardingTemplateInstantiation(t *testing.T) {
	_, ts := startApp(t)
	client := ts.Client()

	token, _ := registerOwner(t, client, ts.URL, "onboarding")
	employeeID := createEmployee(t, client, ts.URL, token, nil)

	templateResp := postJSON(t, client, ts.URL+"/api/v1/onboarding/templates", token, map[string]any{
		"name": "Engineering Starter",
	})
	templateID := idFrom(t, templateResp, "template")

	for i, title := range []string{"Sign contract", "Set up laptop", "Meet the team"} {
		postJSON(t, client, ts.URL+"/api/v1/onboarding/templates/"+templateID+"/items", token, map[string]any{
			"taskTitle":      title,
			"defaultDueDays": i * 7,
			"sortOrder":      i,
		})
	}

	instantiate := func() int {
		resp := postJSON(t, client, ts.URL+"/api/v1/onboarding/instantiate", token, map[string]any{
			"employeeId": employeeID,
			"templateId": templateID,
		})
		var payload struct {
			TasksCreated int `json:"tasksCreated"`
		}
		if err := json.Unmarshal(resp.Data, &payload); err != nil {
			t.Fatalf("failed to decode instantiate response: %v", err)
		}
		return payload.TasksCreated
	}

	if created := instantiate(); created != 3 {
		t.Fatalf("expected 3 tasks created, got %d", created)
	}
	// A second instantiation is not deduplicated.
	if created := instantiate(); created != 3 {
		t.Fatalf("expected 3 tasks on second instantiation, got %d", created)
	}

	tasksResp := getJSON(t, client, ts.URL+"/api/v1/onboarding/tasks?employeeId="+employeeID, token)
	var tasks []map[string]any
	if err := json.Unmarshal(tasksResp.Data, &tasks); err != nil {
		t.Fatalf("failed to decode tasks response: %v", err)
	}
	if len(tasks) != 6 {
		t.Fatalf("expected 6 tasks after two instantiations, got %d", len(tasks))
	}

	taskID, _ := tasks[0]["id"].(string)
	postJSON(t, client, ts.URL+"/api/v1/onboarding/tasks/"+taskID+"/status", token, map[string]any{"status": "in_progress"})
	postJSON(t, client, ts.URL+"/api/v1/onboarding/tasks/"+taskID+"/status", token, map[string]any{"status": "done"})
	postJSONStatus(t, client, ts.URL+"/api/v1/onboarding/tasks/"+taskID+"/status", token,
		map[string]any{"status": "open"}, http.StatusConflict)
}

func TestEmployeeRoleDeniedWrites(t *testing.T) {
	app, ts := startApp(t)
	client := ts.Client()

	ownerToken, _ := registerOwner(t, client, ts.URL, "deny-owner")
	createEmployee(t, client, ts.URL, ownerToken, nil)

	memberEmail := fmt.Sprintf("deny-member-%d@example.com", time.Now().UnixNano())
	registerResp := postJSON(t, client, ts.URL+"/api/v1/auth/register", "", map[string]any{
		"email":    memberEmail,
		"password": "Member123!",
	})
	var member struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(registerResp.Data, &member); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}

	orgResp := getJSON(t, client, ts.URL+"/api/v1/org/current", ownerToken)
	var organization struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(orgResp.Data, &organization); err != nil {
		t.Fatalf("failed to decode org response: %v", err)
	}

	ctx := context.Background()
	if _, err := app.DB.Exec(ctx, `
    INSERT INTO organization_members (org_id, user_id, is_primary)
    VALUES ($1, $2, true)
  `, organization.ID, member.User.ID); err != nil {
		t.Fatalf("failed to add member: %v", err)
	}

	// Without a role every permission check denies.
	getJSONStatus(t, client, ts.URL+"/api/v1/leave/types", member.Token, http.StatusForbidden)

	postJSON(t, client, ts.URL+"/api/v1/org/roles/assign", ownerToken, map[string]any{
		"userId": member.User.ID,
		"role":   "employee",
	})

	// The employee role grants leave.read, so the assignment is now live.
	getJSON(t, client, ts.URL+"/api/v1/leave/types", member.Token)

	// No employees.write grant on the employee role.
	postJSONStatus(t, client, ts.URL+"/api/v1/employees", member.Token, map[string]any{
		"employeeCode":     "DENIED-1",
		"firstName":        "Denied",
		"lastName":         "Member",
		"email":            memberEmail,
		"employmentStatus": "active",
	}, http.StatusForbidden)

	// No employee record linked to the member, so the listing is empty even
	// though the org has employees.
	listResp := getJSON(t, client, ts.URL+"/api/v1/employees", member.Token)
	var listing struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(listResp.Data, &listing); err != nil {
		t.Fatalf("failed to decode employee listing: %v", err)
	}
	if listing.Total != 0 {
		t.Fatalf("expected empty listing for unlinked member, got total %d", listing.Total)
	}

	// Revoking drops the grant and invalidates the cached permissions.
	postJSON(t, client, ts.URL+"/api/v1/org/roles/revoke", ownerToken, map[string]any{
		"userId": member.User.ID,
		"role":   "employee",
	})
	getJSONStatus(t, client, ts.URL+"/api/v1/leave/types", member.Token, http.StatusForbidden)
}

func TestConcurrentApprovalDecrementsOnce(t *testing.T) {
	_, ts := startApp(t)
	client := ts.Client()

	token, userID := registerOwner(t, client, ts.URL, "race-owner")
	employeeID := createEmployee(t, client, ts.URL, token, map[string]any{"userId": userID})
	leaveTypeID := createLeaveType(t, client, ts.URL, token, 10)

	if seeded := seedBalances(t, client, ts.URL, token, employeeID); seeded != 1 {
		t.Fatalf("expected 1 seeded balance, got %d", seeded)
	}

	// Mon 2026-03-09 through Fri 2026-03-13, five working days.
	requestID := createLeaveRequest(t, client, ts.URL, token, leaveTypeID, "2026-03-09", "2026-03-13")

	approveURL := ts.URL + "/api/v1/leave/requests/" + requestID + "/approve"
	results := make(chan int, 2)
	for i := 0; i < 2; i++ {
		go func() {
			req, err := http.NewRequest(http.MethodPost, approveURL, bytes.NewBufferString("{}"))
			if err != nil {
				results <- 0
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := client.Do(req)
			if err != nil {
				results <- 0
				return
			}
			resp.Body.Close()
			results <- resp.StatusCode
		}()
	}

	statuses := map[int]int{}
	for i := 0; i < 2; i++ {
		statuses[<-results]++
	}
	if statuses[http.StatusOK] != 1 || statuses[http.StatusConflict] != 1 {
		t.Fatalf("expected one 200 and one 409 from simultaneous approvals, got %v", statuses)
	}

	reqResp := getJSON(t, client, ts.URL+"/api/v1/leave/requests/"+requestID, token)
	var request map[string]any
	if err := json.Unmarshal(reqResp.Data, &request); err != nil {
		t.Fatalf("failed to decode request response: %v", err)
	}
	if request["status"] != "approved" {
		t.Fatalf("expected request approved, got %v", request["status"])
	}

	balances := listBalances(t, client, ts.URL, token, employeeID)
	if balance, _ := balances[0]["balance"].(float64); balance != 5 {
		t.Fatalf("expected balance decremented exactly once to 5, got %v", balances[0]["balance"])
	}
}

func TestSeededAdminCanLogin(t *testing.T) {
	_, ts := startApp(t)
	client := ts.Client()

	resp := postJSON(t, client, ts.URL+"/api/v1/auth/login", "", map[string]any{
		"email":    "admin@test.local",
		"password": "ChangeMe123!",
	})
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if payload.Token == "" {
		t.Fatal("expected token for seeded admin")
	}
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, token, body, 0)
}

func postJSONStatus(t *testing.T, client *http.Client, url, token string, body any, want int) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, token, body, want)
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodGet, url, token, nil, 0)
}

func getJSONStatus(t *testing.T, client *http.Client, url, token string, want int) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodGet, url, token, nil, want)
}

func deleteJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodDelete, url, token, nil, 0)
}

// doJSON issues a request and decodes the response envelope. A zero want
// accepts any 2xx and fails on errors; a non-zero want requires that exact
// status.
func doJSON(t *testing.T, client *http.Client, method, url, token string, body any, want int) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response from %s: %v", url, err)
	}
	if want != 0 {
		if resp.StatusCode != want {
			t.Fatalf("expected status %d from %s, got %d: %s", want, url, resp.StatusCode, string(raw))
		}
		return env
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d from %s: %s", resp.StatusCode, url, string(raw))
	}
	return env
}
