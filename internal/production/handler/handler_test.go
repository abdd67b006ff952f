package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/config"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/service"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/sse"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/testutil"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/shared/textileapi"
	"github.com/gin-gonic/gin"
)

type testEnv struct {
	router  *gin.Engine
	backend *testutil.FakeBackend
	hub     *sse.Hub
}

func setupHandlerTest(t *testing.T) *testEnv {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	cfg := &config.Config{
		Console: config.ConsoleConfig{
			DefaultPageSize: 20,
			SessionTTL:      time.Hour,
			MasterCacheTTL:  time.Minute,
		},
	}
	hub := sse.NewHub(nil)
	svc := service.NewServices(service.Deps{
		Client: fb.Client(),
		Hub:    hub,
		Config: cfg,
	})

	r := testutil.SetupRouter()
	RegisterRoutes(testutil.AuthGroup(r, "/api/v1"), NewHandlers(svc, nil, hub), true)
	return &testEnv{router: r, backend: fb, hub: hub}
}

func (e *testEnv) do(method, path string, body interface{}, session string) *httptest.ResponseRecorder {
	return testutil.DoSessionRequest(e.router, method, path, body, testutil.DefaultTestToken(), session)
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("Expected %d, got %d: %s", status, w.Code, w.Body.String())
	}
}

// =============================================================================
// Register
// =============================================================================

func TestRegisterViewLoadsFirstPage(t *testing.T) {
	env := setupHandlerTest(t)
	env.backend.SetRegister("", testutil.SampleRegisterRows("A", 5))

	w := env.do("GET", "/api/v1/register", nil, "s1")
	expectStatus(t, w, http.StatusOK)

	data := testutil.ResponseData(t, w)
	rows := data["rows"].([]interface{})
	if len(rows) != 5 {
		t.Fatalf("Expected 5 rows, got %d", len(rows))
	}
	page := data["page"].(map[string]interface{})
	if page["total"].(float64) != 5 || page["has_next"].(bool) {
		t.Fatalf("Unexpected page info: %v", page)
	}
	if data["filter"] != "All" {
		t.Fatalf("Expected filter All, got %v", data["filter"])
	}

	// 第二次访问使用会话内状态，不再请求后端
	env.do("GET", "/api/v1/register", nil, "s1")
	if n := len(env.backend.RequestsTo("GET", "/api/v1/lots/reports/lot-register")); n != 1 {
		t.Fatalf("Expected 1 backend load, got %d", n)
	}
}

func TestRegisterRequiresAuth(t *testing.T) {
	env := setupHandlerTest(t)
	w := testutil.DoRequest(env.router, "GET", "/api/v1/register", nil, "")
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestRegisterFilterPerSession(t *testing.T) {
	env := setupHandlerTest(t)
	env.backend.SetRegister("", testutil.SampleRegisterRows("A", 4))
	env.backend.SetRegister("High Speed", testutil.SampleRegisterRows("H", 2))

	w := env.do("POST", "/api/v1/register/filter", gin.H{"filter": "high speed"}, "s1")
	expectStatus(t, w, http.StatusOK)
	data := testutil.ResponseData(t, w)
	if data["filter"] != "High Speed" {
		t.Fatalf("Expected High Speed, got %v", data["filter"])
	}
	if rows := data["rows"].([]interface{}); len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	w = env.do("GET", "/api/v1/register", nil, "s2")
	data = testutil.ResponseData(t, w)
	if data["filter"] != "All" {
		t.Fatalf("Session s2 should keep its own filter, got %v", data["filter"])
	}

	w = env.do("POST", "/api/v1/register/filter", gin.H{"filter": "Turbo"}, "s1")
	expectStatus(t, w, http.StatusBadRequest)
}

func TestRegisterSessionBoundToUser(t *testing.T) {
	env := setupHandlerTest(t)
	env.backend.SetRegister("", testutil.SampleRegisterRows("A", 4))
	env.backend.SetRegister("High Speed", testutil.SampleRegisterRows("H", 2))
	alice := testutil.GenerateTestToken("alice", "Alice", []string{"*"})
	bob := testutil.GenerateTestToken("bob", "Bob", []string{"*"})

	w := testutil.DoSessionRequest(env.router, "POST", "/api/v1/register/filter", gin.H{"filter": "High Speed"}, alice, "tab-1")
	expectStatus(t, w, http.StatusOK)

	// bob 冒用 alice 的会话标识只会得到自己的登记表
	w = testutil.DoSessionRequest(env.router, "GET", "/api/v1/register", nil, bob, "tab-1")
	expectStatus(t, w, http.StatusOK)
	if data := testutil.ResponseData(t, w); data["filter"] != "All" {
		t.Fatalf("bob should not see alice's filter, got %v", data["filter"])
	}

	w = testutil.DoSessionRequest(env.router, "GET", "/api/v1/register", nil, alice, "tab-1")
	if data := testutil.ResponseData(t, w); data["filter"] != "High Speed" {
		t.Fatalf("alice lost her filter, got %v", data["filter"])
	}
}

func TestRegisterPaging(t *testing.T) {
	env := setupHandlerTest(t)
	env.backend.SetRegister("", testutil.SampleRegisterRows("A", 25))

	w := env.do("POST", "/api/v1/register/page", gin.H{"page": 2}, "s1")
	expectStatus(t, w, http.StatusOK)
	page := testutil.ResponseData(t, w)["page"].(map[string]interface{})
	if page["page"].(float64) != 2 || page["total_pages"].(float64) != 2 || !page["has_prev"].(bool) {
		t.Fatalf("Unexpected page info: %v", page)
	}

	w = env.do("POST", "/api/v1/register/page", gin.H{"page": 2, "page_size": 10}, "s1")
	expectStatus(t, w, http.StatusOK)
	page = testutil.ResponseData(t, w)["page"].(map[string]interface{})
	if page["page"].(float64) != 1 || page["page_size"].(float64) != 10 {
		t.Fatalf("Page size change should reset to page 1: %v", page)
	}
}

func TestRegisterReloadShowsBackendError(t *testing.T) {
	env := setupHandlerTest(t)
	env.backend.SetRegister("", testutil.SampleRegisterRows("A", 2))
	env.backend.FailNext("GET", "/api/v1/lots/reports/lot-register", http.StatusInternalServerError, "database down")

	w := env.do("POST", "/api/v1/register/reload", nil, "s1")
	expectStatus(t, w, http.StatusOK)
	data := testutil.ResponseData(t, w)
	viewErr, ok := data["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected error in view: %v", data)
	}
	if viewErr["message"] != "database down" || viewErr["retry"] != service.RetryRegister {
		t.Fatalf("Unexpected view error: %v", viewErr)
	}
	if rows, _ := data["rows"].([]interface{}); len(rows) != 0 {
		t.Fatalf("Rows should be cleared on error, got %d", len(rows))
	}
}

func TestEditCellCommitted(t *testing.T) {
	env := setupHandlerTest(t)
	env.backend.SetRegister("", testutil.SampleRegisterRows("A", 2))
	env.do("GET", "/api/v1/register", nil, "s1")

	w := env.do("PATCH", "/api/v1/register/lots/1000/field/bill_number?value=B-42", nil, "s1")
	expectStatus(t, w, http.StatusOK)
	data := testutil.ResponseData(t, w)
	edit := data["edit"].(map[string]interface{})
	if edit["state"] != "committed" || edit["value"] != "B-42" {
		t.Fatalf("Unexpected edit: %v", edit)
	}
	rows := data["view"].(map[string]interface{})["rows"].([]interface{})
	for _, r := range rows {
		if r.(map[string]interface{})["bill_no"] != "B-42" {
			t.Fatalf("Both rows of the lot should show the new bill number: %v", r)
		}
	}
	if got := env.backend.RegisterRows("")[1].BillNo; got != "B-42" {
		t.Fatalf("Backend not patched, got %q", got)
	}
}

func TestEditCellValueInBody(t *testing.T) {
	env := setupHandlerTest(t)
	env.backend.SetRegister("", testutil.SampleRegisterRows("A", 2))
	env.do("GET", "/api/v1/register", nil, "s1")

	w := env.do("PATCH", "/api/v1/register/lots/1000/field/actual_pieces", gin.H{"value": "007"}, "s1")
	expectStatus(t, w, http.StatusOK)
	edit := testutil.ResponseData(t, w)["edit"].(map[string]interface{})
	if edit["value"] != "7" {
		t.Fatalf("Expected normalized value 7, got %v", edit["value"])
	}

	w = env.do("PATCH", "/api/v1/register/lots/1000/field/actual_pieces", nil, "s1")
	expectStatus(t, w, http.StatusBadRequest)
}

func TestEditCellReverted(t *testing.T) {
	env := setupHandlerTest(t)
	env.backend.SetRegister("", testutil.SampleRegisterRows("A", 2))
	env.do("GET", "/api/v1/register", nil, "s1")
	env.backend.FailNext("PATCH", "/api/v1/lots/1000/field/bill_number", http.StatusNotFound, "Lot not found")

	w := env.do("PATCH", "/api/v1/register/lots/1000/field/bill_number?value=B-1", nil, "s1")
	expectStatus(t, w, http.StatusOK)
	edit := testutil.ResponseData(t, w)["edit"].(map[string]interface{})
	if edit["state"] != "reverted" || edit["error"] != "Lot not found" {
		t.Fatalf("Unexpected edit: %v", edit)
	}
}

func TestEditCellValidation(t *testing.T) {
	env := setupHandlerTest(t)
	env.backend.SetRegister("", testutil.SampleRegisterRows("A", 2))
	env.do("GET", "/api/v1/register", nil, "s1")

	cases := []string{
		"/api/v1/register/lots/1000/field/party_name?value=X",
		"/api/v1/register/lots/1000/field/actual_pieces?value=-3",
		"/api/v1/register/lots/1000/field/delivery_date?value=20-01-2024",
		"/api/v1/register/lots/9999/field/bill_number?value=B-1",
		"/api/v1/register/lots/abc/field/bill_number?value=B-1",
	}
	for _, path := range cases {
		w := env.do("PATCH", path, nil, "s1")
		expectStatus(t, w, http.StatusBadRequest)
	}
	for _, r := range env.backend.Requests() {
		if r.Method == "PATCH" {
			t.Fatalf("Invalid edit reached the backend: %s", r.Path)
		}
	}
}

func TestEditCellRequiresPermission(t *testing.T) {
	env := setupHandlerTest(t)
	env.backend.SetRegister("", testutil.SampleRegisterRows("A", 2))

	w := testutil.DoSessionRequest(env.router, "PATCH", "/api/v1/register/lots/1000/field/bill_number?value=B-1",
		nil, testutil.ViewerTestToken(), "s1")
	expectStatus(t, w, http.StatusForbidden)

	w = testutil.DoSessionRequest(env.router, "GET", "/api/v1/register", nil, testutil.ViewerTestToken(), "s1")
	expectStatus(t, w, http.StatusOK)
}

func TestCreateLotBackendRejects(t *testing.T) {
	env := setupHandlerTest(t)
	env.backend.SetRegister("", testutil.SampleRegisterRows("A", 2))
	env.do("GET", "/api/v1/register", nil, "s1")

	body := gin.H{"order_id": 11, "lot_number": "L-1", "lot_date": "2024-03-02", "party_id": 1, "quality_id": 3}
	w := env.do("POST", "/api/v1/register/create-lot", body, "s1")
	expectStatus(t, w, http.StatusBadRequest)
	if msg := testutil.ParseResponse(w)["message"]; msg != "No remaining pieces for order" {
		t.Fatalf("Expected backend detail, got %v", msg)
	}

	w = env.do("POST", "/api/v1/register/create-lot", gin.H{"order_id": 11}, "s1")
	expectStatus(t, w, http.StatusBadRequest)
}

func TestCreateLotFromRegister(t *testing.T) {
	env := setupHandlerTest(t)
	rows := testutil.SampleRegisterRows("A", 2)
	rows[1].LotNo = ""
	rows[1].LotID = nil
	rows[1].OrderID = 12
	env.backend.SetRegister("", rows)

	body := gin.H{"order_id": 12, "lot_number": "L-77", "lot_date": "2024-03-02", "party_id": 1, "quality_id": 3}
	w := env.do("POST", "/api/v1/register/create-lot", body, "s1")
	expectStatus(t, w, http.StatusCreated)
	view := testutil.ResponseData(t, w)["view"].(map[string]interface{})
	got := view["rows"].([]interface{})[1].(map[string]interface{})
	if got["lot_no"] != "L-77" {
		t.Fatalf("Reloaded view should show the new lot, got %v", got["lot_no"])
	}
}

func TestEditHistoryWithoutJournal(t *testing.T) {
	env := setupHandlerTest(t)
	w := env.do("GET", "/api/v1/register/lots/1000/edits", nil, "s1")
	expectStatus(t, w, http.StatusOK)
	if enabled := testutil.ResponseData(t, w)["enabled"]; enabled != false {
		t.Fatalf("Expected journal disabled, got %v", enabled)
	}
}

// =============================================================================
// Reports
// =============================================================================

func TestPartywiseFlow(t *testing.T) {
	env := setupHandlerTest(t)
	env.backend.SetPartywise(testutil.SamplePartywise())

	w := env.do("GET", "/api/v1/reports/partywise/export.csv", nil, "s1")
	expectStatus(t, w, http.StatusBadRequest)

	w = env.do("GET", "/api/v1/reports/partywise", nil, "s1")
	expectStatus(t, w, http.StatusOK)
	groups := testutil.ResponseData(t, w)["groups"].([]interface{})
	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}
	if groups[0].(map[string]interface{})["expanded"].(bool) {
		t.Fatalf("Groups should start collapsed")
	}

	w = env.do("POST", "/api/v1/reports/partywise/toggle", gin.H{"key": "party:1"}, "s1")
	expectStatus(t, w, http.StatusOK)
	groups = testutil.ResponseData(t, w)["groups"].([]interface{})
	if !groups[0].(map[string]interface{})["expanded"].(bool) {
		t.Fatalf("party:1 should be expanded")
	}

	w = env.do("POST", "/api/v1/reports/partywise/toggle", gin.H{"key": "party:404"}, "s1")
	expectStatus(t, w, http.StatusNotFound)

	w = env.do("POST", "/api/v1/reports/partywise/expand", gin.H{"expanded": true}, "s1")
	expectStatus(t, w, http.StatusOK)
	for _, g := range testutil.ResponseData(t, w)["groups"].([]interface{}) {
		if !g.(map[string]interface{})["expanded"].(bool) {
			t.Fatalf("All groups should be expanded")
		}
	}

	w = env.do("GET", "/api/v1/reports/partywise/export.csv", nil, "s1")
	expectStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != service.ContentTypeCSV {
		t.Fatalf("Expected CSV content type, got %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") || !strings.Contains(cd, ".csv") {
		t.Fatalf("Unexpected Content-Disposition %q", cd)
	}
	lines := strings.Split(strings.TrimSuffix(w.Body.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected header + 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], `"Party Name",`) {
		t.Fatalf("Unexpected header %q", lines[0])
	}

	w = env.do("GET", "/api/v1/reports/partywise/export.xlsx", nil, "s1")
	expectStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != service.ContentTypeXLSX {
		t.Fatalf("Expected XLSX content type, got %q", ct)
	}
}

func TestPartywiseInvalidPartyID(t *testing.T) {
	env := setupHandlerTest(t)
	w := env.do("GET", "/api/v1/reports/partywise?party_id=abc", nil, "s1")
	expectStatus(t, w, http.StatusBadRequest)
}

func TestExportArchiveNotConfigured(t *testing.T) {
	env := setupHandlerTest(t)
	env.backend.SetPartywise(testutil.SamplePartywise())
	env.do("GET", "/api/v1/reports/partywise", nil, "s1")

	w := env.do("GET", "/api/v1/reports/partywise/export.csv?archive=1", nil, "s1")
	expectStatus(t, w, http.StatusNotImplemented)
}

func TestLotRegisterReport(t *testing.T) {
	env := setupHandlerTest(t)
	rows := testutil.SampleRegisterRows("A", 3)
	rows[0].Status = "DELIVERED"
	env.backend.SetRegister("", rows)

	w := env.do("GET", "/api/v1/reports/lot-register?page=1&page_size=2", nil, "s1")
	expectStatus(t, w, http.StatusOK)
	data := testutil.ResponseData(t, w)
	got := data["rows"].([]interface{})
	if len(got) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(got))
	}
	if badge := got[0].(map[string]interface{})["badge"]; badge != "accent" {
		t.Fatalf("Expected accent badge for delivered, got %v", badge)
	}

	w = env.do("GET", "/api/v1/reports/lot-register/export.csv", nil, "s1")
	expectStatus(t, w, http.StatusOK)
	lines := strings.Split(strings.TrimSuffix(w.Body.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d lines", len(lines))
	}
}

// =============================================================================
// Allocation & catalog
// =============================================================================

func TestAllocationStatus(t *testing.T) {
	env := setupHandlerTest(t)
	env.backend.SetAllocation(testutil.SampleAllocation())

	w := env.do("GET", "/api/v1/allocation/status?party=acme", nil, "")
	expectStatus(t, w, http.StatusOK)
	data := testutil.ResponseData(t, w)
	if items := data["items"].([]interface{}); len(items) != 2 {
		t.Fatalf("Expected 2 Acme items, got %d", len(items))
	}

	w = env.do("GET", "/api/v1/allocation/available?party_id=x", nil, "")
	expectStatus(t, w, http.StatusBadRequest)
}

func TestAllocationBackendDown(t *testing.T) {
	env := setupHandlerTest(t)
	env.backend.Server.Close()

	w := env.do("GET", "/api/v1/allocation/status", nil, "")
	expectStatus(t, w, http.StatusOK)
	viewErr := testutil.ResponseData(t, w)["error"].(map[string]interface{})
	if viewErr["kind"] != "transport" || viewErr["retryable"] != true {
		t.Fatalf("Unexpected view error: %v", viewErr)
	}

	w = env.do("GET", "/api/v1/parties/1", nil, "")
	expectStatus(t, w, http.StatusServiceUnavailable)
}

func TestPartyPassThrough(t *testing.T) {
	env := setupHandlerTest(t)
	env.backend.AddParty(textileapi.Party{ID: 1, PartyName: "Acme Textiles", ContactNumber: "9876543210", IsActive: true})

	w := env.do("GET", "/api/v1/parties/1", nil, "")
	expectStatus(t, w, http.StatusOK)
	if name := testutil.ResponseData(t, w)["party_name"]; name != "Acme Textiles" {
		t.Fatalf("Unexpected party %v", name)
	}

	w = env.do("GET", "/api/v1/parties/77", nil, "")
	expectStatus(t, w, http.StatusNotFound)
	if msg := testutil.ParseResponse(w)["message"]; msg != "Party not found" {
		t.Fatalf("Expected backend detail, got %v", msg)
	}

	w = env.do("POST", "/api/v1/parties", gin.H{"party_name": "X", "contact_number": "12"}, "")
	expectStatus(t, w, http.StatusBadRequest)
	for _, r := range env.backend.Requests() {
		if r.Method == "POST" {
			t.Fatalf("Invalid party reached the backend")
		}
	}

	w = env.do("POST", "/api/v1/parties", gin.H{"party_name": "Gamma Looms", "contact_number": "9123456789"}, "")
	expectStatus(t, w, http.StatusCreated)

	w = env.do("GET", "/api/v1/parties/search?q=a", nil, "")
	expectStatus(t, w, http.StatusBadRequest)
}

func TestMasterDropdown(t *testing.T) {
	env := setupHandlerTest(t)
	env.backend.SetDropdown(textileapi.DropdownData{
		Parties: []textileapi.Party{{ID: 1, PartyName: "Acme Textiles", IsActive: true}},
	})

	w := env.do("GET", "/api/v1/master/dropdown-data", nil, "")
	expectStatus(t, w, http.StatusOK)
	parties := testutil.ResponseData(t, w)["parties"].([]interface{})
	if len(parties) != 1 {
		t.Fatalf("Expected 1 party option, got %d", len(parties))
	}
}

// =============================================================================
// SSE
// =============================================================================

func TestSSEStream(t *testing.T) {
	env := setupHandlerTest(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET",
		srv.URL+"/api/v1/sse/events?session_id=s1&token="+testutil.DefaultTestToken(), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Unexpected content type %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("Read stream: %v", err)
			}
			if strings.HasPrefix(line, "event: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "event: "))
			}
		}
	}

	if ev := readEvent(); ev != "connected" {
		t.Fatalf("Expected connected event, got %q", ev)
	}
	// 连接注册在绑定了登录用户的会话键下
	env.hub.PublishToSession("test-user-001:s1", sse.EventRegisterReload, gin.H{"session_id": "s1"})
	if ev := readEvent(); ev != sse.EventRegisterReload {
		t.Fatalf("Expected %s, got %q", sse.EventRegisterReload, ev)
	}
}
