package textileapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/v1/", WithTimeout(2*time.Second)), srv
}

func TestNewClientTrimsBaseURL(t *testing.T) {
	c := NewClient("http://localhost:8000/api/v1/")
	if c.BaseURL() != "http://localhost:8000/api/v1" {
		t.Fatalf("Expected trailing slash trimmed, got %s", c.BaseURL())
	}
}

func TestLotRegisterQuery(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/lots/reports/lot-register" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `{"items":[{"lot_no":"L-1","party_name":"Acme","design_no":"D1","quality":"Q","total_pieces":12,"status":"PENDING","order_id":1,"party_id":2,"quality_id":3}],"total_lots":1,"total_pieces":12,"total_delivered":0,"total":41}`)
	})

	reg, err := c.LotRegister(context.Background(), LotRegisterQuery{Page: 2, PageSize: 20})
	if err != nil {
		t.Fatalf("LotRegister failed: %v", err)
	}
	if strings.Contains(gotQuery, "lot_register_type") {
		t.Errorf("Expected no type param for All, got %s", gotQuery)
	}
	if !strings.Contains(gotQuery, "page=2") || !strings.Contains(gotQuery, "page_size=20") {
		t.Errorf("Expected page params, got %s", gotQuery)
	}
	if reg.Total == nil || *reg.Total != 41 {
		t.Errorf("Expected total 41, got %v", reg.Total)
	}
	if len(reg.Items) != 1 || reg.Items[0].LotNo != "L-1" {
		t.Errorf("Unexpected items: %+v", reg.Items)
	}

	if _, err := c.LotRegister(context.Background(), LotRegisterQuery{Page: 1, PageSize: 20, Type: "High Speed"}); err != nil {
		t.Fatalf("LotRegister failed: %v", err)
	}
	if !strings.Contains(gotQuery, "lot_register_type=High+Speed") {
		t.Errorf("Expected type param, got %s", gotQuery)
	}
}

func TestLotRegisterWithoutTotal(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"items":[],"total_lots":0,"total_pieces":0,"total_delivered":0}`)
	})
	reg, err := c.LotRegister(context.Background(), LotRegisterQuery{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("LotRegister failed: %v", err)
	}
	if reg.Total != nil {
		t.Errorf("Expected nil total, got %d", *reg.Total)
	}
}

func TestServerErrorDetail(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"string detail", http.StatusNotFound, `{"detail":"Lot not found"}`, "Lot not found"},
		{"validation array", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","sets"],"msg":"must be positive"},{"loc":["body","pick"],"msg":"required"}]}`, "must be positive; required"},
		{"message fallback", http.StatusBadRequest, `{"message":"bad input"}`, "bad input"},
		{"no body", http.StatusInternalServerError, ``, "Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			})
			_, err := c.GetLot(context.Background(), 9)
			if !IsServer(err) {
				t.Fatalf("Expected server error, got %v", err)
			}
			if IsTransport(err) {
				t.Errorf("Server error must not be classified as transport")
			}
			if StatusCode(err) != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, StatusCode(err))
			}
			if Detail(err) != tc.want {
				t.Errorf("Expected detail %q, got %q", tc.want, Detail(err))
			}
		})
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, WithTimeout(time.Second))
	_, err := c.DropdownData(context.Background())
	if !IsTransport(err) {
		t.Fatalf("Expected transport error, got %v", err)
	}
	if StatusCode(err) != 0 {
		t.Errorf("Transport error must carry no status, got %d", StatusCode(err))
	}
	if Detail(err) != "backend unreachable" {
		t.Errorf("Unexpected detail %q", Detail(err))
	}
}

func TestCancelledContextIsTransport(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.AllocationStatus(ctx, nil)
	if !IsTransport(err) {
		t.Fatalf("Expected transport error, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected wrapped context.Canceled, got %v", err)
	}
}

func TestMalformedBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"parties": [`)
	})
	_, err := c.PartywiseDetail(context.Background(), nil)
	if !IsServer(err) {
		t.Fatalf("Expected server error for malformed body, got %v", err)
	}
	if StatusCode(err) != http.StatusOK {
		t.Errorf("Expected raw status 200, got %d", StatusCode(err))
	}
}

func TestPatchLotField(t *testing.T) {
	var calls int32
	var method, path, value string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		method, path, value = r.Method, r.URL.Path, r.URL.Query().Get("value")
		io.WriteString(w, `{"success":true,"message":"Lot updated successfully"}`)
	})

	res, err := c.PatchLotField(context.Background(), 7, FieldBillNumber, "B-101")
	if err != nil {
		t.Fatalf("PatchLotField failed: %v", err)
	}
	if !res.Success {
		t.Errorf("Expected success")
	}
	if method != http.MethodPatch || path != "/api/v1/lots/7/field/bill_number" || value != "B-101" {
		t.Errorf("Unexpected request %s %s value=%s", method, path, value)
	}

	if _, err := c.PatchLotField(context.Background(), 7, "status", "DELIVERED"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("Expected invalid request for non-whitelisted field, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("Rejected field must not reach the backend, calls=%d", calls)
	}
}

func TestAllocationQueries(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `[{"id":1,"order_id":5,"design_number":"D1","ground_color_name":"Red","beam_color_id":2,"total_pieces":100,"allocated_pieces":40,"remaining_pieces":60,"rate_per_piece":"12.50"}]`)
	})

	orderID := 5
	items, err := c.AllocationStatus(context.Background(), &orderID)
	if err != nil {
		t.Fatalf("AllocationStatus failed: %v", err)
	}
	if gotQuery != "order_id=5" {
		t.Errorf("Expected order_id query, got %s", gotQuery)
	}
	if len(items) != 1 || items[0].RemainingPieces != 60 {
		t.Fatalf("Unexpected items %+v", items)
	}
	if !items[0].RatePerPiece.Valid || !items[0].RatePerPiece.Decimal.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("Unexpected rate %v", items[0].RatePerPiece)
	}

	partyID, qualityID := 2, 3
	if _, err := c.AvailableAllocations(context.Background(), &partyID, &qualityID); err != nil {
		t.Fatalf("AvailableAllocations failed: %v", err)
	}
	if gotQuery != "party_id=2&quality_id=3" {
		t.Errorf("Unexpected query %s", gotQuery)
	}
}

func TestCreatePartyValidation(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":1,"party_name":"Acme Mills","contact_number":"9876543210","is_active":true}`)
	})

	_, err := c.CreateParty(context.Background(), &PartyCreate{PartyName: "A", ContactNumber: "123"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("Expected invalid request, got %v", err)
	}
	if !strings.Contains(err.Error(), "party_name") || !strings.Contains(err.Error(), "contact_number") {
		t.Errorf("Expected json field names in error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("Invalid request must not reach the backend")
	}

	party, err := c.CreateParty(context.Background(), &PartyCreate{PartyName: "Acme Mills", ContactNumber: "9876543210"})
	if err != nil {
		t.Fatalf("CreateParty failed: %v", err)
	}
	if party.ID != 1 {
		t.Errorf("Expected id 1, got %d", party.ID)
	}
}

func TestOrderCreateValidation(t *testing.T) {
	valid := func() *OrderCreate {
		return &OrderCreate{
			PartyID: 1, QualityID: 2, Sets: 4, Pick: 40,
			Cuts:          []string{"2.5"},
			RatePerPiece:  decimal.RequireFromString("12.50"),
			DesignNumbers: []string{" d1 ", "D2"},
			GroundColors:  []GroundColor{{GroundColorName: "Red", BeamColorID: 3}},
		}
	}

	req := valid()
	req.Normalize()
	if err := Validate(req); err != nil {
		t.Fatalf("Expected valid order, got %v", err)
	}
	if req.DesignNumbers[0] != "D1" {
		t.Errorf("Expected normalized design number, got %q", req.DesignNumbers[0])
	}

	dup := valid()
	dup.DesignNumbers = []string{"d1", "D1"}
	if err := Validate(dup); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("Expected duplicate design numbers rejected, got %v", err)
	}

	zeroRate := valid()
	zeroRate.RatePerPiece = decimal.Zero
	if err := Validate(zeroRate); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("Expected zero rate rejected, got %v", err)
	}

	noColors := valid()
	noColors.GroundColors = nil
	if err := Validate(noColors); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("Expected missing ground colors rejected, got %v", err)
	}
}

func TestLotCreateDuplicateAllocation(t *testing.T) {
	alloc := LotAllocationItem{OrderID: 1, DesignNumber: "D1", GroundColorName: "Red", BeamColorID: 2, AllocatedPieces: 10}
	req := &LotCreate{PartyID: 1, QualityID: 1, Allocations: []LotAllocationItem{alloc, alloc}}
	if err := Validate(req); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("Expected duplicate allocation rejected, got %v", err)
	}
}

func TestCreateLotFromRegister(t *testing.T) {
	var body string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		if r.Header.Get("Content-Type") == "" {
			t.Errorf("Expected content type header")
		}
		io.WriteString(w, `{"success":true,"message":"Lot L-9 created"}`)
	})

	res, err := c.CreateLotFromRegister(context.Background(), &CreateFromRegisterRequest{
		OrderID: 4, LotNumber: "L-9", LotDate: "2024-03-01", PartyID: 2, QualityID: 3,
	})
	if err != nil {
		t.Fatalf("CreateLotFromRegister failed: %v", err)
	}
	if !res.Success {
		t.Errorf("Expected success")
	}
	for _, want := range []string{`"order_id":4`, `"lot_number":"L-9"`, `"lot_date":"2024-03-01"`} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %s, got %s", want, body)
		}
	}

	_, err = c.CreateLotFromRegister(context.Background(), &CreateFromRegisterRequest{OrderID: 4, LotNumber: "L-9", LotDate: "01/03/2024", PartyID: 2, QualityID: 3})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("Expected bad date rejected, got %v", err)
	}
}

func TestDeleteEmptyBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	if err := c.DeleteParty(context.Background(), 3); err != nil {
		t.Fatalf("DeleteParty failed: %v", err)
	}
}
