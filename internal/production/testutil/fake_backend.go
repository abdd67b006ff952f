package testutil

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/shared/textileapi"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RecordedRequest is one request seen by the fake backend
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   string
}

type failure struct {
	status int
	detail string
}

// Gate holds a matching backend request until released
type Gate struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

// WaitArrived blocks until the held request reaches the fake backend
func (g *Gate) WaitArrived(t *testing.T) {
	t.Helper()
	select {
	case <-g.arrived:
	case <-time.After(5 * time.Second):
		t.Fatalf("Held request never arrived")
	}
}

// Release lets the held request continue
func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}

// FakeBackend serves the textile REST API from in-memory fixtures
type FakeBackend struct {
	Server *httptest.Server

	mu                sync.Mutex
	requests          []RecordedRequest
	failures          map[string]failure
	gates             map[string]*Gate
	allocation        []textileapi.OrderItemStatus
	beamSummary       textileapi.BeamSummaryAllocation
	partywise         textileapi.PartywiseReport
	register          map[string][]textileapi.LotRegisterItem
	omitRegisterTotal bool
	dropdown          textileapi.DropdownData
	parties           map[int]textileapi.Party
	orders            map[int]textileapi.Order
	lots              map[int]textileapi.Lot
	nextID            int
}

// NewFakeBackend starts a fake backend, closed on test cleanup.
// Its base URL (with /api/v1) is returned by URL().
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{
		failures: make(map[string]failure),
		gates:    make(map[string]*Gate),
		register: make(map[string][]textileapi.LotRegisterItem),
		parties:  make(map[int]textileapi.Party),
		orders:   make(map[int]textileapi.Order),
		lots:     make(map[int]textileapi.Lot),
		nextID:   100,
	}
	fb.Server = httptest.NewServer(fb.router())
	t.Cleanup(fb.Server.Close)
	return fb
}

// URL returns the API base URL of the fake backend
func (fb *FakeBackend) URL() string {
	return fb.Server.URL + "/api/v1"
}

// Client returns a textile API client pointed at the fake backend
func (fb *FakeBackend) Client() *textileapi.Client {
	return textileapi.NewClient(fb.URL(), textileapi.WithTimeout(5*time.Second))
}

// =============================================================================
// fixtures
// =============================================================================

func (fb *FakeBackend) SetAllocation(items []textileapi.OrderItemStatus) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.allocation = items
}

func (fb *FakeBackend) SetBeamSummary(s textileapi.BeamSummaryAllocation) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.beamSummary = s
}

func (fb *FakeBackend) SetPartywise(r textileapi.PartywiseReport) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.partywise = r
}

// SetRegister sets the rows returned for a lot_register_type ("" for all)
func (fb *FakeBackend) SetRegister(registerType string, rows []textileapi.LotRegisterItem) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.register[registerType] = rows
}

// OmitRegisterTotal makes lot-register responses leave out "total"
func (fb *FakeBackend) OmitRegisterTotal(omit bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.omitRegisterTotal = omit
}

func (fb *FakeBackend) SetDropdown(d textileapi.DropdownData) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.dropdown = d
}

func (fb *FakeBackend) AddParty(p textileapi.Party) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.parties[p.ID] = p
}

func (fb *FakeBackend) AddLot(l textileapi.Lot) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.lots[l.ID] = l
}

// FailNext makes the next request to method+path return status with detail
func (fb *FakeBackend) FailNext(method, path string, status int, detail string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failures[method+" "+path] = failure{status: status, detail: detail}
}

// HoldRegister holds the next lot-register request for a type ("" for all)
func (fb *FakeBackend) HoldRegister(registerType string) *Gate {
	return fb.hold("register:" + registerType)
}

// HoldPartywise holds the next partywise-detail request for a party ("" for all parties)
func (fb *FakeBackend) HoldPartywise(partyID string) *Gate {
	return fb.hold("partywise:" + partyID)
}

// HoldPatch holds the next patch of a lot field to value
func (fb *FakeBackend) HoldPatch(lotID int, field, value string) *Gate {
	return fb.hold(fmt.Sprintf("patch:%d:%s=%s", lotID, field, value))
}

func (fb *FakeBackend) hold(key string) *Gate {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	g := &Gate{arrived: make(chan struct{}), release: make(chan struct{})}
	fb.gates[key] = g
	return g
}

// Requests returns a copy of all recorded requests
func (fb *FakeBackend) Requests() []RecordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]RecordedRequest, len(fb.requests))
	copy(out, fb.requests)
	return out
}

// RequestsTo returns recorded requests for a method and path
func (fb *FakeBackend) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range fb.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// RegisterRows returns the current rows for a register type
func (fb *FakeBackend) RegisterRows(registerType string) []textileapi.LotRegisterItem {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]textileapi.LotRegisterItem(nil), fb.register[registerType]...)
}

// =============================================================================
// routes
// =============================================================================

func (fb *FakeBackend) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fb.record)

	api := r.Group("/api/v1")

	parties := api.Group("/parties")
	parties.GET("/", fb.listParties)
	parties.POST("/", fb.createParty)
	parties.GET("/search/", fb.searchParties)
	parties.GET("/:id", fb.getParty)
	parties.PUT("/:id", fb.updateParty)
	parties.DELETE("/:id", fb.deleteParty)

	api.GET("/master/dropdown-data", func(c *gin.Context) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		c.JSON(http.StatusOK, fb.dropdown)
	})

	orders := api.Group("/orders")
	orders.GET("/", fb.listOrders)
	orders.POST("/", fb.createOrder)
	orders.GET("/search/", fb.searchOrders)
	orders.POST("/preview/", fb.previewOrder)
	orders.GET("/beam-details", fb.beamDetails)
	orders.GET("/:id", fb.getOrder)
	orders.PUT("/:id", fb.updateOrder)
	orders.DELETE("/:id", fb.deleteOrder)

	lots := api.Group("/lots")
	lots.GET("/", fb.listLots)
	lots.POST("/", fb.createLot)
	lots.GET("/reports/partywise-detail", fb.partywiseDetail)
	lots.GET("/reports/lot-register", fb.lotRegister)
	lots.GET("/reports/beam-summary-allocation", func(c *gin.Context) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		c.JSON(http.StatusOK, fb.beamSummary)
	})
	lots.GET("/allocation/status", fb.allocationStatus)
	lots.GET("/allocation/available", fb.allocationAvailable)
	lots.POST("/allocation/initialize/:order_id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order item status initialized"})
	})
	lots.POST("/create-from-register", fb.createFromRegister)
	lots.GET("/:id", fb.getLot)
	lots.PUT("/:id", fb.updateLot)
	lots.DELETE("/:id", fb.deleteLot)
	lots.PATCH("/:id/field/:field", fb.patchLotField)

	return r
}

// record logs the request, then applies one-shot failures and gates
func (fb *FakeBackend) record(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	path := c.Request.URL.Path
	query := c.Request.URL.Query()

	fb.mu.Lock()
	fb.requests = append(fb.requests, RecordedRequest{
		Method: c.Request.Method,
		Path:   path,
		Query:  query,
		Body:   string(body),
	})
	key := c.Request.Method + " " + path
	f, failing := fb.failures[key]
	if failing {
		delete(fb.failures, key)
	}
	gateKey := ""
	switch {
	case path == "/api/v1/lots/reports/lot-register":
		gateKey = "register:" + query.Get("lot_register_type")
	case path == "/api/v1/lots/reports/partywise-detail":
		gateKey = "partywise:" + query.Get("party_id")
	case c.Request.Method == http.MethodPatch:
		var lotID int
		var field string
		fmt.Sscanf(path, "/api/v1/lots/%d/field/", &lotID)
		if i := strings.LastIndex(path, "/"); i >= 0 {
			field = path[i+1:]
		}
		gateKey = fmt.Sprintf("patch:%d:%s=%s", lotID, field, query.Get("value"))
	}
	gate := fb.gates[gateKey]
	if gate != nil {
		delete(fb.gates, gateKey)
	}
	fb.mu.Unlock()

	if gate != nil {
		close(gate.arrived)
		<-gate.release
	}
	if failing {
		c.AbortWithStatusJSON(f.status, gin.H{"detail": f.detail})
		return
	}
	c.Next()
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"detail": what + " not found"})
}

func paramInt(c *gin.Context, name string) int {
	n, _ := strconv.Atoi(c.Param(name))
	return n
}

func queryInt(c *gin.Context, name string, def int) int {
	if n, err := strconv.Atoi(c.Query(name)); err == nil && n > 0 {
		return n
	}
	return def
}

func pageBounds(total, page, pageSize int) (int, int) {
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}

// ---- parties ----

func (fb *FakeBackend) sortedParties() []textileapi.Party {
	out := make([]textileapi.Party, 0, len(fb.parties))
	for _, p := range fb.parties {
		if p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (fb *FakeBackend) listParties(c *gin.Context) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	page, size := queryInt(c, "page", 1), queryInt(c, "page_size", 20)
	all := fb.sortedParties()
	start, end := pageBounds(len(all), page, size)
	c.JSON(http.StatusOK, textileapi.PartyList{Parties: all[start:end], Total: len(all), Page: page, PageSize: size})
}

func (fb *FakeBackend) searchParties(c *gin.Context) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	q := c.Query("q")
	var out []textileapi.Party
	for _, p := range fb.sortedParties() {
		if containsFold(p.PartyName, q) || containsFold(p.ContactNumber, q) {
			out = append(out, p)
		}
	}
	c.JSON(http.StatusOK, textileapi.PartySearchResult{Parties: out, Total: len(out)})
}

func (fb *FakeBackend) createParty(c *gin.Context) {
	var req textileapi.PartyCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.nextID++
	p := textileapi.Party{
		ID: fb.nextID, PartyName: req.PartyName, ContactNumber: req.ContactNumber,
		BrokerName: req.BrokerName, GST: req.GST, Address: req.Address, IsActive: true,
	}
	fb.parties[p.ID] = p
	c.JSON(http.StatusOK, p)
}

func (fb *FakeBackend) getParty(c *gin.Context) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	p, ok := fb.parties[paramInt(c, "id")]
	if !ok {
		notFound(c, "Party")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (fb *FakeBackend) updateParty(c *gin.Context) {
	var req textileapi.PartyUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	p, ok := fb.parties[paramInt(c, "id")]
	if !ok {
		notFound(c, "Party")
		return
	}
	if req.PartyName != nil {
		p.PartyName = *req.PartyName
	}
	if req.ContactNumber != nil {
		p.ContactNumber = *req.ContactNumber
	}
	if req.BrokerName != nil {
		p.BrokerName = *req.BrokerName
	}
	if req.GST != nil {
		p.GST = *req.GST
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	fb.parties[p.ID] = p
	c.JSON(http.StatusOK, p)
}

func (fb *FakeBackend) deleteParty(c *gin.Context) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	p, ok := fb.parties[paramInt(c, "id")]
	if !ok {
		notFound(c, "Party")
		return
	}
	p.IsActive = false
	fb.parties[p.ID] = p
	c.JSON(http.StatusOK, gin.H{"message": "Party deleted successfully"})
}

// ---- orders ----

func (fb *FakeBackend) listOrders(c *gin.Context) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	page, size := queryInt(c, "page", 1), queryInt(c, "page_size", 20)
	all := fb.orderItems("")
	start, end := pageBounds(len(all), page, size)
	c.JSON(http.StatusOK, textileapi.OrderList{Orders: all[start:end], Total: len(all), Page: page, PageSize: size})
}

func (fb *FakeBackend) orderItems(q string) []textileapi.OrderListItem {
	ids := make([]int, 0, len(fb.orders))
	for id, o := range fb.orders {
		if o.IsActive && (q == "" || containsFold(o.OrderNumber, q) || containsFold(o.PartyName, q)) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	out := make([]textileapi.OrderListItem, 0, len(ids))
	for _, id := range ids {
		o := fb.orders[id]
		out = append(out, textileapi.OrderListItem{
			ID: o.ID, OrderNumber: o.OrderNumber, OrderDate: o.OrderDate, PartyName: o.PartyName,
			QualityName: o.QualityName, TotalDesigns: o.TotalDesigns, TotalPieces: o.TotalPieces, TotalValue: o.TotalValue,
		})
	}
	return out
}

func (fb *FakeBackend) searchOrders(c *gin.Context) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := fb.orderItems(c.Query("q"))
	c.JSON(http.StatusOK, textileapi.OrderSearchResult{Orders: out, Total: len(out)})
}

func (fb *FakeBackend) createOrder(c *gin.Context) {
	var req textileapi.OrderCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.nextID++
	preview := beamPreview(req.GroundColors, req.DesignNumbers, req.Sets)
	o := textileapi.Order{
		ID:            fb.nextID,
		OrderNumber:   fmt.Sprintf("ORD-%04d", fb.nextID),
		PartyID:       req.PartyID,
		QualityID:     req.QualityID,
		Sets:          req.Sets,
		Pick:          req.Pick,
		OrderDate:     time.Now().Format("2006-01-02"),
		RatePerPiece:  req.RatePerPiece,
		TotalDesigns:  preview.TotalDesigns,
		TotalPieces:   preview.TotalPieces,
		TotalValue:    req.RatePerPiece.Mul(decimal.NewFromInt(int64(preview.TotalPieces))),
		Notes:         req.Notes,
		IsActive:      true,
		PartyName:     fb.parties[req.PartyID].PartyName,
		Cuts:          req.Cuts,
		DesignNumbers: req.DesignNumbers,
		GroundColors:  req.GroundColors,
		BeamSummary:   preview.BeamSummary,
		BeamColors:    preview.BeamColors,
	}
	fb.orders[o.ID] = o
	c.JSON(http.StatusOK, o)
}

func (fb *FakeBackend) getOrder(c *gin.Context) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	o, ok := fb.orders[paramInt(c, "id")]
	if !ok || !o.IsActive {
		notFound(c, "Order")
		return
	}
	c.JSON(http.StatusOK, o)
}

func (fb *FakeBackend) updateOrder(c *gin.Context) {
	var req textileapi.OrderUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	o, ok := fb.orders[paramInt(c, "id")]
	if !ok {
		notFound(c, "Order")
		return
	}
	if req.Notes != nil {
		o.Notes = *req.Notes
	}
	if req.RatePerPiece != nil {
		o.RatePerPiece = *req.RatePerPiece
	}
	fb.orders[o.ID] = o
	c.JSON(http.StatusOK, o)
}

func (fb *FakeBackend) deleteOrder(c *gin.Context) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	o, ok := fb.orders[paramInt(c, "id")]
	if !ok {
		notFound(c, "Order")
		return
	}
	o.IsActive = false
	fb.orders[o.ID] = o
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}

func beamPreview(colors []textileapi.GroundColor, designs []string, piecesPerColor int) textileapi.BeamPreview {
	summary := make(map[string]int)
	selections := make(map[string]int)
	for _, gc := range colors {
		key := strconv.Itoa(gc.BeamColorID)
		summary[key] += piecesPerColor * len(designs)
		selections[key]++
	}
	total := 0
	keys := make([]string, 0, len(summary))
	for k, v := range summary {
		total += v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	beams := make([]textileapi.BeamColorSummary, 0, len(keys))
	for _, k := range keys {
		beams = append(beams, textileapi.BeamColorSummary{
			ColorCode: k, ColorName: "Beam " + k,
			SelectionCount: selections[k], CalculatedPieces: summary[k],
		})
	}
	return textileapi.BeamPreview{TotalDesigns: len(designs), BeamSummary: summary, BeamColors: beams, TotalPieces: total}
}

func (fb *FakeBackend) previewOrder(c *gin.Context) {
	var req textileapi.BeamPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, beamPreview(req.GroundColors, req.DesignNumbers, req.PiecesPerColor))
}

func (fb *FakeBackend) beamDetails(c *gin.Context) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := []textileapi.BeamDetail{}
	for _, item := range fb.orderItems("") {
		o := fb.orders[item.ID]
		out = append(out, textileapi.BeamDetail{
			OrderID: o.ID, OrderNumber: o.OrderNumber, PartyName: o.PartyName, QualityName: o.QualityName,
			TotalDesigns: o.TotalDesigns, BeamSummary: o.BeamSummary, BeamColors: o.BeamColors,
		})
	}
	c.JSON(http.StatusOK, out)
}

// ---- lots ----

func (fb *FakeBackend) listLots(c *gin.Context) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	page, size := queryInt(c, "page", 1), queryInt(c, "page_size", 20)
	ids := make([]int, 0, len(fb.lots))
	for id := range fb.lots {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	start, end := pageBounds(len(ids), page, size)
	out := make([]textileapi.Lot, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, fb.lots[id])
	}
	c.JSON(http.StatusOK, textileapi.LotList{Lots: out, Total: len(ids), Page: page, PageSize: size})
}

func (fb *FakeBackend) createLot(c *gin.Context) {
	var req textileapi.LotCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.nextID++
	lot := textileapi.Lot{
		ID: fb.nextID, LotNumber: fmt.Sprintf("LOT-%04d", fb.nextID), LotDate: req.LotDate,
		PartyID: req.PartyID, QualityID: req.QualityID, BillNumber: req.BillNumber,
		ActualPieces: req.ActualPieces, DeliveryDate: req.DeliveryDate, Status: "PENDING", Notes: req.Notes,
	}
	for _, a := range req.Allocations {
		lot.TotalPieces += a.AllocatedPieces
		fb.nextID++
		lot.Allocations = append(lot.Allocations, textileapi.LotAllocation{
			ID: fb.nextID, LotID: lot.ID, OrderID: a.OrderID, DesignNumber: a.DesignNumber,
			GroundColorName: a.GroundColorName, BeamColorID: a.BeamColorID, AllocatedPieces: a.AllocatedPieces,
		})
	}
	fb.lots[lot.ID] = lot
	c.JSON(http.StatusOK, lot)
}

func (fb *FakeBackend) getLot(c *gin.Context) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	lot, ok := fb.lots[paramInt(c, "id")]
	if !ok {
		notFound(c, "Lot")
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (fb *FakeBackend) updateLot(c *gin.Context) {
	var req textileapi.LotUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	lot, ok := fb.lots[paramInt(c, "id")]
	if !ok {
		notFound(c, "Lot")
		return
	}
	if req.BillNumber != nil {
		lot.BillNumber = *req.BillNumber
	}
	if req.ActualPieces != nil {
		lot.ActualPieces = req.ActualPieces
	}
	if req.DeliveryDate != nil {
		lot.DeliveryDate = *req.DeliveryDate
	}
	if req.Status != nil {
		lot.Status = *req.Status
	}
	if req.Notes != nil {
		lot.Notes = *req.Notes
	}
	fb.lots[lot.ID] = lot
	c.JSON(http.StatusOK, lot)
}

func (fb *FakeBackend) deleteLot(c *gin.Context) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	id := paramInt(c, "id")
	if _, ok := fb.lots[id]; !ok {
		notFound(c, "Lot")
		return
	}
	delete(fb.lots, id)
	c.JSON(http.StatusOK, gin.H{"message": "Lot deleted successfully"})
}

func (fb *FakeBackend) patchLotField(c *gin.Context) {
	lotID := paramInt(c, "id")
	field := c.Param("field")
	value := c.Query("value")
	if !textileapi.IsPatchableLotField(field) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Field " + field + " cannot be updated"})
		return
	}
	var pieces *int
	if field == textileapi.FieldActualPieces && value != "" {
		n, err := strconv.Atoi(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "actual_pieces must be a number"})
			return
		}
		pieces = &n
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	found := false
	for key, rows := range fb.register {
		for i := range rows {
			if rows[i].LotID == nil || *rows[i].LotID != lotID {
				continue
			}
			found = true
			switch field {
			case textileapi.FieldBillNumber:
				rows[i].BillNo = value
			case textileapi.FieldActualPieces:
				rows[i].ActualPieces = pieces
			case textileapi.FieldDeliveryDate:
				rows[i].DeliveryDate = value
			case textileapi.FieldLotDate:
				rows[i].LotDate = value
			case textileapi.FieldLotNumber:
				rows[i].LotNo = value
			}
		}
		fb.register[key] = rows
	}
	if !found {
		notFound(c, "Lot")
		return
	}
	c.JSON(http.StatusOK, textileapi.ActionResult{Success: true, Message: "Lot " + field + " updated successfully"})
}

func (fb *FakeBackend) createFromRegister(c *gin.Context) {
	var req textileapi.CreateFromRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.nextID++
	lotID := fb.nextID
	assigned := false
	for key, rows := range fb.register {
		for i := range rows {
			if rows[i].OrderID == req.OrderID && rows[i].LotNo == "" {
				id := lotID
				rows[i].LotID = &id
				rows[i].LotNo = req.LotNumber
				rows[i].LotDate = req.LotDate
				assigned = true
			}
		}
		fb.register[key] = rows
	}
	if !assigned {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No remaining pieces for order"})
		return
	}
	c.JSON(http.StatusOK, textileapi.ActionResult{Success: true, Message: "Lot " + req.LotNumber + " created successfully"})
}

// ---- reports ----

func (fb *FakeBackend) partywiseDetail(c *gin.Context) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	report := fb.partywise
	if pid := c.Query("party_id"); pid != "" {
		id, _ := strconv.Atoi(pid)
		filtered := textileapi.PartywiseReport{}
		for _, p := range report.Parties {
			if p.PartyID == id {
				filtered.Parties = append(filtered.Parties, p)
				filtered.GrandTotalPieces += p.TotalRemainingPieces + p.TotalAllocatedPieces
			}
		}
		filtered.TotalParties = len(filtered.Parties)
		report = filtered
	}
	if report.Parties == nil {
		report.Parties = []textileapi.PartywiseDetail{}
	}
	c.JSON(http.StatusOK, report)
}

func (fb *FakeBackend) lotRegister(c *gin.Context) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	page, size := queryInt(c, "page", 1), queryInt(c, "page_size", 20)
	all := fb.register[c.Query("lot_register_type")]
	start, end := pageBounds(len(all), page, size)

	resp := gin.H{
		"items":     append([]textileapi.LotRegisterItem{}, all[start:end]...),
		"page":      page,
		"page_size": size,
	}
	lots := make(map[int]bool)
	pieces, delivered := 0, 0
	for _, row := range all {
		if row.LotID != nil {
			lots[*row.LotID] = true
		}
		pieces += row.TotalPieces
		if row.DeliveryDate != "" {
			delivered++
		}
	}
	resp["total_lots"] = len(lots)
	resp["total_pieces"] = pieces
	resp["total_delivered"] = delivered
	if !fb.omitRegisterTotal {
		resp["total"] = len(all)
	}
	c.JSON(http.StatusOK, resp)
}

func (fb *FakeBackend) allocationStatus(c *gin.Context) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := []textileapi.OrderItemStatus{}
	orderID, hasOrder := c.GetQuery("order_id")
	for _, it := range fb.allocation {
		if hasOrder && strconv.Itoa(it.OrderID) != orderID {
			continue
		}
		out = append(out, it)
	}
	c.JSON(http.StatusOK, out)
}

func (fb *FakeBackend) allocationAvailable(c *gin.Context) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := []textileapi.OrderItemStatus{}
	for _, it := range fb.allocation {
		if it.RemainingPieces != 0 {
			out = append(out, it)
		}
	}
	c.JSON(http.StatusOK, out)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
