package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/entity"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/testutil"
	"go.uber.org/zap"
)

func TestLotReportBadges(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	rows := testutil.SampleRegisterRows("A", 5)
	rows[0].Status = "PENDING"
	rows[1].Status = "In Progress"
	rows[2].Status = "completed"
	rows[3].Status = "Delivered"
	rows[4].Status = "archived"
	fb.SetRegister("", rows)

	svc := NewLotReportService(fb.Client(), zap.NewNop(), "s1", 10)
	view := svc.Page(context.Background(), 1, 0)
	if view.Error != nil {
		t.Fatalf("Unexpected error: %+v", view.Error)
	}

	want := []entity.Badge{entity.BadgeWarning, entity.BadgeInfo, entity.BadgeSuccess, entity.BadgeAccent, entity.BadgeNeutral}
	for i, w := range want {
		if view.Rows[i].Badge != w {
			t.Fatalf("Row %d (%s): expected %s, got %s", i, view.Rows[i].Status, w, view.Rows[i].Badge)
		}
	}
	if view.Page.PageSize != 10 || view.Page.Total != 5 || view.Page.HasNext {
		t.Fatalf("Unexpected page info: %+v", view.Page)
	}

	reqs := fb.RequestsTo(http.MethodGet, "/api/v1/lots/reports/lot-register")
	if _, ok := reqs[0].Query["lot_register_type"]; ok {
		t.Fatalf("Lot report is unfiltered")
	}
}

func TestLotReportExport(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetRegister("", testutil.SampleRegisterRows("A", 3))
	svc := NewLotReportService(fb.Client(), zap.NewNop(), "s1", 2)

	if _, err := svc.ExportCSV(); err != ErrNothingLoaded {
		t.Fatalf("Expected ErrNothingLoaded, got %v", err)
	}
	svc.Page(context.Background(), 1, 0)

	file, err := svc.ExportCSV()
	if err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(file.Data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header + loaded page (2 rows), got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], `"Lot Date","Lot No","Party Name"`) || !strings.HasSuffix(lines[0], `"Status","Badge"`) {
		t.Fatalf("Unexpected header: %s", lines[0])
	}
	if !strings.HasSuffix(lines[1], `"PENDING","warning"`) {
		t.Fatalf("Unexpected row: %s", lines[1])
	}

	xlsx, err := svc.ExportXLSX()
	if err != nil || len(xlsx.Data) == 0 || xlsx.ContentType != ContentTypeXLSX {
		t.Fatalf("ExportXLSX failed: %v", err)
	}
}

func TestLotReportError(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.FailNext(http.MethodGet, "/api/v1/lots/reports/lot-register", http.StatusBadGateway, "upstream")
	svc := NewLotReportService(fb.Client(), zap.NewNop(), "s1", 10)

	view := svc.Page(context.Background(), -2, 500)
	if view.Error == nil || view.Error.Retry != RetryLotReport {
		t.Fatalf("Expected error with retry, got %+v", view.Error)
	}
	if view.Page.Page != 1 || view.Page.PageSize != maxPageSize {
		t.Fatalf("Expected clamped paging, got %+v", view.Page)
	}
	if _, err := svc.ExportCSV(); err != ErrNothingLoaded {
		t.Fatalf("Failed page must not be exported")
	}
}

func TestLotReportDiscardsStalePage(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetRegister("", testutil.SampleRegisterRows("A", 4))
	svc := NewLotReportService(fb.Client(), zap.NewNop(), "s1", 2)
	ctx := context.Background()

	gate := fb.HoldRegister("")
	done := make(chan entity.LotReportView, 1)
	go func() { done <- svc.Page(ctx, 1, 0) }()
	gate.WaitArrived(t)

	second := svc.Page(ctx, 2, 0)
	if second.Page.Page != 2 {
		t.Fatalf("Expected page 2, got %d", second.Page.Page)
	}

	gate.Release()
	if stale := <-done; stale.Page.Page != 2 {
		t.Fatalf("Stale page 1 response replaced page 2: %+v", stale.Page)
	}
	if view := svc.View(); view.Page.Page != 2 || view.Rows[0].DesignNo != "A-D2" {
		t.Fatalf("Expected page 2 rows kept, got page %d", view.Page.Page)
	}
}
