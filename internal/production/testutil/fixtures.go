package testutil

import (
	"fmt"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/shared/textileapi"
	"github.com/shopspring/decimal"
)

func intPtr(n int) *int { return &n }

// SamplePartywise returns two parties: Acme Textiles with one allocated and
// one pending item, Beta Mills with one item.
func SamplePartywise() textileapi.PartywiseReport {
	return textileapi.PartywiseReport{
		Parties: []textileapi.PartywiseDetail{
			{
				PartyID:   1,
				PartyName: "Acme Textiles",
				Items: []textileapi.PartywiseDetailItem{
					{
						Date: "2024-01-05", DesNo: "D-101", Quality: "Silk 60", SetsPcs: 40,
						Rate: decimal.RequireFromString("12.50"), LotNo: "L-100", LotNoDate: "2024-01-10",
						BillNo: "B-7", ActualPcs: intPtr(38), DeliveryDate: "2024-01-20",
						PartyName: "Acme Textiles", OrderID: 11, GroundColorName: "Red", BeamColorName: "Black",
					},
					{
						Date: "2024-01-05", DesNo: "D-102", Quality: "Silk 60", SetsPcs: 40,
						Rate: decimal.RequireFromString("12.50"),
						PartyName: "Acme Textiles", OrderID: 11, GroundColorName: "Blue", BeamColorName: "White",
					},
				},
				TotalRemainingPieces: 40,
				TotalAllocatedPieces: 40,
				TotalValue:           decimal.RequireFromString("1000.00"),
			},
			{
				PartyID:   2,
				PartyName: "Beta Mills",
				Items: []textileapi.PartywiseDetailItem{
					{
						Date: "2024-02-01", DesNo: "B-1", Quality: "Cotton 40", SetsPcs: 24,
						Rate: decimal.RequireFromString("8.25"),
						PartyName: "Beta Mills", OrderID: 12, GroundColorName: "Green", BeamColorName: "Black",
					},
				},
				TotalRemainingPieces: 24,
				TotalAllocatedPieces: 0,
				TotalValue:           decimal.RequireFromString("198.00"),
			},
		},
		TotalParties:     2,
		GrandTotalPieces: 104,
	}
}

// SampleRegisterRows returns n register rows; every two rows share a lot
func SampleRegisterRows(prefix string, n int) []textileapi.LotRegisterItem {
	rows := make([]textileapi.LotRegisterItem, 0, n)
	for i := 0; i < n; i++ {
		lotID := 1000 + i/2
		rows = append(rows, textileapi.LotRegisterItem{
			LotDate:         "2024-03-01",
			LotNo:           fmt.Sprintf("%s-L%d", prefix, lotID),
			PartyName:       "Acme Textiles",
			DesignNo:        fmt.Sprintf("%s-D%d", prefix, i),
			Quality:         "Silk 60",
			TotalPieces:     10,
			Status:          "PENDING",
			LotID:           intPtr(lotID),
			AllocationID:    intPtr(5000 + i),
			GroundColorName: "Red",
			OrderID:         11,
			PartyID:         1,
			QualityID:       3,
		})
	}
	return rows
}

// SampleAllocation returns one available, one fully allocated and one
// over-allocated item.
func SampleAllocation() []textileapi.OrderItemStatus {
	return []textileapi.OrderItemStatus{
		{
			ID: 1, OrderID: 11, OrderNumber: "ORD-0011", DesignNumber: "D-101", GroundColorName: "Red",
			BeamColorID: 1, BeamColorName: "Black", BeamColorCode: "BK", PartyName: "Acme Textiles", QualityName: "Silk 60",
			TotalPieces: 100, AllocatedPieces: 40, RemainingPieces: 60,
			RatePerPiece: decimal.NewNullDecimal(decimal.RequireFromString("12.50")),
		},
		{
			ID: 2, OrderID: 11, OrderNumber: "ORD-0011", DesignNumber: "D-102", GroundColorName: "Blue",
			BeamColorID: 2, BeamColorName: "White", BeamColorCode: "WH", PartyName: "Acme Textiles", QualityName: "Silk 60",
			TotalPieces: 50, AllocatedPieces: 50, RemainingPieces: 0,
		},
		{
			ID: 3, OrderID: 12, OrderNumber: "ORD-0012", DesignNumber: "B-1", GroundColorName: "Green",
			BeamColorID: 1, BeamColorName: "Black", BeamColorCode: "BK", PartyName: "Beta Mills", QualityName: "Cotton 40",
			TotalPieces: 30, AllocatedPieces: 35, RemainingPieces: -5,
		},
	}
}
