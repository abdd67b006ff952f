package textileapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// PartywiseDetail 客户明细（红本）报表，partyID为nil时返回全部客户
func (c *Client) PartywiseDetail(ctx context.Context, partyID *int) (*PartywiseReport, error) {
	query := url.Values{}
	if partyID != nil {
		query.Set("party_id", fmt.Sprint(*partyID))
	}
	var out PartywiseReport
	if err := c.doRequest(ctx, http.MethodGet, "/lots/reports/partywise-detail", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LotRegister 批次登记表
func (c *Client) LotRegister(ctx context.Context, q LotRegisterQuery) (*LotRegister, error) {
	query := pageQuery(q.Page, q.PageSize)
	if q.Type != "" {
		query.Set("lot_register_type", q.Type)
	}
	var out LotRegister
	if err := c.doRequest(ctx, http.MethodGet, "/lots/reports/lot-register", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BeamSummaryAllocation 经轴分配汇总
func (c *Client) BeamSummaryAllocation(ctx context.Context) (*BeamSummaryAllocation, error) {
	var out BeamSummaryAllocation
	if err := c.doRequest(ctx, http.MethodGet, "/lots/reports/beam-summary-allocation", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
