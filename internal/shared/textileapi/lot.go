package textileapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListLots 批次分页列表
func (c *Client) ListLots(ctx context.Context, page, pageSize int) (*LotList, error) {
	var out LotList
	if err := c.doRequest(ctx, http.MethodGet, "/lots/", pageQuery(page, pageSize), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLot 获取批次
func (c *Client) GetLot(ctx context.Context, id int) (*Lot, error) {
	var out Lot
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/lots/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateLot 创建批次及分配
func (c *Client) CreateLot(ctx context.Context, req *LotCreate) (*Lot, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var out Lot
	if err := c.doRequest(ctx, http.MethodPost, "/lots/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLot 更新批次
func (c *Client) UpdateLot(ctx context.Context, id int, req *LotUpdate) (*Lot, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var out Lot
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/lots/%d", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteLot 删除批次
func (c *Client) DeleteLot(ctx context.Context, id int) error {
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/lots/%d", id), nil, nil, nil)
}

// PatchLotField 单字段更新（行内编辑），value为空表示清空
func (c *Client) PatchLotField(ctx context.Context, lotID int, field, value string) (*ActionResult, error) {
	if !IsPatchableLotField(field) {
		return nil, fmt.Errorf("%w: field %q cannot be updated", ErrInvalidRequest, field)
	}
	query := url.Values{}
	query.Set("value", value)
	var out ActionResult
	path := fmt.Sprintf("/lots/%d/field/%s", lotID, url.PathEscape(field))
	if err := c.doRequest(ctx, http.MethodPatch, path, query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateLotFromRegister 在登记表录入批次号时创建批次
func (c *Client) CreateLotFromRegister(ctx context.Context, req *CreateFromRegisterRequest) (*ActionResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var out ActionResult
	if err := c.doRequest(ctx, http.MethodPost, "/lots/create-from-register", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllocationStatus 订单项分配状态，orderID为nil时返回全部
func (c *Client) AllocationStatus(ctx context.Context, orderID *int) ([]OrderItemStatus, error) {
	query := url.Values{}
	if orderID != nil {
		query.Set("order_id", fmt.Sprint(*orderID))
	}
	var out []OrderItemStatus
	if err := c.doRequest(ctx, http.MethodGet, "/lots/allocation/status", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AvailableAllocations 可分配的订单项
func (c *Client) AvailableAllocations(ctx context.Context, partyID, qualityID *int) ([]OrderItemStatus, error) {
	query := url.Values{}
	if partyID != nil {
		query.Set("party_id", fmt.Sprint(*partyID))
	}
	if qualityID != nil {
		query.Set("quality_id", fmt.Sprint(*qualityID))
	}
	var out []OrderItemStatus
	if err := c.doRequest(ctx, http.MethodGet, "/lots/allocation/available", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// InitializeAllocation 订单创建后初始化订单项分配状态
func (c *Client) InitializeAllocation(ctx context.Context, orderID int) error {
	return c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/lots/allocation/initialize/%d", orderID), nil, nil, nil)
}
