package textileapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListOrders 订单分页列表
func (c *Client) ListOrders(ctx context.Context, page, pageSize int) (*OrderList, error) {
	var out OrderList
	if err := c.doRequest(ctx, http.MethodGet, "/orders/", pageQuery(page, pageSize), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchOrders 搜索订单
func (c *Client) SearchOrders(ctx context.Context, q string, limit int) (*OrderSearchResult, error) {
	if len([]rune(q)) < 2 {
		return nil, fmt.Errorf("%w: search query must have at least 2 characters", ErrInvalidRequest)
	}
	query := url.Values{}
	query.Set("q", q)
	if limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	var out OrderSearchResult
	if err := c.doRequest(ctx, http.MethodGet, "/orders/search/", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOrder 获取订单详情
func (c *Client) GetOrder(ctx context.Context, id int) (*Order, error) {
	var out Order
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateOrder 创建订单
func (c *Client) CreateOrder(ctx context.Context, req *OrderCreate) (*Order, error) {
	req.Normalize()
	if err := Validate(req); err != nil {
		return nil, err
	}
	var out Order
	if err := c.doRequest(ctx, http.MethodPost, "/orders/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrder 更新订单
func (c *Client) UpdateOrder(ctx context.Context, id int, req *OrderUpdate) (*Order, error) {
	if req.DesignNumbers != nil {
		req.DesignNumbers = normalizeDesignNumbers(req.DesignNumbers)
	}
	if err := Validate(req); err != nil {
		return nil, err
	}
	var out Order
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteOrder 删除订单
func (c *Client) DeleteOrder(ctx context.Context, id int) error {
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d", id), nil, nil, nil)
}

// PreviewBeams 保存订单前计算经轴件数
func (c *Client) PreviewBeams(ctx context.Context, req *BeamPreviewRequest) (*BeamPreview, error) {
	req.DesignNumbers = normalizeDesignNumbers(req.DesignNumbers)
	if err := Validate(req); err != nil {
		return nil, err
	}
	var out BeamPreview
	if err := c.doRequest(ctx, http.MethodPost, "/orders/preview/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BeamDetails 订单经轴明细
func (c *Client) BeamDetails(ctx context.Context) ([]BeamDetail, error) {
	var out []BeamDetail
	if err := c.doRequest(ctx, http.MethodGet, "/orders/beam-details", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
