package textileapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListParties 客户分页列表
func (c *Client) ListParties(ctx context.Context, page, pageSize int) (*PartyList, error) {
	var out PartyList
	if err := c.doRequest(ctx, http.MethodGet, "/parties/", pageQuery(page, pageSize), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchParties 按名称/联系方式搜索客户，q至少2个字符
func (c *Client) SearchParties(ctx context.Context, q string, limit int) (*PartySearchResult, error) {
	if len([]rune(q)) < 2 {
		return nil, fmt.Errorf("%w: search query must have at least 2 characters", ErrInvalidRequest)
	}
	query := url.Values{}
	query.Set("q", q)
	if limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	var out PartySearchResult
	if err := c.doRequest(ctx, http.MethodGet, "/parties/search/", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetParty 获取客户
func (c *Client) GetParty(ctx context.Context, id int) (*Party, error) {
	var out Party
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/parties/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateParty 创建客户
func (c *Client) CreateParty(ctx context.Context, req *PartyCreate) (*Party, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var out Party
	if err := c.doRequest(ctx, http.MethodPost, "/parties/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateParty 更新客户
func (c *Client) UpdateParty(ctx context.Context, id int, req *PartyUpdate) (*Party, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	var out Party
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/parties/%d", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteParty 删除客户（后端软删除）
func (c *Client) DeleteParty(ctx context.Context, id int) error {
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/parties/%d", id), nil, nil, nil)
}
