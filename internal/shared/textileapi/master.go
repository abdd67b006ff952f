package textileapi

import (
	"context"
	"net/http"
)

// DropdownData 表单下拉数据（客户、颜色、品质、裁剪）
func (c *Client) DropdownData(ctx context.Context) (*DropdownData, error) {
	var out DropdownData
	if err := c.doRequest(ctx, http.MethodGet, "/master/dropdown-data", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
