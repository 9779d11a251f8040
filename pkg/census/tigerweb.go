package census

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// tigerWebResponse is the JSON response from a MapServer layer query. ArcGIS
// reports failures inside a 200 response via the error object.
type tigerWebResponse struct {
	Features []struct {
		Attributes blockGroupAttrs `json:"attributes"`
	} `json:"features"`
	ExceededTransferLimit bool `json:"exceededTransferLimit"`
	Error                 *struct {
		Code    int      `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}

// BlockGroupsNear returns the block groups whose shapes intersect the circle
// described by p.
func (c *Client) BlockGroupsNear(ctx context.Context, p Params) ([]BlockGroup, error) {
	endpoint := fmt.Sprintf("%s/%d/query", c.tigerWebURL, c.tigerWebLayer)
	body, err := c.get(ctx, serviceTigerWeb, endpoint, p.TigerWebValues())
	if err != nil {
		return nil, err
	}
	return parseTigerWebResponse(body)
}

func parseTigerWebResponse(body []byte) ([]BlockGroup, error) {
	var resp tigerWebResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, parseErrorf("tigerweb: decode response: %v", err)
	}

	if resp.Error != nil {
		status := resp.Error.Code
		if status == 0 {
			status = http.StatusBadRequest
		}
		msg := resp.Error.Message
		if len(resp.Error.Details) > 0 {
			msg += ": " + joinNonEmpty(resp.Error.Details, "; ")
		}
		return nil, &APIError{Service: serviceTigerWeb, StatusCode: status, Message: msg}
	}
	if resp.ExceededTransferLimit {
		return nil, &APIError{
			Service:    serviceTigerWeb,
			StatusCode: http.StatusRequestEntityTooLarge,
			Message:    "too many block groups within radius; use a smaller radius",
		}
	}

	groups := make([]BlockGroup, 0, len(resp.Features))
	for _, f := range resp.Features {
		bg, err := f.Attributes.toBlockGroup(serviceTigerWeb)
		if err != nil {
			return nil, err
		}
		groups = append(groups, bg)
	}
	return groups, nil
}
