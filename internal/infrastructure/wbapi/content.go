package wbapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type mediaSaveRequest struct {
	NmID int64    `json:"nmId"`
	Data []string `json:"data"`
}

// SetPrimaryImage swaps the listing's title image. The content API treats
// the first entry of the media list as the primary one
func (c *Client) SetPrimaryImage(ctx context.Context, accountID string, listingID int64, imageRef string) error {
	token, err := c.token(accountID)
	if err != nil {
		return err
	}

	requestBodyBytes, err := json.Marshal(mediaSaveRequest{
		NmID: listingID,
		Data: []string{imageRef},
	})
	if err != nil {
		return err
	}

	_, err = c.doWithRetry(ctx, accountID, func() (*http.Request, error) {
		request, err := http.NewRequest("POST", fmt.Sprintf("%s/content/v3/media/save", c.contentBaseURL), bytes.NewBuffer(requestBodyBytes))
		if err != nil {
			return nil, err
		}
		request.Header.Set("Content-Type", "application/json")
		request.Header.Set("Authorization", token)
		return request, nil
	})
	return err
}
