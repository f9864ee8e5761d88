package line

import (
	"context"
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Client sends replies and fetches profiles through the official Messaging
// API SDK. The protocol format is owned by the platform; nothing outside this
// package touches SDK types.
type Client struct {
	api *messaging_api.MessagingApiAPI
}

// NewClient creates a messaging client for the given channel access token.
func NewClient(channelToken string) (*Client, error) {
	api, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging API client: %w", err)
	}
	return &Client{api: api}, nil
}

// Reply sends one or more text messages in answer to a reply token. Reply
// tokens are single-use and short-lived; a failure here is final, the caller
// only logs it.
func (c *Client) Reply(ctx context.Context, replyToken string, messages ...TextMessage) error {
	payload := make([]messaging_api.MessageInterface, 0, len(messages))
	for _, m := range messages {
		tm := messaging_api.TextMessage{Text: m.Text}
		if len(m.QuickReplies) > 0 {
			items := make([]messaging_api.QuickReplyItem, 0, len(m.QuickReplies))
			for _, qr := range m.QuickReplies {
				items = append(items, messaging_api.QuickReplyItem{
					Type: "action",
					Action: &messaging_api.MessageAction{
						Label: qr.Label,
						Text:  qr.Text,
					},
				})
			}
			tm.QuickReply = &messaging_api.QuickReply{Items: items}
		}
		payload = append(payload, tm)
	}

	if _, err := c.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   payload,
	}); err != nil {
		return fmt.Errorf("reply message failed: %w", err)
	}
	return nil
}

// Profile fetches the optional display attributes of a user. Callers treat a
// failure as "no attributes available", not as a fatal error.
func (c *Client) Profile(ctx context.Context, lineUserID string) (*Profile, error) {
	resp, err := c.api.GetProfile(lineUserID)
	if err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	return &Profile{
		DisplayName:   resp.DisplayName,
		PictureURL:    resp.PictureUrl,
		StatusMessage: resp.StatusMessage,
	}, nil
}
