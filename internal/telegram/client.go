package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a probed message id does not exist or is
// not accessible to the bot.
var ErrNotFound = errors.New("telegram: message not found")

// Client talks to the Telegram Bot API on behalf of one bot token.
//
// Example usage:
//
//	client := telegram.NewClient(token, log)
//	chat, err := client.Chat(ctx, "@neyrozvuki")
//	msg, err := client.MessageByID(ctx, "@neyrozvuki", probeChatID, 120)
type Client struct {
	token      string
	apiBase    string
	fileBase   string
	httpClient *http.Client
	log        zerolog.Logger
}

// Option adjusts client construction.
type Option func(*Client)

// WithBaseURLs overrides the API and file download endpoints. Used by
// tests pointing the client at a local server.
func WithBaseURLs(apiBase, fileBase string) Option {
	return func(c *Client) {
		c.apiBase = apiBase
		c.fileBase = fileBase
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Bot API client for the given token.
func NewClient(token string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		token:    token,
		apiBase:  "https://api.telegram.org",
		fileBase: "https://api.telegram.org",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("component", "telegram").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call performs one Bot API method call and decodes the result payload
// into out (when out is non-nil).
func (c *Client) call(ctx context.Context, method string, params url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if !envelope.OK {
		if envelope.ErrorCode == http.StatusBadRequest || envelope.ErrorCode == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("%s: api error %d: %s", method, envelope.ErrorCode, envelope.Description)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	return nil
}

// Chat fetches channel metadata, including the currently pinned
// message. chatID may be a numeric id or an @username.
func (c *Client) Chat(ctx context.Context, chatID string) (*Chat, error) {
	params := url.Values{"chat_id": {chatID}}
	var chat Chat
	if err := c.call(ctx, "getChat", params, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// MessageByID retrieves the full payload of channel message messageID.
//
// The message is forwarded to probeChatID without notification, its
// payload captured, and the forwarded copy deleted. Deletion failures
// are logged but not returned; the probe result is already in hand and
// a leftover copy in the probe chat is harmless.
//
// Returns ErrNotFound when the message does not exist (deleted posts
// leave gaps in channel id space, so callers should expect this).
func (c *Client) MessageByID(ctx context.Context, channelID string, probeChatID int64, messageID int) (*Message, error) {
	params := url.Values{
		"chat_id":              {strconv.FormatInt(probeChatID, 10)},
		"from_chat_id":         {channelID},
		"message_id":           {strconv.Itoa(messageID)},
		"disable_notification": {"true"},
	}
	var forwarded Message
	if err := c.call(ctx, "forwardMessage", params, &forwarded); err != nil {
		return nil, err
	}

	del := url.Values{
		"chat_id":    {strconv.FormatInt(probeChatID, 10)},
		"message_id": {strconv.Itoa(forwarded.MessageID)},
	}
	if err := c.call(ctx, "deleteMessage", del, nil); err != nil {
		c.log.Warn().Err(err).Int("messageId", messageID).Msg("failed to delete probe copy")
	}

	if forwarded.ForwardFromMessageID == 0 {
		forwarded.ForwardFromMessageID = messageID
	}
	return &forwarded, nil
}

// FileURL resolves a file id to a direct download URL.
//
// The returned URL embeds the bot token and must never be handed to
// clients; the asset proxy streams through it server-side instead.
func (c *Client) FileURL(ctx context.Context, fileID string) (string, error) {
	params := url.Values{"file_id": {fileID}}
	var file File
	if err := c.call(ctx, "getFile", params, &file); err != nil {
		return "", err
	}
	if file.FilePath == "" {
		return "", fmt.Errorf("getFile: empty file_path for %s", fileID)
	}
	return fmt.Sprintf("%s/file/bot%s/%s", c.fileBase, c.token, file.FilePath), nil
}
