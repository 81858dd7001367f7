package telegram

import "github.com/goccy/go-json"

// apiResponse is the envelope every Bot API call returns.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

// Chat is a Telegram chat or channel.
type Chat struct {
	ID            int64    `json:"id"`
	Type          string   `json:"type"`
	Username      string   `json:"username"`
	Title         string   `json:"title"`
	PinnedMessage *Message `json:"pinned_message,omitempty"`
}

// Message is a channel post or a forwarded copy of one.
//
// When obtained through the forward probe, ForwardFromChat identifies
// the original channel and ForwardFromMessageID the original post id.
type Message struct {
	MessageID            int    `json:"message_id"`
	Date                 int64  `json:"date"`
	Chat                 *Chat  `json:"chat,omitempty"`
	ForwardFromChat      *Chat  `json:"forward_from_chat,omitempty"`
	ForwardFromMessageID int    `json:"forward_from_message_id,omitempty"`
	Audio                *Audio `json:"audio,omitempty"`
	Caption              string `json:"caption,omitempty"`
}

// Audio is an audio attachment on a message.
type Audio struct {
	// FileID retrieves the file contents; it can expire and differ
	// between bots.
	FileID string `json:"file_id"`

	// FileUniqueID is stable for the underlying file across time and
	// bots. It is the deduplication key.
	FileUniqueID string `json:"file_unique_id"`

	// Duration is the audio length in seconds.
	Duration int `json:"duration"`

	Performer string `json:"performer,omitempty"`
	Title     string `json:"title,omitempty"`
	FileName  string `json:"file_name,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`
}

// File is the result of a getFile call.
type File struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
}

// FromChannel reports whether the message originated in the channel
// with the given username. Works on forwarded copies via the forward
// origin fields.
func (m *Message) FromChannel(username string) bool {
	if m.ForwardFromChat != nil {
		return m.ForwardFromChat.Username == username
	}
	return m.Chat != nil && m.Chat.Username == username
}
