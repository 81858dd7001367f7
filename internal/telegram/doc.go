// Package telegram is a minimal Telegram Bot API client covering the
// calls the channel scanner and asset proxy need.
//
// The Bot API offers no direct "fetch channel message N" call, so
// MessageByID forwards the target message to a probe chat the bot
// controls, reads the full payload off the forwarded copy, and deletes
// the copy immediately. The source channel is never modified.
//
// Covered calls:
//   - getChat (pinned message discovery)
//   - forwardMessage + deleteMessage (message probe)
//   - getFile (resolving a file id to a download path)
package telegram
