package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient("TESTTOKEN", zerolog.Nop(), WithBaseURLs(srv.URL, srv.URL))
	return client, srv
}

func TestChat(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/botTESTTOKEN/getChat") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("chat_id"); got != "@testchannel" {
			t.Errorf("chat_id = %q", got)
		}
		fmt.Fprint(w, `{"ok":true,"result":{"id":-100123,"type":"channel","username":"testchannel","pinned_message":{"message_id":118}}}`)
	}))

	chat, err := client.Chat(context.Background(), "@testchannel")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if chat.Username != "testchannel" {
		t.Errorf("Username = %q", chat.Username)
	}
	if chat.PinnedMessage == nil || chat.PinnedMessage.MessageID != 118 {
		t.Errorf("PinnedMessage = %+v", chat.PinnedMessage)
	}
}

func TestMessageByIDForwardsThenDeletes(t *testing.T) {
	var deleted bool
	var deletedID string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/forwardMessage"):
			q := r.URL.Query()
			if q.Get("from_chat_id") != "@testchannel" || q.Get("message_id") != "42" {
				t.Errorf("forward params = %v", q)
			}
			if q.Get("disable_notification") != "true" {
				t.Error("forward should be silent")
			}
			fmt.Fprint(w, `{"ok":true,"result":{"message_id":9001,"forward_from_chat":{"id":-100123,"username":"testchannel"},"forward_from_message_id":42,"audio":{"file_id":"FID","file_unique_id":"AgAD_u1","duration":182,"performer":"AI Generated","title":"Echo Run"}}}`)
		case strings.Contains(r.URL.Path, "/deleteMessage"):
			deleted = true
			deletedID = r.URL.Query().Get("message_id")
			fmt.Fprint(w, `{"ok":true,"result":true}`)
		default:
			t.Errorf("unexpected call %q", r.URL.Path)
		}
	}))

	msg, err := client.MessageByID(context.Background(), "@testchannel", 555, 42)
	if err != nil {
		t.Fatalf("MessageByID: %v", err)
	}
	if !deleted {
		t.Error("probe copy was not deleted")
	}
	if deletedID != "9001" {
		t.Errorf("deleted message_id = %q, want forwarded copy id 9001", deletedID)
	}
	if msg.Audio == nil || msg.Audio.FileUniqueID != "AgAD_u1" {
		t.Errorf("Audio = %+v", msg.Audio)
	}
	if !msg.FromChannel("testchannel") {
		t.Error("FromChannel should match forward origin")
	}
	if msg.FromChannel("otherchannel") {
		t.Error("FromChannel matched wrong channel")
	}
}

func TestMessageByIDNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"Bad Request: message to forward not found"}`)
	}))

	_, err := client.MessageByID(context.Background(), "@testchannel", 555, 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMessageByIDDeleteFailureIgnored(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/deleteMessage") {
			fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"message to delete not found"}`)
			return
		}
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":9002,"forward_from_message_id":43}}`)
	}))

	msg, err := client.MessageByID(context.Background(), "@testchannel", 555, 43)
	if err != nil {
		t.Fatalf("MessageByID should tolerate delete failure, got %v", err)
	}
	if msg.ForwardFromMessageID != 43 {
		t.Errorf("ForwardFromMessageID = %d", msg.ForwardFromMessageID)
	}
}

func TestFileURL(t *testing.T) {
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("file_id"); got != "FID" {
			t.Errorf("file_id = %q", got)
		}
		fmt.Fprint(w, `{"ok":true,"result":{"file_id":"FID","file_path":"music/file_7.mp3"}}`)
	}))

	u, err := client.FileURL(context.Background(), "FID")
	if err != nil {
		t.Fatalf("FileURL: %v", err)
	}
	want := srv.URL + "/file/botTESTTOKEN/music/file_7.mp3"
	if u != want {
		t.Errorf("FileURL = %q, want %q", u, want)
	}
}

func TestFileURLEmptyPath(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true,"result":{"file_id":"FID"}}`)
	}))

	if _, err := client.FileURL(context.Background(), "FID"); err == nil {
		t.Fatal("expected error for empty file_path")
	}
}
