package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lotas/arxivgruppen/internal/group"
	"nhooyr.io/websocket"
)

func dialTest(t *testing.T) (*Server, *websocket.Conn, context.Context) {
	t.Helper()
	srv := New(0)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })

	return srv, conn, ctx
}

func TestServerQueuesEvents(t *testing.T) {
	srv, conn, ctx := dialTest(t)

	ev := IncomingMsg{Type: "pageLoaded", TabID: 7, URL: "https://arxiv.org/abs/2401.12345"}
	data, _ := json.Marshal(ev)
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case msg := <-srv.Events():
		if msg.Type != "pageLoaded" || msg.TabID != 7 {
			t.Errorf("got %+v", msg)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

// runExtension answers every incoming command with the given responder.
func runExtension(ctx context.Context, conn *websocket.Conn, respond func(OutgoingMsg) IncomingMsg) {
	go func() {
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var cmd OutgoingMsg
			if err := json.Unmarshal(data, &cmd); err != nil {
				continue
			}
			resp := respond(cmd)
			resp.ID = cmd.ID
			out, _ := json.Marshal(resp)
			conn.Write(ctx, websocket.MessageText, out)
		}
	}()
}

func ok() *bool {
	v := true
	return &v
}

func notOK() *bool {
	v := false
	return &v
}

func TestCreateGroupRoundTrip(t *testing.T) {
	srv, conn, ctx := dialTest(t)

	runExtension(ctx, conn, func(cmd OutgoingMsg) IncomingMsg {
		if cmd.Action != "createGroup" {
			return IncomingMsg{OK: notOK(), Error: "unexpected action"}
		}
		return IncomingMsg{OK: ok(), GroupID: 314}
	})

	gid, err := srv.CreateGroup(ctx, []int{1, 2})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if gid != 314 {
		t.Errorf("group id = %d, want 314", gid)
	}
}

func TestAddToGroupMapsNoGroup(t *testing.T) {
	srv, conn, ctx := dialTest(t)

	runExtension(ctx, conn, func(cmd OutgoingMsg) IncomingMsg {
		return IncomingMsg{OK: notOK(), Error: "No such group: 9"}
	})

	err := srv.AddToGroup(ctx, 9, []int{1})
	if !errors.Is(err, group.ErrNoGroup) {
		t.Errorf("err = %v, want group.ErrNoGroup", err)
	}
}

func TestTabURL(t *testing.T) {
	srv, conn, ctx := dialTest(t)

	runExtension(ctx, conn, func(cmd OutgoingMsg) IncomingMsg {
		return IncomingMsg{OK: ok(), URL: "https://arxiv.org/abs/2401.12345"}
	})

	url, err := srv.TabURL(ctx, 7)
	if err != nil {
		t.Fatalf("TabURL: %v", err)
	}
	if url != "https://arxiv.org/abs/2401.12345" {
		t.Errorf("url = %q", url)
	}
}

func TestDuplicateResponseKeepsLoopAlive(t *testing.T) {
	srv, conn, ctx := dialTest(t)

	// A misbehaving extension answers every command twice.
	runExtension(ctx, conn, func(cmd OutgoingMsg) IncomingMsg {
		resp := IncomingMsg{OK: ok(), GroupID: 11}
		resp.ID = cmd.ID
		out, _ := json.Marshal(resp)
		conn.Write(ctx, websocket.MessageText, out)
		return resp
	})

	gid, err := srv.CreateGroup(ctx, []int{1})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if gid != 11 {
		t.Errorf("group id = %d, want 11", gid)
	}

	// The read loop must survive the extra copy: a follow-up command
	// still round-trips before the context deadline.
	if _, err := srv.CreateGroup(ctx, []int{2}); err != nil {
		t.Fatalf("CreateGroup after duplicate: %v", err)
	}
}

func TestCallWithoutConnection(t *testing.T) {
	srv := New(0)
	_, err := srv.CreateGroup(context.Background(), []int{1})
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
}

func TestParseSnapshot(t *testing.T) {
	raw := `[{"id":1,"url":"https://arxiv.org/abs/2401.12345","title":"A Paper"},
	         {"id":2,"url":"https://example.com","title":"Other"}]`
	msg := IncomingMsg{Type: "snapshot", Tabs: json.RawMessage(raw)}

	tabs, err := ParseSnapshot(msg)
	if err != nil {
		t.Fatalf("ParseSnapshot: %v", err)
	}
	if len(tabs) != 2 {
		t.Fatalf("got %d tabs, want 2", len(tabs))
	}
	if tabs[0].TabID != 1 || tabs[0].URL != "https://arxiv.org/abs/2401.12345" {
		t.Errorf("tab 0 = %+v", tabs[0])
	}
}

func TestParsePageLoad(t *testing.T) {
	msg := IncomingMsg{
		Type: "pageLoaded", TabID: 3,
		URL:      "https://arxiv.org/abs/2401.12345",
		Title:    "A Paper",
		Authors:  "Alice Johnson, Bob Smith",
		Category: "Machine Learning (cs.LG)",
	}
	ev := ParsePageLoad(msg)
	if ev.TabID != 3 || ev.Authors != "Alice Johnson, Bob Smith" {
		t.Errorf("got %+v", ev)
	}
}
