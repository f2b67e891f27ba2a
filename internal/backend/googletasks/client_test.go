package googletasks_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"

	"tasktracker/internal/backend/googletasks"
)

// fakeAPI serves the handful of Tasks API routes the client uses.
type fakeAPI struct {
	mu      sync.Mutex
	lists   string
	tasks   map[string]string // page token -> response body
	created []map[string]interface{}
	deny    bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	if f.deny {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":{"code":403,"message":"forbidden"}}`)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/tasks/v1/users/@me/lists":
		io.WriteString(w, f.lists)
	case r.Method == http.MethodGet && r.URL.Path == "/tasks/v1/users/@me/lists/@default":
		io.WriteString(w, `{"id":"real-default","title":"My Tasks"}`)
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/tasks"):
		if r.URL.Query().Get("showCompleted") != "false" {
			http.Error(w, "expected showCompleted=false", http.StatusBadRequest)
			return
		}
		io.WriteString(w, f.tasks[r.URL.Query().Get("pageToken")])
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/tasks"):
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		f.created = append(f.created, body)
		io.WriteString(w, `{"id":"new"}`)
	default:
		http.NotFound(w, r)
	}
}

func newClient(t *testing.T, api *fakeAPI) *googletasks.Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := googletasks.NewWithHTTPClient(context.Background(), srv.Client(), option.WithEndpoint(srv.URL+"/"))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func TestClient_DefaultList(t *testing.T) {
	c := newClient(t, &fakeAPI{})

	list, err := c.DefaultList(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.ID != googletasks.DefaultListID || list.Title != "My Tasks" || !list.IsDefault {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestClient_ResolveList(t *testing.T) {
	api := &fakeAPI{lists: `{"items":[{"id":"l1","title":"Work"},{"id":"l2","title":"Home"},{"id":"l3","title":" home "}]}`}
	c := newClient(t, api)
	ctx := context.Background()

	list, err := c.ResolveList(ctx, "  WORK ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.ID != "l1" {
		t.Errorf("expected l1, got %+v", list)
	}

	if _, err := c.ResolveList(ctx, "Garden"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := c.ResolveList(ctx, "home"); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected ambiguous, got %v", err)
	}
}

func TestClient_ListOpenTasksFollowsPages(t *testing.T) {
	api := &fakeAPI{tasks: map[string]string{
		"":   `{"items":[{"id":"a","title":"First","status":"needsAction"}],"nextPageToken":"p2"}`,
		"p2": `{"items":[{"id":"b","title":"Second","notes":"n","status":"needsAction"}]}`,
	}}
	c := newClient(t, api)

	got, err := c.ListOpenTasks(context.Background(), "l1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Title != "First" || got[1].Notes != "n" {
		t.Errorf("unexpected tasks: %+v", got)
	}
}

func TestClient_CreateTask(t *testing.T) {
	api := &fakeAPI{}
	c := newClient(t, api)

	if err := c.CreateTask(context.Background(), "l1", "Buy milk", "two litres"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(api.created) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(api.created))
	}
	if api.created[0]["title"] != "Buy milk" || api.created[0]["notes"] != "two litres" {
		t.Errorf("unexpected body: %v", api.created[0])
	}
}

func TestClient_AuthErrorIsWrapped(t *testing.T) {
	c := newClient(t, &fakeAPI{deny: true})

	_, err := c.DefaultList(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "run: tasktracker login") {
		t.Errorf("expected login hint, got %v", err)
	}
}
