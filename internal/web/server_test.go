package web_test

import (
	"context"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"tasktracker/internal/storage"
	"tasktracker/internal/task"
	"tasktracker/internal/web"
)

func newServer(t *testing.T) (*web.Server, *storage.File, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	f := storage.New(filepath.Join(t.TempDir(), "tasks.json"), logger)
	return web.New(f, logger), f, hook
}

func get(t *testing.T, h http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func post(t *testing.T, h http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func assertPage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != web.ContentType {
		t.Errorf("expected content type %q, got %q", web.ContentType, ct)
	}
	return rec.Body.String()
}

func seed(t *testing.T, f *storage.File, tasks ...task.Task) {
	t.Helper()
	if err := f.Save(task.List{Tasks: tasks}); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestGet_Empty(t *testing.T) {
	s, _, _ := newServer(t)

	body := assertPage(t, get(t, s))
	if !strings.Contains(body, "No tasks yet.") {
		t.Errorf("expected empty placeholder, got:\n%s", body)
	}
	if strings.Contains(body, `class="notice"`) {
		t.Error("GET must not render a notice")
	}
	if !strings.Contains(body, `name="action" value="add"`) || !strings.Contains(body, `name="action" value="clear"`) {
		t.Error("expected add and clear forms")
	}
}

func TestGet_RendersTasks(t *testing.T) {
	s, f, _ := newServer(t)
	desc := "two litres"
	seed(t, f,
		task.Task{ID: 1, Title: "Buy milk", Description: &desc},
		task.Task{ID: 2, Title: "<b>bold</b> & co", Done: true},
	)

	body := assertPage(t, get(t, s))

	if strings.Contains(body, "No tasks yet.") {
		t.Error("placeholder rendered for non-empty list")
	}
	if !strings.Contains(body, `data-status="todo"`) || !strings.Contains(body, `data-status="done"`) {
		t.Error("expected both todo and done items")
	}
	if !strings.Contains(body, "[ ]") || !strings.Contains(body, "[x]") {
		t.Error("expected both toggle states")
	}
	if !strings.Contains(body, "two litres") {
		t.Error("expected description to be rendered")
	}
	if strings.Contains(body, "<b>bold</b>") {
		t.Error("title must be HTML-escaped")
	}
	if !strings.Contains(body, "&lt;b&gt;bold&lt;/b&gt; &amp; co") {
		t.Errorf("expected escaped title, got:\n%s", body)
	}
	if strings.Index(body, "Buy milk") > strings.Index(body, "bold") {
		t.Error("tasks must render in stored order")
	}
}

func TestPost_Add(t *testing.T) {
	s, f, _ := newServer(t)

	body := assertPage(t, post(t, s, url.Values{
		"action":      {"add"},
		"title":       {"  Write docs "},
		"description": {"README first"},
	}))

	if !strings.Contains(body, web.NoticeAdded) {
		t.Errorf("expected notice %q", web.NoticeAdded)
	}
	if !strings.Contains(body, "Write docs") {
		t.Error("expected new task in page")
	}
	tasks := f.Load().Tasks
	if len(tasks) != 1 {
		t.Fatalf("expected 1 stored task, got %d", len(tasks))
	}
	if tasks[0].ID != 1 || tasks[0].Title != "Write docs" || tasks[0].Done {
		t.Errorf("unexpected task %+v", tasks[0])
	}
	if tasks[0].DescriptionText() != "README first" {
		t.Errorf("expected description %q, got %q", "README first", tasks[0].DescriptionText())
	}
}

func TestPost_AddWithoutDescription(t *testing.T) {
	s, f, _ := newServer(t)

	post(t, s, url.Values{"action": {"add"}, "title": {"Plain"}, "description": {"   "}})

	tasks := f.Load().Tasks
	if len(tasks) != 1 || tasks[0].HasDescription() {
		t.Errorf("expected one task without description, got %+v", tasks)
	}
}

func TestPost_AddEmptyTitle(t *testing.T) {
	s, f, _ := newServer(t)

	body := assertPage(t, post(t, s, url.Values{"action": {"add"}, "title": {"   "}}))

	if !strings.Contains(body, web.NoticeEmptyTitle) {
		t.Errorf("expected notice %q", web.NoticeEmptyTitle)
	}
	if !strings.Contains(body, "No tasks yet.") {
		t.Error("expected list to stay empty")
	}
	if len(f.Load().Tasks) != 0 {
		t.Error("empty title must not mutate the store")
	}
}

func TestPost_AddNoIDsLeft(t *testing.T) {
	s, f, _ := newServer(t)
	if err := f.Save(task.List{Tasks: []task.Task{{ID: 1, Title: "keep"}}, LastID: math.MaxInt}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := assertPage(t, post(t, s, url.Values{"action": {"add"}, "title": {"one more"}}))

	if !strings.Contains(body, web.NoticeNoIDsLeft) {
		t.Errorf("expected notice %q", web.NoticeNoIDsLeft)
	}
	if strings.Contains(body, web.NoticeEmptyTitle) {
		t.Error("exhausted ids must not be reported as an empty title")
	}
	tasks := f.Load().Tasks
	if len(tasks) != 1 || tasks[0].Title != "keep" {
		t.Errorf("store must be unchanged, got %+v", tasks)
	}
}

func TestPost_Toggle(t *testing.T) {
	s, f, _ := newServer(t)
	seed(t, f, task.Task{ID: 1, Title: "a"}, task.Task{ID: 2, Title: "b"})

	body := assertPage(t, post(t, s, url.Values{"action": {"toggle"}, "id": {"2"}}))

	if !strings.Contains(body, "Toggled task 2.") {
		t.Errorf("expected toggle notice, got:\n%s", body)
	}
	tasks := f.Load().Tasks
	if tasks[0].Done || !tasks[1].Done {
		t.Errorf("expected only task 2 done, got %+v", tasks)
	}

	post(t, s, url.Values{"action": {"toggle"}, "id": {"2"}})
	if f.Load().Tasks[1].Done {
		t.Error("second toggle must restore the original state")
	}
}

func TestPost_ToggleErrors(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		notice string
	}{
		{"unknown id", "99", "Task with id 99 not found."},
		{"not a number", "abc", web.NoticeInvalidID},
		{"missing", "", web.NoticeInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, f, _ := newServer(t)
			seed(t, f, task.Task{ID: 1, Title: "a"})

			body := assertPage(t, post(t, s, url.Values{"action": {"toggle"}, "id": {tt.id}}))

			if !strings.Contains(body, tt.notice) {
				t.Errorf("expected notice %q, got:\n%s", tt.notice, body)
			}
			if f.Load().Tasks[0].Done {
				t.Error("failed toggle must not mutate the store")
			}
		})
	}
}

func TestPost_Clear(t *testing.T) {
	s, f, _ := newServer(t)
	seed(t, f, task.Task{ID: 1, Title: "a"})

	body := assertPage(t, post(t, s, url.Values{"action": {"clear"}}))

	if !strings.Contains(body, web.NoticeCleared) {
		t.Errorf("expected notice %q", web.NoticeCleared)
	}
	if !strings.Contains(body, "No tasks yet.") {
		t.Error("expected empty list after clear")
	}
}

func TestPost_UnknownAction(t *testing.T) {
	s, f, _ := newServer(t)
	seed(t, f, task.Task{ID: 1, Title: "a"})

	for _, action := range []string{"", "delete"} {
		body := assertPage(t, post(t, s, url.Values{"action": {action}}))
		if !strings.Contains(body, web.NoticeUnknown) {
			t.Errorf("action %q: expected notice %q", action, web.NoticeUnknown)
		}
	}
	if len(f.Load().Tasks) != 1 {
		t.Error("unknown action must not mutate the store")
	}
}

// failingStore serves a fixed list and refuses to write.
type failingStore struct {
	list task.List
}

func (s *failingStore) Load() task.List {
	return task.List{Tasks: append([]task.Task(nil), s.list.Tasks...)}
}
func (s *failingStore) Save(task.List) error { return errors.New("disk full") }
func (s *failingStore) Clear() error         { return errors.New("permission denied") }

func TestPost_SaveFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	store := &failingStore{list: task.List{Tasks: []task.Task{{ID: 1, Title: "a"}}}}
	s := web.New(store, logger)

	for _, form := range []url.Values{
		{"action": {"add"}, "title": {"b"}},
		{"action": {"toggle"}, "id": {"1"}},
		{"action": {"clear"}},
	} {
		hook.Reset()
		body := assertPage(t, post(t, s, form))
		if !strings.Contains(body, web.NoticeSaveFailed) {
			t.Errorf("%v: expected notice %q", form, web.NoticeSaveFailed)
		}
		var errs int
		for _, e := range hook.AllEntries() {
			if e.Level == log.ErrorLevel {
				errs++
			}
		}
		if errs != 1 {
			t.Errorf("%v: expected 1 error log entry, got %d", form, errs)
		}
	}
}

func TestRequestID(t *testing.T) {
	s, _, hook := newServer(t)

	rec := get(t, s)
	id := rec.Header().Get("X-Request-Id")
	if len(id) != 20 {
		t.Errorf("expected xid request id, got %q", id)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Message != "request" {
		t.Fatalf("expected request log entry, got %+v", entry)
	}
	if entry.Level != log.DebugLevel {
		t.Errorf("expected request line at debug level, got %v", entry.Level)
	}
	if entry.Data["req_id"] != id {
		t.Errorf("expected req_id %q in log, got %v", id, entry.Data["req_id"])
	}
	if entry.Data["status"] != http.StatusOK {
		t.Errorf("expected status 200 in log, got %v", entry.Data["status"])
	}
}

func TestConcurrentAdds(t *testing.T) {
	s, f, _ := newServer(t)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			post(t, s, url.Values{"action": {"add"}, "title": {"task"}})
		}()
	}
	wg.Wait()

	tasks := f.Load().Tasks
	if len(tasks) != n {
		t.Fatalf("expected %d tasks, got %d", n, len(tasks))
	}
	seen := map[int]bool{}
	for _, tk := range tasks {
		if seen[tk.ID] {
			t.Errorf("duplicate id %d", tk.ID)
		}
		seen[tk.ID] = true
	}
}

func TestServe_Shutdown(t *testing.T) {
	s, _, _ := newServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "Task Tracker") {
		t.Errorf("unexpected body:\n%s", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(web.ShutdownTimeout + time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
