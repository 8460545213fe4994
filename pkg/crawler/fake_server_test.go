package crawler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"coubcrawl/pkg/coub"
	"coubcrawl/pkg/logger"
)

// coubRecord builds a raw timeline record
type coubRecord struct {
	Permalink string
	Title     string
	Type      string
	NSFW      *bool
	RecoubTo  string
	Tags      [][2]string
	Channel   string
}

func (r coubRecord) JSON() json.RawMessage {
	m := map[string]interface{}{
		"permalink":         r.Permalink,
		"title":             r.Title,
		"type":              r.Type,
		"created_at":        "2020-01-02T03:04:05Z",
		"duration":          9.5,
		"not_safe_for_work": r.NSFW,
		"recoub_to":         nil,
		"channel":           map[string]string{"permalink": r.Channel},
	}
	if r.Type == "" {
		m["type"] = "Coub::Simple"
	}
	if r.RecoubTo != "" {
		m["recoub_to"] = map[string]string{"permalink": r.RecoubTo}
	}
	tags := []map[string]string{}
	for _, t := range r.Tags {
		tags = append(tags, map[string]string{"value": t[0], "title": t[1]})
	}
	m["tags"] = tags
	data, _ := json.Marshal(m)
	return data
}

func records(prefix string, n int) []coubRecord {
	out := make([]coubRecord, n)
	for i := range out {
		out[i] = coubRecord{Permalink: fmt.Sprintf("%s%d", prefix, i+1), Title: "t", Channel: "owner"}
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

// timeline is one server-side feed
type timeline struct {
	items []coubRecord
	// omitTotal drops total_pages from responses
	omitTotal bool
	// failPage answers that page with the given status
	failPage   int
	failStatus int
}

// fakeCoub mimics the parts of the Coub API the crawler touches
type fakeCoub struct {
	mu        sync.Mutex
	server    *httptest.Server
	timelines map[string]*timeline // "likes", "favourites", "channel/<name>"
	channels  map[string]int       // HEAD status per channel, missing → 404
	segments  map[string]int       // status per permalink, missing → 200
	token     string               // required cookie token for likes/favourites
	probeFail int                  // status for per_page=1 requests on reserved feeds
	requests  []string
}

func newFakeCoub(t *testing.T) *fakeCoub {
	f := &fakeCoub{
		timelines: map[string]*timeline{},
		channels:  map[string]int{},
		segments:  map[string]int{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeCoub) endpoints() coub.Endpoints {
	return coub.Endpoints{BaseURL: f.server.URL, APIURL: f.server.URL + "/api/v2"}
}

func (f *fakeCoub) client() *coub.Client {
	return coub.NewClient(coub.Options{
		Endpoints: f.endpoints(),
		Logger:    logger.NewNopLogger(),
		Seed:      1,
	})
}

func (f *fakeCoub) addChannel(name string, tl *timeline) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[name] = http.StatusOK
	f.timelines["channel/"+name] = tl
}

func (f *fakeCoub) requestLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeCoub) countRequests(substr string) int {
	n := 0
	for _, r := range f.requestLog() {
		if strings.Contains(r, substr) {
			n++
		}
	}
	return n
}

func (f *fakeCoub) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.RequestURI())

	if r.Method == http.MethodHead {
		status, ok := f.channels[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			status = http.StatusNotFound
		}
		w.WriteHeader(status)
		return
	}

	if strings.HasPrefix(r.URL.Path, "/api/v2/coubs/") {
		permalink := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v2/coubs/"), "/segments")
		if status, ok := f.segments[permalink]; ok && status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		fmt.Fprintf(w, `{"segments":[{"id":"%s"}]}`, permalink)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/api/v2/timeline/")
	tl, ok := f.timelines[key]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	reserved := key == "likes" || key == "favourites"
	if reserved && r.Header.Get("Cookie") != "remember_token="+f.token {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 25
	}

	if reserved && perPage == 1 && f.probeFail != 0 {
		w.WriteHeader(f.probeFail)
		return
	}
	if tl.failPage == page && perPage != 1 {
		w.WriteHeader(tl.failStatus)
		return
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(tl.items) {
		start = len(tl.items)
	}
	if end > len(tl.items) {
		end = len(tl.items)
	}

	coubs := []json.RawMessage{}
	for _, rec := range tl.items[start:end] {
		coubs = append(coubs, rec.JSON())
	}

	body := map[string]interface{}{"page": page, "coubs": coubs}
	if !tl.omitTotal {
		body["total_pages"] = (len(tl.items) + perPage - 1) / perPage
	}
	json.NewEncoder(w).Encode(body)
}
