package devserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPage_ServesCurrentHTML(t *testing.T) {
	s := New("Demo <Scene>", "<p>hello</p>")
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "<p>hello</p>") {
		t.Errorf("page missing rendered content: %s", body)
	}
	if !strings.Contains(string(body), "Demo &lt;Scene&gt;") {
		t.Errorf("title must be escaped: %s", body)
	}

	s.Update("<p>changed</p>")
	resp2, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	body2, _ := io.ReadAll(resp2.Body)
	if !strings.Contains(string(body2), "<p>changed</p>") {
		t.Errorf("page should serve the latest update: %s", body2)
	}
}

func TestPage_UnknownPathIs404(t *testing.T) {
	s := New("x", "")
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestUpdate_BroadcastsToSubscribers(t *testing.T) {
	s := New("x", "")
	ch := s.subscribe()
	defer s.unsubscribe(ch)

	s.Update("<p>a</p>")
	select {
	case got := <-ch:
		if got != "<p>a</p>" {
			t.Errorf("got %q", got)
		}
	default:
		t.Fatal("subscriber did not receive update")
	}

	// A full buffer must not block further updates.
	s.Update("<p>b</p>")
	s.Update("<p>c</p>")
	if got := <-ch; got != "<p>b</p>" {
		t.Errorf("buffered frame = %q", got)
	}
}
