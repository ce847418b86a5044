package util

import (
	"net/http"
	"net/url"
	"testing"
)

func requestTo(t *testing.T, rawURL string) *http.Request {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("Bad test URL %q: %v", rawURL, err)
	}
	return &http.Request{URL: u}
}

func TestNewProxyFunc_ExplicitProxies(t *testing.T) {
	fn := NewProxyFunc("http://proxy:3128", "http://sproxy:3128", "")

	got, err := fn(requestTo(t, "http://runtime.local/api/generate"))
	if err != nil {
		t.Fatalf("Proxy func failed: %v", err)
	}
	if got == nil || got.Host != "proxy:3128" {
		t.Errorf("HTTP request should use the http proxy, got %v", got)
	}

	got, err = fn(requestTo(t, "https://runtime.local/api/generate"))
	if err != nil {
		t.Fatalf("Proxy func failed: %v", err)
	}
	if got == nil || got.Host != "sproxy:3128" {
		t.Errorf("HTTPS request should use the https proxy, got %v", got)
	}
}

func TestNewProxyFunc_NoProxyList(t *testing.T) {
	fn := NewProxyFunc("http://proxy:3128", "", "localhost, internal.example.com")

	for _, host := range []string{"http://localhost:11434", "http://api.internal.example.com"} {
		got, err := fn(requestTo(t, host))
		if err != nil {
			t.Fatalf("Proxy func failed: %v", err)
		}
		if got != nil {
			t.Errorf("%s should bypass the proxy, got %v", host, got)
		}
	}

	got, err := fn(requestTo(t, "http://example.org"))
	if err != nil {
		t.Fatalf("Proxy func failed: %v", err)
	}
	if got == nil {
		t.Error("Unlisted host should still use the proxy")
	}
}

func TestMatchesNoProxy(t *testing.T) {
	if matchesNoProxy("anything", "") {
		t.Error("Empty list must match nothing")
	}
	if !matchesNoProxy("a.corp.example", ".corp.example") {
		t.Error("Leading-dot entries should match as suffixes")
	}
	if matchesNoProxy("notcorp.example", "corp.example") {
		t.Error("Suffix match must respect label boundaries")
	}
}
