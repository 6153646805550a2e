package httpd

import "testing"

func TestParseRequestValidGETKeepAlive(t *testing.T) {
	raw := "GET /index.html HTTP/1.1\r\n" +
		"Connection: Keep-Alive\r\n" +
		"\r\n"

	req := ParseRequest(raw)
	if !req.IsValid() {
		t.Fatalf("IsValid() = false, reason: %s", req.InvalidReason())
	}
	if req.Method() != MethodGET {
		t.Errorf("Method() = %v, want MethodGET", req.Method())
	}
	if req.HTTPVersion() != VersionHTTP11 {
		t.Errorf("HTTPVersion() = %v, want VersionHTTP11", req.HTTPVersion())
	}
	if req.ResourceURL() != "/index.html" {
		t.Errorf("ResourceURL() = %q, want /index.html", req.ResourceURL())
	}
	if req.ShouldClose() {
		t.Error("ShouldClose() = true with Connection: Keep-Alive, want false")
	}
}

func TestParseRequestDefaultsToClose(t *testing.T) {
	raw := "GET /index.html HTTP/1.1\r\n\r\n"
	req := ParseRequest(raw)
	if !req.IsValid() {
		t.Fatalf("IsValid() = false, reason: %s", req.InvalidReason())
	}
	if !req.ShouldClose() {
		t.Error("ShouldClose() = false with no Connection header, want true")
	}
}

func TestParseRequestHEAD(t *testing.T) {
	raw := "HEAD /page.html HTTP/1.1\r\n\r\n"
	req := ParseRequest(raw)
	if !req.IsValid() {
		t.Fatalf("IsValid() = false, reason: %s", req.InvalidReason())
	}
	if req.Method() != MethodHEAD {
		t.Errorf("Method() = %v, want MethodHEAD", req.Method())
	}
}

func TestParseRequestDefaultRouteOnDirectory(t *testing.T) {
	for _, target := range []string{"/", "/sub/"} {
		raw := "GET " + target + " HTTP/1.1\r\n\r\n"
		req := ParseRequest(raw)
		if !req.IsValid() {
			t.Fatalf("IsValid() = false for target %q, reason: %s", target, req.InvalidReason())
		}
		want := target + "index.html"
		if req.ResourceURL() != want {
			t.Errorf("ResourceURL() for target %q = %q, want %q", target, req.ResourceURL(), want)
		}
	}
}

func TestParseRequestUnsupportedMethod(t *testing.T) {
	raw := "POST /index.html HTTP/1.1\r\n\r\n"
	req := ParseRequest(raw)
	if req.IsValid() {
		t.Fatal("IsValid() = true for an unsupported method, want false")
	}
}

func TestParseRequestMalformedEnding(t *testing.T) {
	raw := "GET /index.html HTTP/1.1\r\n"
	req := ParseRequest(raw)
	if req.IsValid() {
		t.Fatal("IsValid() = true for a request missing \\r\\n\\r\\n, want false")
	}
}

func TestParseRequestInvalidHeaderLine(t *testing.T) {
	raw := "GET /index.html HTTP/1.1\r\n" +
		"Not A Header Line\r\n" +
		"\r\n"
	req := ParseRequest(raw)
	if req.IsValid() {
		t.Fatal("IsValid() = true for a colon-less header line, want false")
	}
}
