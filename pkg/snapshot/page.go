// Package snapshot defines the captured form of a rendered test page and
// the capability that produces it.
//
// A Page is an immutable value: it is captured once at build time, stored
// inside a fixture and decoded again at audit time.
package snapshot

import "strings"

// Page is a rendered page: the request that loaded it, the response that
// served it, the resulting document and the device it was rendered on.
type Page struct {
	Request  Request  `json:"request"`
	Response Response `json:"response"`
	Document Document `json:"document"`
	Device   Device   `json:"device"`
}

// Header is one HTTP header. A slice keeps duplicates and order.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Request describes the navigation request.
type Request struct {
	Method  string   `json:"method"`
	URL     string   `json:"url"`
	Headers []Header `json:"headers,omitempty"`
}

// Response describes what served the page. Body is the markup as served,
// before scripts ran.
type Response struct {
	URL     string   `json:"url"`
	Status  int      `json:"status"`
	Headers []Header `json:"headers,omitempty"`
	Body    string   `json:"body"`
}

// Document is the page after load: its serialized DOM and the attributes
// rules most often need without parsing.
type Document struct {
	Title string `json:"title"`
	Lang  string `json:"lang"`
	HTML  string `json:"html"`
}

// Device is the rendering environment.
type Device struct {
	Type     string   `json:"type"`
	Viewport Viewport `json:"viewport"`
	Display  Display  `json:"display"`
}

// Viewport is the layout viewport in CSS pixels.
type Viewport struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Orientation string `json:"orientation"`
}

// Display describes the output surface.
type Display struct {
	Resolution float64 `json:"resolution"`
}

// Header returns the first response header with the given name,
// case-insensitively.
func (r Response) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// Excerpt returns at most n bytes of the served markup, cut on a rune
// boundary, for diagnostics.
func (p Page) Excerpt(n int) string {
	body := p.Response.Body
	n = max(n, 0)
	if len(body) <= n {
		return body
	}
	cut := n
	for cut > 0 && !isRuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + "…"
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
