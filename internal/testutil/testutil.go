// Package testutil contains common utility functions for unit tests.
package testutil

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
)

// A Request is a request received by a FakeServer, with its body
// read into memory.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// A Reply is the canned response for one method and URL.
type Reply struct {
	Status int
	Body   string
}

// FakeServer is an http.RoundTripper that answers from a table of
// canned replies and records every request it sees. Requests with no
// reply get a 404.
type FakeServer struct {
	mu       sync.Mutex
	replies  map[string]Reply
	requests []Request
}

// NewFakeServer returns an empty FakeServer.
func NewFakeServer() *FakeServer {
	return &FakeServer{replies: make(map[string]Reply)}
}

// Handle sets the reply for method and url. The url must match the
// request URL exactly, query included.
func (f *FakeServer) Handle(method, url string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[method+" "+url] = Reply{Status: status, Body: body}
}

// Client returns an HTTP client whose requests are served by f.
func (f *FakeServer) Client() *http.Client {
	return &http.Client{Transport: f}
}

// Requests returns the requests received so far.
func (f *FakeServer) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// Last returns the most recent request. It panics if there were none.
func (f *FakeServer) Last() Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *FakeServer) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := Request{Method: req.Method, URL: req.URL.String(), Header: req.Header.Clone()}
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
		rec.Body = body
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	reply, ok := f.replies[req.Method+" "+rec.URL]
	f.mu.Unlock()

	rsp := &http.Response{
		Header:  make(http.Header),
		Request: req,
	}
	if ok {
		rsp.StatusCode = reply.Status
		rsp.Body = io.NopCloser(bytes.NewReader([]byte(reply.Body)))
	} else {
		rsp.StatusCode = http.StatusNotFound
		rsp.Body = io.NopCloser(strings.NewReader("404 not found"))
	}
	rsp.Status = http.StatusText(rsp.StatusCode)
	return rsp, nil
}
