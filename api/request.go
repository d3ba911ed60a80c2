package api

import (
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// Request wraps an incoming local api request with parsed common params
type Request struct {
	http.Request
	Filter string
	Search string
	Limit  int
}

func atoi(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

// NewRequest .
func NewRequest(r *http.Request) *Request {
	req := &Request{Request: *r}
	query := r.URL.Query()
	req.Filter = query.Get("filter")
	req.Search = query.Get("search")
	req.Limit = atoi(query.Get("limit"), 0)
	log.Debugf("[api] %s %s", req.Method, req.URL.Path)
	return req
}

// JSON is a loose response body
type JSON map[string]interface{}

// JSONWrapper renders a handler's result as a JSON response
func JSONWrapper(f func(*Request) (int, interface{})) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		r := NewRequest(req)
		w.Header().Set("Content-Type", "application/json")
		code, result := f(r)
		w.WriteHeader(code)
		if err := jsonEncode(w, result); err != nil {
			log.Errorf("[api] encode response failed: %v", err)
		}
	}
}
