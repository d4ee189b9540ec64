package mock

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// ApiMock is a recording HTTP server standing in for a provider API. Responses
// are keyed by method and path; a "*" path segment matches any value.
type ApiMock struct {
	mu                    sync.Mutex
	server                *httptest.Server
	headersReceived       map[string]map[int]map[string]string
	queriesReceived       map[string]map[int]map[string]string
	requestsReceived      map[string]map[int]map[string]any
	responseMap           map[string]map[int]any
	defaultResponseMap    map[string]any
	responseStatus        map[string]map[int]int
	defaultResponseStatus map[string]int
}

func NewApiServer() *ApiMock {
	a := &ApiMock{}
	a.Reset()
	return a
}

func (a *ApiMock) Start() {
	a.server = httptest.NewServer(http.HandlerFunc(a.serve))
}

func (a *ApiMock) Close() {
	if a.server != nil {
		a.server.Close()
	}
}

func (a *ApiMock) GetUrl() string {
	if a.server == nil {
		return ""
	}
	return a.server.URL
}

// Reset forgets every configured response and recorded request.
func (a *ApiMock) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.headersReceived = map[string]map[int]map[string]string{}
	a.queriesReceived = map[string]map[int]map[string]string{}
	a.requestsReceived = map[string]map[int]map[string]any{}
	a.responseMap = map[string]map[int]any{}
	a.defaultResponseMap = map[string]any{}
	a.responseStatus = map[string]map[int]int{}
	a.defaultResponseStatus = map[string]int{}
}

func (a *ApiMock) serve(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := r.Method + r.URL.Path
	index := len(a.requestsReceived[key])

	body, _ := io.ReadAll(r.Body)
	var request map[string]any
	_ = json.Unmarshal(body, &request)
	if request == nil {
		request = map[string]any{}
	}

	if a.requestsReceived[key] == nil {
		a.requestsReceived[key] = map[int]map[string]any{}
		a.headersReceived[key] = map[int]map[string]string{}
		a.queriesReceived[key] = map[int]map[string]string{}
	}
	a.requestsReceived[key][index] = request

	a.headersReceived[key][index] = map[string]string{}
	for name, value := range r.Header {
		a.headersReceived[key][index][name] = value[0]
	}
	a.queriesReceived[key][index] = map[string]string{}
	for name, value := range r.URL.Query() {
		a.queriesReceived[key][index][name] = value[0]
	}

	payload, _ := json.Marshal(a.responseBody(r.Method, r.URL.Path, index))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(a.status(r.Method, r.URL.Path, index))
	_, _ = w.Write(payload)
}

// SetResponse answers the index-th call of method+path with response. An index
// of -1 sets the answer for every call without a specific one.
func (a *ApiMock) SetResponse(index int, method, path string, status int, response any) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := method + path
	if index == -1 {
		a.defaultResponseStatus[key] = status
		a.defaultResponseMap[key] = response
		return
	}
	if a.responseMap[key] == nil {
		a.responseMap[key] = map[int]any{}
		a.responseStatus[key] = map[int]int{}
	}
	a.responseMap[key][index] = response
	a.responseStatus[key][index] = status
}

// CallCount returns how many requests matched method and path.
func (a *ApiMock) CallCount(method, path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	count := 0
	for key, requests := range a.requestsReceived {
		if strings.HasPrefix(key, method) && matchPath(path, strings.TrimPrefix(key, method)) {
			count += len(requests)
		}
	}
	return count
}

func (a *ApiMock) GetRequestBody(method, path string, index int) map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := findMatchingKey(keysOf(a.requestsReceived), method, path)
	if key == "" {
		return nil
	}
	return a.requestsReceived[key][index]
}

func (a *ApiMock) GetRequestHeaders(method, path string, index int) map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := findMatchingKey(keysOf(a.headersReceived), method, path)
	if key == "" {
		return nil
	}
	return a.headersReceived[key][index]
}

func (a *ApiMock) GetRequestQueries(method, path string, index int) map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := findMatchingKey(keysOf(a.queriesReceived), method, path)
	if key == "" {
		return nil
	}
	return a.queriesReceived[key][index]
}

func (a *ApiMock) responseBody(method, path string, index int) any {
	if key := findMatchingKey(keysOf(a.responseMap), method, path); key != "" {
		if response, ok := a.responseMap[key][index]; ok && response != nil {
			return response
		}
	}
	if key := findMatchingKey(keysOf(a.defaultResponseMap), method, path); key != "" {
		if response := a.defaultResponseMap[key]; response != nil {
			return response
		}
	}
	return map[string]any{}
}

func (a *ApiMock) status(method, path string, index int) int {
	if key := findMatchingKey(keysOf(a.responseStatus), method, path); key != "" {
		if status, ok := a.responseStatus[key][index]; ok && status != 0 {
			return status
		}
	}
	if key := findMatchingKey(keysOf(a.defaultResponseStatus), method, path); key != "" {
		if status := a.defaultResponseStatus[key]; status != 0 {
			return status
		}
	}
	// WriteHeader(0) panics.
	return http.StatusOK
}

func matchPath(pattern, path string) bool {
	if pattern == path {
		return true
	}

	patternParts := strings.Split(pattern, "/")
	pathParts := strings.Split(path, "/")
	if len(patternParts) != len(pathParts) {
		return false
	}
	for i := range patternParts {
		if patternParts[i] != "*" && pathParts[i] != "*" && patternParts[i] != pathParts[i] {
			return false
		}
	}
	return true
}

// findMatchingKey prefers an exact key over a wildcard one.
func findMatchingKey(keys []string, method, path string) string {
	exact := method + path
	for _, key := range keys {
		if key == exact {
			return key
		}
	}
	for _, key := range keys {
		if strings.HasPrefix(key, method) && matchPath(strings.TrimPrefix(key, method), path) {
			return key
		}
	}
	return ""
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	return keys
}
