package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/marmos91/ecfs/pkg/namespace"
)

type recordingMetrics struct {
	ops []string
}

func (m *recordingMetrics) ObserveRequest(string, string, int, time.Duration) {}

func (m *recordingMetrics) ObservePolicyOperation(operation, code string) {
	m.ops = append(m.ops, operation+":"+code)
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) Problem {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); ct != ContentTypeProblemJSON {
		t.Fatalf("Expected Content-Type %q, got %q", ContentTypeProblemJSON, ct)
	}
	var p Problem
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("Failed to decode problem: %v", err)
	}
	return p
}

func TestECHandler_ListPolicies(t *testing.T) {
	ns, _ := newTestNamespace(t)
	m := &recordingMetrics{}
	h := NewECHandler(ns, m)

	w := httptest.NewRecorder()
	h.ListPolicies(w, httptest.NewRequest("GET", "/api/v1/ec/policies", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp PolicyListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Policies) != len(namespace.SystemPolicies()) {
		t.Errorf("Expected %d policies, got %d", len(namespace.SystemPolicies()), len(resp.Policies))
	}
	if len(m.ops) != 1 || m.ops[0] != "listPolicies:" {
		t.Errorf("Unexpected metrics %v", m.ops)
	}
}

func TestECHandler_SetGetUnset(t *testing.T) {
	ns, _ := newTestNamespace(t)
	if err := ns.Mkdirs(t.Context(), "/data/cold"); err != nil {
		t.Fatalf("Mkdirs: %v", err)
	}
	h := NewECHandler(ns, nil)

	body := `{"path":"/data","policy":"RS-6-3-1024k"}`
	w := httptest.NewRecorder()
	h.SetPolicy(w, httptest.NewRequest("PUT", "/api/v1/ec/policy", strings.NewReader(body)))
	if w.Code != http.StatusNoContent {
		t.Fatalf("SetPolicy: expected %d, got %d: %s", http.StatusNoContent, w.Code, w.Body)
	}

	w = httptest.NewRecorder()
	h.GetPolicy(w, httptest.NewRequest("GET", "/api/v1/ec/policy?path=/data/cold", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GetPolicy: expected %d, got %d", http.StatusOK, w.Code)
	}
	var resp EffectivePolicyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Policy == nil || resp.Policy.Name != "RS-6-3-1024k" {
		t.Errorf("Expected inherited RS-6-3-1024k, got %+v", resp.Policy)
	}

	w = httptest.NewRecorder()
	h.UnsetPolicy(w, httptest.NewRequest("DELETE", "/api/v1/ec/policy?path=/data", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("UnsetPolicy: expected %d, got %d", http.StatusNoContent, w.Code)
	}

	w = httptest.NewRecorder()
	h.GetPolicy(w, httptest.NewRequest("GET", "/api/v1/ec/policy?path=/data/cold", nil))
	resp = EffectivePolicyResponse{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Policy != nil {
		t.Errorf("Expected no effective policy, got %+v", resp.Policy)
	}
}

func TestECHandler_Errors(t *testing.T) {
	ns, _ := newTestNamespace(t)
	if _, err := ns.CreateFile(t.Context(), "/f"); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"get missing path", "GET", "/api/v1/ec/policy?path=/nope", "", http.StatusNotFound, "FileNotFoundException"},
		{"get relative path", "GET", "/api/v1/ec/policy?path=rel", "", http.StatusBadRequest, "InvalidPathException"},
		{"get without path", "GET", "/api/v1/ec/policy", "", http.StatusBadRequest, ""},
		{"set unknown policy", "PUT", "/api/v1/ec/policy", `{"path":"/","policy":"RS-99"}`, http.StatusBadRequest, "HadoopIllegalArgumentException"},
		{"set disabled policy", "PUT", "/api/v1/ec/policy", `{"path":"/","policy":"XOR-2-1-1024k"}`, http.StatusBadRequest, "HadoopIllegalArgumentException"},
		{"set on file", "PUT", "/api/v1/ec/policy", `{"path":"/f","policy":"RS-6-3-1024k"}`, http.StatusBadRequest, "IllegalArgumentException"},
		{"set without policy", "PUT", "/api/v1/ec/policy", `{"path":"/"}`, http.StatusBadRequest, ""},
		{"set malformed body", "PUT", "/api/v1/ec/policy", `{`, http.StatusBadRequest, ""},
		{"unset nothing set", "DELETE", "/api/v1/ec/policy?path=/", "", http.StatusConflict, "NoECPolicySetException"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &recordingMetrics{}
			h := NewECHandler(ns, m)
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			switch tt.method {
			case "GET":
				h.GetPolicy(w, req)
			case "PUT":
				h.SetPolicy(w, req)
			case "DELETE":
				h.UnsetPolicy(w, req)
			}

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			p := decodeProblem(t, w)
			if p.Code != tt.wantCode {
				t.Errorf("Expected code %q, got %q", tt.wantCode, p.Code)
			}
			if tt.wantCode != "" && (len(m.ops) != 1 || !strings.HasSuffix(m.ops[0], ":"+tt.wantCode)) {
				t.Errorf("Expected operation recorded with %s, got %v", tt.wantCode, m.ops)
			}
		})
	}
}

func TestNamespaceHandler(t *testing.T) {
	ns, _ := newTestNamespace(t)
	h := NewNamespaceHandler(ns)

	w := httptest.NewRecorder()
	h.CreateDirectory(w, httptest.NewRequest("POST", "/api/v1/namespace/directories", strings.NewReader(`{"path":"/a/b"}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("CreateDirectory: expected %d, got %d", http.StatusCreated, w.Code)
	}

	if err := ns.SetPolicy(t.Context(), "/a", "RS-6-3-1024k"); err != nil {
		t.Fatalf("SetPolicy: %v", err)
	}

	w = httptest.NewRecorder()
	h.CreateFile(w, httptest.NewRequest("POST", "/api/v1/namespace/files", strings.NewReader(`{"path":"/a/b/f"}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("CreateFile: expected %d, got %d", http.StatusCreated, w.Code)
	}
	var entry namespace.Entry
	if err := json.NewDecoder(w.Body).Decode(&entry); err != nil {
		t.Fatalf("Failed to decode entry: %v", err)
	}
	if entry.Type != namespace.EntryFile || entry.Policy != "RS-6-3-1024k" {
		t.Errorf("Unexpected entry %+v", entry)
	}

	w = httptest.NewRecorder()
	h.CreateFile(w, httptest.NewRequest("POST", "/api/v1/namespace/files", strings.NewReader(`{"path":"/a/b/f"}`)))
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate CreateFile: expected %d, got %d", http.StatusConflict, w.Code)
	}

	w = httptest.NewRecorder()
	h.GetEntry(w, httptest.NewRequest("GET", "/api/v1/namespace/entries?path=/a", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GetEntry: expected %d, got %d", http.StatusOK, w.Code)
	}
	entry = namespace.Entry{}
	if err := json.NewDecoder(w.Body).Decode(&entry); err != nil {
		t.Fatalf("Failed to decode entry: %v", err)
	}
	if !entry.IsDir() || entry.Policy != "RS-6-3-1024k" {
		t.Errorf("Unexpected entry %+v", entry)
	}
}

func TestWriteNamespaceError_UnknownError(t *testing.T) {
	w := httptest.NewRecorder()
	writeNamespaceError(w, http.ErrHandlerTimeout)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if p := decodeProblem(t, w); p.Code != "" {
		t.Errorf("Expected no code, got %q", p.Code)
	}
}
