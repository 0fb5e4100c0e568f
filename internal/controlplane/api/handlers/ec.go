package handlers

import (
	"net/http"

	"github.com/marmos91/ecfs/internal/logger"
	"github.com/marmos91/ecfs/pkg/metrics"
	"github.com/marmos91/ecfs/pkg/namespace"
)

// ECHandler serves the erasure coding policy endpoints.
type ECHandler struct {
	ns      namespace.Service
	metrics metrics.APIMetrics
}

// NewECHandler creates a new ECHandler. m may be nil.
func NewECHandler(ns namespace.Service, m metrics.APIMetrics) *ECHandler {
	return &ECHandler{ns: ns, metrics: m}
}

// PolicyListResponse is the response body for GET /api/v1/ec/policies.
type PolicyListResponse struct {
	Policies []*namespace.Policy `json:"policies"`
}

// EffectivePolicyResponse is the response body for GET /api/v1/ec/policy.
// Policy is null when the path has no effective policy.
type EffectivePolicyResponse struct {
	Path   string            `json:"path"`
	Policy *namespace.Policy `json:"policy"`
}

// SetPolicyRequest is the request body for PUT /api/v1/ec/policy.
type SetPolicyRequest struct {
	Path   string `json:"path" validate:"required"`
	Policy string `json:"policy" validate:"required"`
}

func (h *ECHandler) observe(operation string, err error) {
	if h.metrics != nil {
		h.metrics.ObservePolicyOperation(operation, namespace.ErrorCode(err))
	}
}

// ListPolicies handles GET /api/v1/ec/policies.
func (h *ECHandler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.ns.ListPolicies(r.Context())
	h.observe("listPolicies", err)
	if err != nil {
		writeNamespaceError(w, err)
		return
	}
	WriteJSONOK(w, PolicyListResponse{Policies: policies})
}

// GetPolicy handles GET /api/v1/ec/policy?path=.
func (h *ECHandler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	path, ok := pathParam(w, r)
	if !ok {
		return
	}

	ctx := withOperation(r, "getPolicy", path)
	policy, err := h.ns.GetEffectivePolicy(ctx, path)
	h.observe("getPolicy", err)
	if err != nil {
		logger.DebugCtx(ctx, "Get policy failed", logger.Err(err))
		writeNamespaceError(w, err)
		return
	}
	WriteJSONOK(w, EffectivePolicyResponse{Path: path, Policy: policy})
}

// SetPolicy handles PUT /api/v1/ec/policy.
func (h *ECHandler) SetPolicy(w http.ResponseWriter, r *http.Request) {
	var req SetPolicyRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	ctx := withOperation(r, "setPolicy", req.Path)
	err := h.ns.SetPolicy(ctx, req.Path, req.Policy)
	h.observe("setPolicy", err)
	if err != nil {
		logger.WarnCtx(ctx, "Set policy failed", logger.Policy(req.Policy), logger.Err(err))
		writeNamespaceError(w, err)
		return
	}
	WriteNoContent(w)
}

// UnsetPolicy handles DELETE /api/v1/ec/policy?path=.
func (h *ECHandler) UnsetPolicy(w http.ResponseWriter, r *http.Request) {
	path, ok := pathParam(w, r)
	if !ok {
		return
	}

	ctx := withOperation(r, "unsetPolicy", path)
	err := h.ns.UnsetPolicy(ctx, path)
	h.observe("unsetPolicy", err)
	if err != nil {
		logger.WarnCtx(ctx, "Unset policy failed", logger.Err(err))
		writeNamespaceError(w, err)
		return
	}
	WriteNoContent(w)
}
