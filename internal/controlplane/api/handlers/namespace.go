package handlers

import (
	"context"
	"net/http"

	"github.com/marmos91/ecfs/internal/logger"
	"github.com/marmos91/ecfs/pkg/namespace"
)

// NamespaceHandler serves the namespace endpoints used to lay out
// directories and files.
type NamespaceHandler struct {
	ns *namespace.Namespace
}

// NewNamespaceHandler creates a new NamespaceHandler.
func NewNamespaceHandler(ns *namespace.Namespace) *NamespaceHandler {
	return &NamespaceHandler{ns: ns}
}

// PathRequest is the request body of the namespace create endpoints.
type PathRequest struct {
	Path string `json:"path" validate:"required"`
}

// CreateDirectory handles POST /api/v1/namespace/directories.
// Missing ancestors are created; an existing directory is not an error.
func (h *NamespaceHandler) CreateDirectory(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	ctx := withOperation(r, "mkdirs", req.Path)
	if err := h.ns.Mkdirs(ctx, req.Path); err != nil {
		writeNamespaceError(w, err)
		return
	}

	entry, err := h.ns.Stat(ctx, req.Path)
	if err != nil {
		writeNamespaceError(w, err)
		return
	}
	WriteJSONCreated(w, entry)
}

// CreateFile handles POST /api/v1/namespace/files.
func (h *NamespaceHandler) CreateFile(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	ctx := withOperation(r, "createFile", req.Path)
	entry, err := h.ns.CreateFile(ctx, req.Path)
	if err != nil {
		writeNamespaceError(w, err)
		return
	}
	logger.InfoCtx(ctx, "File created", logger.Policy(entry.Policy))
	WriteJSONCreated(w, entry)
}

// GetEntry handles GET /api/v1/namespace/entries?path=.
func (h *NamespaceHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	path, ok := pathParam(w, r)
	if !ok {
		return
	}

	entry, err := h.ns.Stat(r.Context(), path)
	if err != nil {
		writeNamespaceError(w, err)
		return
	}
	WriteJSONOK(w, entry)
}

// withOperation returns the request context with its LogContext tagged
// with op and path.
func withOperation(r *http.Request, op, path string) context.Context {
	ctx := r.Context()
	if lc := logger.FromContext(ctx); lc != nil {
		return logger.WithContext(ctx, lc.WithOperation(op, path))
	}
	return ctx
}
