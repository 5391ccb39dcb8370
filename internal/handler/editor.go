package handler

import (
	"log/slog"
	"net/http"
	"time"

	"vecteditor/internal/domain/models/svgdoc"
	svgdocSvc "vecteditor/internal/domain/services/svgdoc"
	"vecteditor/internal/httputil"
	"vecteditor/internal/sourceview"
)

// EditorHandler handles document editing HTTP requests
type EditorHandler struct {
	editorService svgdocSvc.EditorService
	logger        *slog.Logger
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(editorService svgdocSvc.EditorService, logger *slog.Logger) *EditorHandler {
	return &EditorHandler{
		editorService: editorService,
		logger:        logger,
	}
}

// createObjectBody is the flat create payload: type, parent and attributes
type createObjectBody struct {
	Type     svgdoc.Kind `json:"type"`
	ParentID string      `json:"parent_id,omitempty"`
	svgdoc.Partial
}

// HealthCheck is a simple health check endpoint
func (h *EditorHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}

// GetTree returns the document tree
// GET /api/documents/{id}/tree
func (h *EditorHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.editorService.GetTree(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tree)
}

// ReplaceTree swaps the document content for the posted tree
// PUT /api/documents/{id}/tree
func (h *EditorHandler) ReplaceTree(w http.ResponseWriter, r *http.Request) {
	var tree svgdoc.Tree
	if err := httputil.ParseJSON(w, r, &tree); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.editorService.ReplaceTree(r.Context(), r.PathValue("id"), httputil.GetPeerID(r), &tree)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, view)
}

// GetSourceView returns the flat sequence rendered by the source editor
// GET /api/documents/{id}/source
func (h *EditorHandler) GetSourceView(w http.ResponseWriter, r *http.Request) {
	view, err := h.editorService.GetSourceView(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, view)
}

// MoveObject applies a completed drag
// POST /api/documents/{id}/moves
func (h *EditorHandler) MoveObject(w http.ResponseWriter, r *http.Request) {
	var req svgdocSvc.MoveObjectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.DocumentID = r.PathValue("id")
	req.PeerID = httputil.GetPeerID(r)

	result, err := h.editorService.MoveObject(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// ListMoves returns the move history, newest first
// GET /api/documents/{id}/moves?limit=N
func (h *EditorHandler) ListMoves(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.QueryInt(r, "limit", 0)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	moves, err := h.editorService.History(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, moves)
}

// CreateObject adds an object at the end of a container
// POST /api/documents/{id}/objects
func (h *EditorHandler) CreateObject(w http.ResponseWriter, r *http.Request) {
	var body createObjectBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	obj, err := h.editorService.CreateObject(r.Context(), &svgdocSvc.CreateObjectRequest{
		DocumentID: r.PathValue("id"),
		PeerID:     httputil.GetPeerID(r),
		Type:       body.Type,
		ParentID:   body.ParentID,
		Attributes: body.Partial,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, obj)
}

// EditObject applies partial field edits
// PATCH /api/documents/{id}/objects/{objectId}
func (h *EditorHandler) EditObject(w http.ResponseWriter, r *http.Request) {
	var changes svgdoc.Partial
	if err := httputil.ParseJSON(w, r, &changes); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	obj, err := h.editorService.EditObject(r.Context(), &svgdocSvc.EditObjectRequest{
		DocumentID: r.PathValue("id"),
		PeerID:     httputil.GetPeerID(r),
		ObjectID:   r.PathValue("objectId"),
		Changes:    changes,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, obj)
}

// DeleteObject removes an object and its subtree
// DELETE /api/documents/{id}/objects/{objectId}
func (h *EditorHandler) DeleteObject(w http.ResponseWriter, r *http.Request) {
	err := h.editorService.DeleteObject(r.Context(), r.PathValue("id"), httputil.GetPeerID(r), r.PathValue("objectId"))
	if err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddPathPoint appends a command to a path
// POST /api/documents/{id}/paths/{pathId}/points
func (h *EditorHandler) AddPathPoint(w http.ResponseWriter, r *http.Request) {
	var req svgdocSvc.AddPathPointRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.DocumentID = r.PathValue("id")
	req.PathID = r.PathValue("pathId")
	req.PeerID = httputil.GetPeerID(r)

	point, err := h.editorService.AddPathPoint(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, point)
}

// RemovePathPoint deletes one command from a path
// DELETE /api/documents/{id}/paths/{pathId}/points/{pointId}
func (h *EditorHandler) RemovePathPoint(w http.ResponseWriter, r *http.Request) {
	err := h.editorService.RemovePathPoint(r.Context(),
		r.PathValue("id"),
		httputil.GetPeerID(r),
		r.PathValue("pathId"),
		r.PathValue("pointId"),
	)
	if err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSelection returns the calling peer's selection
// GET /api/documents/{id}/selection
func (h *EditorHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	sel, err := h.editorService.Selection(r.Context(), r.PathValue("id"), httputil.GetPeerID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, sel)
}

// PutSelection records the calling peer's selection
// PUT /api/documents/{id}/selection
func (h *EditorHandler) PutSelection(w http.ResponseWriter, r *http.Request) {
	var sel sourceview.Selection
	if err := httputil.ParseJSON(w, r, &sel); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	selected, err := h.editorService.Select(r.Context(), r.PathValue("id"), httputil.GetPeerID(r), sel)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, selected)
}
