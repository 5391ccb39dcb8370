package handler

import "net/http"

// RegisterRoutes mounts the editor API on mux (Go 1.22+ patterns)
func RegisterRoutes(mux *http.ServeMux, editor *EditorHandler, changes *ChangeHandler) {
	mux.HandleFunc("GET /health", editor.HealthCheck)

	// Document content
	mux.HandleFunc("GET /api/documents/{id}/tree", editor.GetTree)
	mux.HandleFunc("PUT /api/documents/{id}/tree", editor.ReplaceTree)
	mux.HandleFunc("GET /api/documents/{id}/source", editor.GetSourceView)

	// Drag and drop
	mux.HandleFunc("POST /api/documents/{id}/moves", editor.MoveObject)
	mux.HandleFunc("GET /api/documents/{id}/moves", editor.ListMoves)

	// Objects
	mux.HandleFunc("POST /api/documents/{id}/objects", editor.CreateObject)
	mux.HandleFunc("PATCH /api/documents/{id}/objects/{objectId}", editor.EditObject)
	mux.HandleFunc("DELETE /api/documents/{id}/objects/{objectId}", editor.DeleteObject)

	// Path points
	mux.HandleFunc("POST /api/documents/{id}/paths/{pathId}/points", editor.AddPathPoint)
	mux.HandleFunc("DELETE /api/documents/{id}/paths/{pathId}/points/{pointId}", editor.RemovePathPoint)

	// Selection
	mux.HandleFunc("GET /api/documents/{id}/selection", editor.GetSelection)
	mux.HandleFunc("PUT /api/documents/{id}/selection", editor.PutSelection)

	// Change feed
	if changes != nil {
		mux.HandleFunc("GET /api/documents/{id}/ws", changes.Stream)
	}
}
