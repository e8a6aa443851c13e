package handlers

import (
	"net/http"
	"time"

	"rcvj/internal/app"
	"rcvj/internal/common"
	"rcvj/internal/http/response"
)

// UploadsHandler serves stored resume files from the uploads path. Names
// are generated server-side, so anything not in the store is a plain 404.
type UploadsHandler struct {
	files app.FileStore
}

func NewUploadsHandler(files app.FileStore) *UploadsHandler {
	return &UploadsHandler{files: files}
}

func (h *UploadsHandler) Get(w http.ResponseWriter, r *http.Request) {
	name, err := pathSegment(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	f, err := h.files.Open(name)
	if err != nil {
		response.Error(w, common.NewError(common.CodeNotFound, "file not found", err))
		return
	}
	defer f.Close()
	http.ServeContent(w, r, name, time.Time{}, f)
}
