// Package workspace exposes file upload and table inspection endpoints.
package workspace

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"intelligent_accountant/pkg/core/normalize"
	"intelligent_accountant/pkg/core/workspace"
)

// maxUploadBytes caps a single spreadsheet upload at 32 MB.
const maxUploadBytes = 32 << 20

// Handler holds dependencies for workspace endpoints.
type Handler struct {
	ws      *workspace.Workspace
	dataDir string
}

// NewHandler creates a workspace handler. Uploaded files land in dataDir.
func NewHandler(ws *workspace.Workspace, dataDir string) *Handler {
	return &Handler{ws: ws, dataDir: dataDir}
}

// TableSummary is one table as shown in the workspace listing.
type TableSummary struct {
	Key        string   `json:"key"`
	SourceFile string   `json:"source_file"`
	SheetName  string   `json:"sheet_name"`
	Columns    []string `json:"columns"`
	RowCount   int      `json:"row_count"`
	Primary    bool     `json:"primary"`
}

// ListResponse is the workspace listing: tables plus the failure manifest.
type ListResponse struct {
	Tables   []TableSummary `json:"tables"`
	Failures []string       `json:"failures"`
}

// HandleList returns every loaded table and the failure manifest.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	resp := ListResponse{Tables: []TableSummary{}, Failures: []string{}}
	for _, sel := range h.ws.Selections() {
		resp.Tables = append(resp.Tables, summarize(sel.Primary, true))
		for _, alt := range sel.Alternates {
			resp.Tables = append(resp.Tables, summarize(alt, false))
		}
	}
	for _, f := range h.ws.Failures() {
		resp.Failures = append(resp.Failures, f.String())
	}
	json.NewEncoder(w).Encode(resp)
}

func summarize(t *normalize.NormalizedTable, primary bool) TableSummary {
	return TableSummary{
		Key:        t.Key(),
		SourceFile: filepath.Base(t.SourceFile),
		SheetName:  t.SheetName,
		Columns:    t.Columns,
		RowCount:   len(t.Rows),
		Primary:    primary,
	}
}

// HandleUpload accepts a multipart spreadsheet upload and loads it.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !workspace.SupportedFile(name) {
		http.Error(w, fmt.Sprintf("Unsupported file type: %s", name), http.StatusBadRequest)
		return
	}

	if err := os.MkdirAll(h.dataDir, 0755); err != nil {
		http.Error(w, "Failed to prepare data directory", http.StatusInternalServerError)
		return
	}
	dest := filepath.Join(h.dataDir, name)
	out, err := os.Create(dest)
	if err != nil {
		http.Error(w, "Failed to save upload", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		http.Error(w, "Failed to save upload", http.StatusInternalServerError)
		return
	}
	out.Close()

	log.Printf("[Workspace] uploaded %s (%d bytes)", name, header.Size)
	h.ws.LoadFiles([]string{dest})

	json.NewEncoder(w).Encode(map[string]interface{}{
		"file":     name,
		"tables":   len(h.ws.Tables()),
		"failures": len(h.ws.Failures()),
	})
}

// HandleRefresh reloads files whose modification time changed.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reloaded := h.ws.Refresh()
	json.NewEncoder(w).Encode(map[string]int{
		"reloaded": reloaded,
		"tables":   len(h.ws.Tables()),
	})
}
