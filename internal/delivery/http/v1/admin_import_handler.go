package v1

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"shiprate-backend/internal/usecase"
	"shiprate-backend/pkg/logger"
	"shiprate-backend/pkg/utils"
)

var allowedImportExtensions = map[string]bool{
	".csv": true,
	".txt": true,
}

type AdminImportHandler struct {
	importUC      *usecase.ImportUsecase
	maxUploadSize int64
}

func NewAdminImportHandler(uc *usecase.ImportUsecase, maxImportSizeMB int64) *AdminImportHandler {
	return &AdminImportHandler{
		importUC:      uc,
		maxUploadSize: maxImportSizeMB << 20,
	}
}

// Import handles POST /api/v1/admin/import with the rate sheet in the "file"
// multipart field. count in the response is the number of imported rows.
func (h *AdminImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())

	if r.ContentLength > h.maxUploadSize {
		utils.WriteError(w, http.StatusRequestEntityTooLarge, "Rate sheet too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteError(w, http.StatusRequestEntityTooLarge, "Rate sheet too large")
			return
		}
		log.Warn().Err(err).Msg("Import: ParseMultipartForm failed")
		utils.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImportExtensions[ext] {
		utils.WriteError(w, http.StatusBadRequest, "Invalid file extension, expected .csv")
		return
	}

	report, err := h.importUC.Import(r.Context(), header.Filename, file)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteList(w, report.RowsImported, report)
}
