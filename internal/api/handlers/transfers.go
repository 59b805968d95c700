package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/sftpflow/sftpflow/internal/models"
	"github.com/sftpflow/sftpflow/internal/utils"
	"github.com/sftpflow/sftpflow/internal/workflow"
)

// POST /api/v1/transfers/retrieve
// Retrieve godoc
// @Summary Retrieve all pending files
// @Description Scans the file records for pending paths and starts one retrieve transfer covering all of them. With nothing pending, stale in_progress records are flipped back to pending instead.
// @Tags Transfers
// @Produce json
// @Success 200 {object} workflow.RetrieveResult
// @Failure 500 {object} map[string]string
// @Router /api/v1/transfers/retrieve [post]
func (h *Handler) Retrieve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	res, err := h.retriever.Run(r.Context())
	if err != nil {
		zap.S().Errorw("file retrieval failed", "error", err)
		utils.JSONError(w, http.StatusInternalServerError, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, res)
}

// POST /api/v1/transfers/retrieve-directory
// RetrieveDirectory godoc
// @Summary Retrieve every file in the source directory
// @Description Lists the configured remote directory, records the pass as a batch and starts one retrieve transfer for everything found. A listing failure is reported in the body with files_found 0.
// @Tags Transfers
// @Produce json
// @Success 200 {object} workflow.DirectoryResult
// @Failure 500 {object} map[string]string
// @Router /api/v1/transfers/retrieve-directory [post]
func (h *Handler) RetrieveDirectory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	res, err := h.directory.Run(r.Context())
	if err != nil {
		zap.S().Errorw("directory retrieval failed", "error", err)
		utils.JSONError(w, http.StatusInternalServerError, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, res)
}

// POST /api/v1/transfers/send
// Send godoc
// @Summary Send a freshly landed object to the remote server
// @Description Takes an object-created storage event and starts a send transfer for /bucket/key.
// @Tags Transfers
// @Accept json
// @Produce json
// @Param event body models.ObjectCreatedEvent true "Object-created storage event"
// @Success 200 {object} workflow.SendResult
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/transfers/send [post]
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	var event models.ObjectCreatedEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		utils.JSONError(w, http.StatusBadRequest, fmt.Errorf("decoding event: %w", err))
		return
	}

	res, err := h.sender.Run(r.Context(), event)
	if errors.Is(err, workflow.ErrBadEvent) {
		utils.JSONError(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		zap.S().Errorw("send transfer failed", "error", err)
		utils.JSONError(w, http.StatusInternalServerError, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, res)
}

// POST /api/v1/transfers/reconcile
// Reconcile godoc
// @Summary Reconcile open batch records
// @Description Runs one reconciliation pass over the open batch records, driving finished transfers to a terminal status.
// @Tags Transfers
// @Produce json
// @Success 200 {object} workflow.ReconcileResult
// @Failure 500 {object} map[string]string
// @Router /api/v1/transfers/reconcile [post]
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	res, err := h.reconciler.Run(r.Context())
	if err != nil {
		zap.S().Errorw("status reconciliation failed", "error", err)
		utils.JSONError(w, http.StatusInternalServerError, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, res)
}
