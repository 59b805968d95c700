package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/sftpflow/sftpflow/internal/models"
	"github.com/sftpflow/sftpflow/internal/utils"
)

// POST /api/v1/events/transfer
// TransferEvent godoc
// @Summary Acknowledge a connector transfer event
// @Description Sink for transfer lifecycle events forwarded by an event router. Events are logged and acknowledged; the reconciliation pass performs the actual record updates.
// @Tags Events
// @Accept json
// @Produce json
// @Param event body models.TransferEvent true "Transfer lifecycle event"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/v1/events/transfer [post]
func (h *Handler) TransferEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	var event models.TransferEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		utils.JSONError(w, http.StatusBadRequest, fmt.Errorf("decoding event: %w", err))
		return
	}

	transferID := event.Detail.TransferID
	if transferID == "" {
		zap.S().Warn("transfer event without transfer id")
		utils.JSONResponse(w, http.StatusOK, map[string]string{
			"message": "No transfer ID found",
		})
		return
	}

	zap.S().Infow("transfer event received",
		"transfer_id", transferID,
		"connector_id", event.Detail.ConnectorID,
		"detail_type", event.DetailType,
	)
	utils.JSONResponse(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Transfer event processed for %s", transferID),
	})
}
