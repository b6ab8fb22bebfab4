package v1

import (
	"net/http"

	"shiprate-backend/internal/usecase"
	"shiprate-backend/pkg/utils"
)

type CarrierHandler struct {
	carrierUC *usecase.CarrierUsecase
}

func NewCarrierHandler(uc *usecase.CarrierUsecase) *CarrierHandler {
	return &CarrierHandler{carrierUC: uc}
}

// ListCarriers handles GET /api/v1/carriers. ?all=true includes inactive carriers.
func (h *CarrierHandler) ListCarriers(w http.ResponseWriter, r *http.Request) {
	carriers, err := h.carrierUC.ListCarriers(r.Context(), newQueryParams(r).flag("all"))
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteList(w, len(carriers), carriers)
}

func (h *CarrierHandler) GetCarrier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}

	carrier, err := h.carrierUC.GetCarrier(r.Context(), id)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteSuccess(w, carrier)
}

func (h *CarrierHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}

	services, err := h.carrierUC.ListServices(r.Context(), id)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteList(w, len(services), services)
}
