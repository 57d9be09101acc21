package http

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/Raisondetr3/store-sales-proxy/internal/errors"
	"github.com/Raisondetr3/store-sales-proxy/pkg/dto"
	"github.com/gorilla/mux"
)

const maxRequestBody = 1 << 20

func (h *HTTPHandlers) HandleListItems(w http.ResponseWriter, r *http.Request) {
	payload, err := h.itemService.ListItems(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writePayload(w, http.StatusOK, payload)
}

func (h *HTTPHandlers) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	payload, err := h.itemService.GetItem(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writePayload(w, http.StatusOK, payload)
}

func (h *HTTPHandlers) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	payload, err := h.itemService.CreateItem(r.Context(), body)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writePayload(w, http.StatusCreated, payload)
}

func (h *HTTPHandlers) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	payload, err := h.itemService.UpdateItem(r.Context(), mux.Vars(r)["id"], body)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writePayload(w, http.StatusOK, payload)
}

func (h *HTTPHandlers) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	payload, err := h.itemService.DeleteItem(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writePayload(w, http.StatusOK, payload)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err == nil {
		return body, true
	}

	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		writeJSON(r.Context(), w, http.StatusRequestEntityTooLarge, dto.NewErr("Request body too large"))
		return nil, false
	}

	writeJSON(r.Context(), w, http.StatusBadRequest, dto.NewErr(errors.MsgInvalidJSON))
	return nil, false
}
