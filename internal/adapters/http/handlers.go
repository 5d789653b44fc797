package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/n0madsky/profile-api-assignment/internal/application"
	"github.com/n0madsky/profile-api-assignment/internal/contracts"
	"github.com/n0madsky/profile-api-assignment/internal/domain"
)

const maxBodyBytes = 1 << 20

func (h *Handler) listProfiles(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	profiles := h.service.ListProfiles(r.Context(), page)
	items := make([]contracts.Profile, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, toProfile(p))
	}
	writeSuccess(w, http.StatusOK, contracts.PagedResult[contracts.Profile]{Page: page, Items: items})
}

func (h *Handler) listProfileRegistrations(w http.ResponseWriter, r *http.Request) {
	profileID, err := uintParam(r, "profile")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	page, err := pageParam(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	recs, err := h.service.ListProfileRegistrations(r.Context(), profileID, page)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, contracts.PagedResult[contracts.ProductRegistration]{Page: page, Items: toRegistrations(recs)})
}

func (h *Handler) createRegistration(w http.ResponseWriter, r *http.Request) {
	profileID, err := uintParam(r, "profile")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	var req contracts.CreateRegistrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	rec, err := h.service.RegisterProduct(r.Context(), application.RegisterProductInput{
		ProfileID: profileID,
		SKU:       req.SKU,
	}, idempotencyKey(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toRegistration(rec))
}

func (h *Handler) getRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "id")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	rec, err := h.service.GetRegistration(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toRegistration(rec))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req contracts.CreateProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	in := application.CreateProductInput{
		SKU:             req.SKU,
		BundledProducts: req.BundledProducts,
	}
	if req.ActiveFor != nil {
		if *req.ActiveFor <= 0 || *req.ActiveFor > math.MaxInt64/int64(time.Second) {
			writeDomainError(w, r, fmt.Errorf("%w: active_for must be a positive number of seconds", domain.ErrInvalidInput))
			return
		}
		d := time.Duration(*req.ActiveFor) * time.Second
		in.ActiveFor = &d
	}
	leaves, err := h.service.CreateProduct(r.Context(), in, idempotencyKey(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, contracts.CreateProductResponse{SKUAdded: in.SKU, BundledProducts: leaves.Sorted()})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	product, err := h.service.GetProduct(r.Context(), sku)
	if errors.Is(err, domain.ErrNotFound) {
		writeSuccess(w, http.StatusOK, contracts.ProductResponse{SKU: sku})
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	leaves, err := h.service.ResolveProduct(r.Context(), sku)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	resp := contracts.ProductResponse{SKU: sku, Exists: true, Leaf: product.IsLeaf(), Leaves: leaves.Sorted()}
	if product.ActiveFor != nil {
		seconds := int64(*product.ActiveFor / time.Second)
		resp.ActiveFor = &seconds
	}
	writeSuccess(w, http.StatusOK, resp)
}

func pageParam(r *http.Request) (uint64, error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 0, nil
	}
	page, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: page must be a non-negative integer", domain.ErrInvalidInput)
	}
	return page, nil
}

func uintParam(r *http.Request, name string) (uint64, error) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, name)
	}
	return v, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed request body", domain.ErrInvalidInput)
	}
	return nil
}

func idempotencyKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("Idempotency-Key"))
}
