package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	partner "rental-cloud/internal/partner/domain"
)

// Handler serves the fleet partner registry.
type Handler struct {
	directory partner.Directory
}

// NewHandler constructs a handler.
func NewHandler(directory partner.Directory) (*Handler, error) {
	if directory == nil {
		return nil, errors.New("partner handler: nil directory")
	}
	return &Handler{directory: directory}, nil
}

type partnerView struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Tier        string `json:"tier"`
}

// ServeHTTP handles GET /api/v1/partners.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	partners, err := h.directory.ListActive(r.Context())
	if err != nil {
		http.Error(w, "list partners failed", http.StatusInternalServerError)
		return
	}

	views := make([]partnerView, 0, len(partners))
	for _, p := range partners {
		views = append(views, partnerView{
			ID:          p.ID,
			Email:       p.Email,
			DisplayName: p.DisplayName(),
			Tier:        string(p.Tier),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(views)
}
