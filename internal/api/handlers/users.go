package handlers

import (
	"net/http"

	"github.com/ecelabs/lims-backend/internal/api/httpx"
	"github.com/ecelabs/lims-backend/internal/api/validate"
	"github.com/ecelabs/lims-backend/internal/services"
)

type UsersHandler struct {
	Users *services.UserService
}

func NewUsersHandler(users *services.UserService) *UsersHandler {
	return &UsersHandler{Users: users}
}

func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	var errs validate.Errs
	for _, e := range []*validate.ErrField{
		validate.Required("username", req.Username),
		validate.Required("email", req.Email),
		validate.Required("password", req.Password),
		validate.Required("role", req.Role),
	} {
		if e != nil {
			errs = append(errs, *e)
		}
	}
	if len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation", "invalid request", errs)
		return
	}
	u, err := h.Users.Register(r.Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}
