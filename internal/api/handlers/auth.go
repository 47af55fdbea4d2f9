package handlers

import (
	"net/http"

	"github.com/ecelabs/lims-backend/internal/api/httpx"
	"github.com/ecelabs/lims-backend/internal/auth"
	"github.com/ecelabs/lims-backend/internal/services"
)

type AuthHandler struct {
	Users *services.UserService
	TM    *auth.TokenManager
}

func NewAuthHandler(users *services.UserService, tm *auth.TokenManager) *AuthHandler {
	return &AuthHandler{Users: users, TM: tm}
}

type tokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	access, refresh, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResp{AccessToken: access, RefreshToken: refresh})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decode(r, &req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	claims, err := h.TM.ParseRefresh(req.RefreshToken)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid refresh token", nil)
		return
	}
	access, refresh, _, err := h.TM.GeneratePair(claims.UserID, claims.Email, claims.Role)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "token generation failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResp{AccessToken: access, RefreshToken: refresh})
}
