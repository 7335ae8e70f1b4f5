package handlers

import (
	"net/http"
	db "spendtracker/src/db/sql"
	"spendtracker/src/logger"
	"spendtracker/src/util"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func GetUser(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		user, err := db.GetUserByID(r.Context(), pool, userID)
		if err != nil {
			writeStoreError(w, r, err, "user")
			return
		}
		util.WriteJSON(w, http.StatusOK, user, "")
	}
}

func UpdateUser(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req struct {
			Email     string `json:"email"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Email = strings.TrimSpace(req.Email)
		if !util.ValidateEmail(req.Email) {
			util.WriteError(w, http.StatusBadRequest, "invalid email format")
			return
		}

		err := db.UpdateUserProfile(r.Context(), pool, userID, req.Email,
			strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName))
		if err != nil {
			writeStoreError(w, r, err, "user")
			return
		}

		user, err := db.GetUserByID(r.Context(), pool, userID)
		if err != nil {
			writeStoreError(w, r, err, "user")
			return
		}
		logger.FromContext(r.Context()).Info().Msg("Updated user profile")
		util.WriteJSON(w, http.StatusOK, user, "Profile updated")
	}
}

func ChangePassword(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		log := logger.FromContext(r.Context())

		var req struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		user, err := db.GetUserByID(r.Context(), pool, userID)
		if err != nil {
			writeStoreError(w, r, err, "user")
			return
		}
		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.CurrentPassword)); err != nil {
			log.Warn().Msg("Password change with wrong current password")
			util.WriteError(w, http.StatusUnauthorized, "current password is incorrect")
			return
		}
		if !util.ValidatePassword(req.NewPassword) {
			util.WriteError(w, http.StatusBadRequest, "password must be at least 8 characters with uppercase, lowercase and a digit")
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Error().Err(err).Msg("Failed to hash password")
			util.WriteError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := db.UpdateUserPassword(r.Context(), pool, userID, string(hashed)); err != nil {
			writeStoreError(w, r, err, "user")
			return
		}

		log.Info().Msg("Password changed")
		util.WriteJSON(w, http.StatusOK, nil, "Password updated")
	}
}
