package handlers

import (
	"errors"
	"net/http"
	db "spendtracker/src/db/sql"
	"spendtracker/src/logger"
	"spendtracker/src/models"
	"spendtracker/src/util"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig holds the token signing settings.
type AuthConfig struct {
	Secret string
	TTL    time.Duration
	Now    func() time.Time
}

func (a AuthConfig) issue(user *models.User) (*models.AuthResponse, error) {
	now := time.Now()
	if a.Now != nil {
		now = a.Now()
	}
	token, err := util.IssueToken(a.Secret, user.ID, user.Username, a.TTL, now)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

func Register(pool *pgxpool.Pool, auth AuthConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req models.RegisterRequest
		if err := decodeJSON(w, r, &req); err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Email = strings.TrimSpace(req.Email)
		req.Username = strings.TrimSpace(req.Username)
		req.FirstName = strings.TrimSpace(req.FirstName)
		req.LastName = strings.TrimSpace(req.LastName)

		if req.Username == "" || req.Email == "" || req.Password == "" {
			util.WriteError(w, http.StatusBadRequest, "Username, email, and password are required")
			return
		}
		if !util.ValidateEmail(req.Email) {
			util.WriteError(w, http.StatusBadRequest, "invalid email format")
			return
		}
		if !util.ValidateUsername(req.Username) {
			util.WriteError(w, http.StatusBadRequest, "username must be between 3 and 30 characters")
			return
		}
		if !util.ValidatePassword(req.Password) {
			util.WriteError(w, http.StatusBadRequest, "password must be at least 8 characters with uppercase, lowercase and a digit")
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error().Err(err).Str("username", req.Username).Msg("Failed to hash password")
			util.WriteError(w, http.StatusInternalServerError, "internal error")
			return
		}

		user, err := db.CreateUser(r.Context(), pool, req, string(hashedPassword))
		if err != nil {
			if errors.Is(err, db.ErrConflict) {
				util.WriteError(w, http.StatusConflict, "email or username already exists")
				return
			}
			writeStoreError(w, r, err, "user")
			return
		}

		resp, err := auth.issue(user)
		if err != nil {
			log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate token")
			util.WriteError(w, http.StatusInternalServerError, "Error generating token")
			return
		}

		log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("Successful registration")
		util.WriteJSON(w, http.StatusCreated, resp, "User registered successfully")
	}
}

func Login(pool *pgxpool.Pool, auth AuthConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var credentials models.LoginRequest
		if err := decodeJSON(w, r, &credentials); err != nil {
			util.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		login := strings.TrimSpace(credentials.Username)
		if login == "" || credentials.Password == "" {
			util.WriteError(w, http.StatusBadRequest, "Username and password are required")
			return
		}

		user, err := db.GetUserByUsername(r.Context(), pool, login)
		if errors.Is(err, db.ErrNotFound) {
			user, err = db.GetUserByEmail(r.Context(), pool, login)
		}
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				log.Warn().Str("login", login).Msg("Login for unknown user")
				util.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
				return
			}
			writeStoreError(w, r, err, "user")
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(credentials.Password)); err != nil {
			log.Warn().Str("login", login).Str("remote_addr", r.RemoteAddr).Msg("Invalid password attempt")
			util.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		resp, err := auth.issue(user)
		if err != nil {
			log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate token")
			util.WriteError(w, http.StatusInternalServerError, "Error generating token")
			return
		}

		if err := db.UpdateUserLastLogin(r.Context(), pool, user.ID); err != nil {
			log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to update last_login")
		}

		log.Info().Int64("user_id", user.ID).Msg("Successful login")
		util.WriteJSON(w, http.StatusOK, resp, "Login successful")
	}
}

// DemoLogin signs in as the seeded demo account without a password.
func DemoLogin(pool *pgxpool.Pool, auth AuthConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := db.GetUserByUsername(r.Context(), pool, db.DemoUsername)
		if err != nil {
			writeStoreError(w, r, err, "demo user")
			return
		}

		resp, err := auth.issue(user)
		if err != nil {
			logger.FromContext(r.Context()).Error().Err(err).Msg("Failed to generate demo token")
			util.WriteError(w, http.StatusInternalServerError, "Error generating token")
			return
		}

		if err := db.UpdateUserLastLogin(r.Context(), pool, user.ID); err != nil {
			logger.FromContext(r.Context()).Error().Err(err).Int64("user_id", user.ID).Msg("Failed to update last_login")
		}
		util.WriteJSON(w, http.StatusOK, resp, "Demo login successful")
	}
}
