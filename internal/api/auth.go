package api

import (
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/shramba/internal/apperr"
	"github.com/erazemk/shramba/internal/auth"
	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/resource"
	"github.com/erazemk/shramba/internal/store"
	"github.com/erazemk/shramba/internal/validate"
)

// AuthHandler handles login.
type AuthHandler struct {
	Conn      *db.Conn
	JWTSecret string
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.Conn.Ready() {
		failFromError(w, apperr.Unavailable(), "")
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid JSON body.", nil)
		return
	}

	if err := validate.AssertSafe(map[string]any{"email": body.Email}, "payload"); err != nil {
		failFromError(w, err, "")
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" || body.Password == "" {
		jsonError(w, http.StatusBadRequest, "Email and password are required.", nil)
		return
	}

	user, err := store.FindUserByEmail(r.Context(), h.Conn, email)
	if err != nil {
		var nf *apperr.NotFoundError
		if errors.As(err, &nf) {
			jsonError(w, http.StatusUnauthorized, "Invalid email or password.", nil)
			return
		}
		failFromError(w, err, "Login failed.")
		return
	}

	if enabled, ok := user["enabled"].(bool); ok && !enabled {
		jsonError(w, http.StatusUnauthorized, "Account is disabled.", nil)
		return
	}

	hash, _ := user["passwordHash"].(string)
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(body.Password)) != nil {
		jsonError(w, http.StatusUnauthorized, "Invalid email or password.", nil)
		return
	}

	id, _ := user["_id"].(bson.ObjectID)
	role, _ := user["role"].(string)
	token, err := auth.GenerateToken(h.JWTSecret, id.Hex(), email, role)
	if err != nil {
		failFromError(w, err, "Login failed.")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  resource.User.Serialize(user),
	})
}
