package accounts

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

const errServer = "Server error"

// RegisterAccountHandler accepts the public registration form, multipart or
// urlencoded, with an optional image file.
func RegisterAccountHandler(svc Service, files *FileStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		req, err := decodeRegisterRequest(r, files)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": "malformed request"})
			return
		}

		token, violations, err := svc.Register(r.Context(), req)
		if len(violations) > 0 {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"errors": violations})
			return
		}
		if err == ErrExistingEmail {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"errors": []FieldError{{Msg: "User already exists"}},
			})
			return
		}
		if err != nil {
			log.Printf("register: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(errServer)
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{"token": token})
	})
}

func LoginHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": "malformed request"})
			return
		}

		token, err := svc.Login(r.Context(), creds.Email, creds.Password)
		if err != nil {
			encodeError(err, w)
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{"token": token})
	})
}

// CurrentAccountHandler returns the caller's own account. Must be wrapped
// by RequireAuth.
func CurrentAccountHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		id, ok := CallerID(r.Context())
		if !ok {
			unauthorized(w)
			return
		}

		acc, err := svc.Current(r.Context(), id)
		if err != nil {
			encodeError(err, w)
			return
		}

		_ = json.NewEncoder(w).Encode(acc)
	})
}

// UpdateAccountHandler merges the request body into the account named by
// the :id route parameter. No ownership check is applied here, matching the
// observed upstream behavior; callers wanting it must wrap the route.
func UpdateAccountHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		id := ID(httprouter.ParamsFromContext(r.Context()).ByName("id"))
		fields, err := decodeFields(r)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": "malformed request"})
			return
		}

		acc, err := svc.UpdateByID(r.Context(), id, fields)
		if err != nil {
			encodeError(err, w)
			return
		}

		_ = json.NewEncoder(w).Encode(acc)
	})
}

// DeleteAccountHandler removes the account named by the :id route parameter
// and returns the removed record. Unauthenticated, like the update-by-id
// route.
func DeleteAccountHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		id := ID(httprouter.ParamsFromContext(r.Context()).ByName("id"))

		acc, err := svc.DeleteByID(r.Context(), id)
		if err != nil {
			encodeError(err, w)
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{"msg": acc})
	})
}

// UpdateCurrentAccountHandler merges the request body into the caller's own
// account. Must be wrapped by RequireAuth.
func UpdateCurrentAccountHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		id, ok := CallerID(r.Context())
		if !ok {
			unauthorized(w)
			return
		}

		fields, err := decodeFields(r)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": "malformed request"})
			return
		}

		acc, err := svc.UpdateCurrent(r.Context(), id, fields)
		if err != nil {
			encodeError(err, w)
			return
		}

		_ = json.NewEncoder(w).Encode(acc)
	})
}

func encodeError(err error, w http.ResponseWriter) {
	switch err {
	case ErrNotFound, ErrExistingEmail, ErrInvalidCredentials:
		w.WriteHeader(http.StatusBadRequest)
	default:
		// Infra detail stays in the server log.
		log.Printf("accounts: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(errServer)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}

func decodeRegisterRequest(r *http.Request, files *FileStore) (RegisterRequest, error) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return RegisterRequest{}, err
		}
		return RegisterRequest{
			Name:     r.PostFormValue("name"),
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
		}, nil
	}

	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		return RegisterRequest{}, err
	}

	req := RegisterRequest{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		path, err := files.Save(file, header)
		if err != nil {
			return RegisterRequest{}, err
		}
		req.ImagePath = path
	}

	return req, nil
}

func decodeFields(r *http.Request) (Fields, error) {
	fields := Fields{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, err
	}

	// The identifier is immutable after creation.
	delete(fields, "id")
	delete(fields, "_id")

	return fields, nil
}
