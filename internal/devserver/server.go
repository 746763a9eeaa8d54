// Package devserver is a self-contained CRM backend for local use
// (`crmdeck serve`): the same wire contract the console speaks in
// production, backed by SQLite. It exists so demos and end-to-end tests
// run against a real collaborator instead of hardcoded sample data.
package devserver

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"crmdeck/internal/model"
)

const maxUploadSize = 10 << 20 // 10MB

// Collection names, also used as route families.
const (
	colLeads         = "leads"
	colUsers         = "users"
	colPayments      = "payments"
	colFollowUps     = "followups"
	colNotifications = "notifications"
	colAssignments   = "assignments"
	colQuotations    = "quotations"
	colProjects      = "projects"
)

type Server struct {
	store  *Store
	secret []byte
	now    func() time.Time
}

// Options configures the dev backend; zero values get sensible defaults.
type Options struct {
	// AdminEmail/AdminPassword seed the login account.
	AdminEmail    string
	AdminPassword string
	// JWTSecret signs tokens; when empty a random per-process secret is
	// generated (restarting invalidates old tokens, fine for dev).
	JWTSecret string
}

func New(store *Store, opts Options) (*Server, error) {
	if opts.AdminEmail == "" {
		opts.AdminEmail = "admin@crmdeck.local"
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = "admin123"
	}
	secret := []byte(opts.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generating jwt secret: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	profile, err := json.Marshal(model.SessionUser{
		ID:       uuid.NewString(),
		Username: "Administrator",
		Email:    opts.AdminEmail,
		Role:     model.RoleManager,
	})
	if err != nil {
		return nil, err
	}
	if err := store.EnsureAccount(strings.ToLower(opts.AdminEmail), string(hash), profile); err != nil {
		return nil, fmt.Errorf("seeding admin account: %w", err)
	}

	return &Server{store: store, secret: secret, now: time.Now}, nil
}

// Handler builds the full route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	})
	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.bearerAuth)

		s.mountCRUD(r, colLeads, "/get-lead-list", "/create-lead", "/update-lead", "/delete-lead")
		s.mountCRUD(r, colUsers, "/get-user-list", "/add-user", "/update-user", "/delete-user")
		s.mountCRUD(r, colPayments, "/get-payment-list", "/add-payment", "/update-payment", "/delete-payment")
		s.mountCRUD(r, colFollowUps, "/get-followup-list", "/add-followup", "/update-followup", "/delete-followup")
		s.mountCRUD(r, colNotifications, "/get-notification-list", "/add-notification", "/update-notification", "/delete-notification")
		s.mountCRUD(r, colAssignments, "/lead-assign-list", "/lead-assign", "/update-lead-assign", "/delete-lead-assign")
		s.mountCRUD(r, colQuotations, "/get-quotation-list", "/add-quotation", "/update-quotation", "/delete-quotation")
		s.mountCRUD(r, colProjects, "/get-project-list", "/add-project", "/update-project", "/delete-project")

		r.Post("/toggle-status", s.handleToggleStatus)
		r.Post("/get-user-assign-list", s.handleAssignableUsers)
		r.Post("/upload-quotation", s.handleUploadQuotation)
		r.Post("/dashboard-stats", s.handleDashboardStats)
		r.Get("/files/{id}", s.handleFileDownload)
	})

	return r
}

func writeOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"status": "SUCCESS", "data": data}); err != nil {
		log.Printf("devserver: encoding response: %v", err)
	}
}

func writeFail(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "FAILED", "message": msg})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	hash, profile, ok, err := s.store.Account(strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if !ok || bcrypt.CompareHashAndPassword([]byte(hash), []byte(in.Password)) != nil {
		writeFail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	claims := jwt.MapClaims{
		"sub": strings.ToLower(in.Email),
		"exp": s.now().Add(24 * time.Hour).Unix(),
		"iat": s.now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal error")
		return
	}

	var user model.SessionUser
	_ = json.Unmarshal(profile, &user)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"token": token, "details": user})
}

func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			writeFail(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		tok, err := jwt.Parse(auth[len(prefix):], func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		})
		if err != nil || !tok.Valid {
			writeFail(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// mountCRUD wires one collection's four endpoints. Documents pass
// through as opaque JSON; the server's only contribution is minting ids
// on create and requiring them on update/delete.
func (s *Server) mountCRUD(r chi.Router, collection, listPath, createPath, updatePath, deletePath string) {
	r.Post(listPath, func(w http.ResponseWriter, _ *http.Request) {
		docs, err := s.store.List(collection)
		if err != nil {
			writeFail(w, http.StatusInternalServerError, "Internal error")
			return
		}
		writeOK(w, docs)
	})

	r.Post(createPath, func(w http.ResponseWriter, r *http.Request) {
		doc, ok := decodeDoc(w, r)
		if !ok {
			return
		}
		if collection == colAssignments {
			doc = s.expandAssignment(doc)
		}
		doc["id"] = uuid.NewString()
		raw, err := json.Marshal(doc)
		if err != nil {
			writeFail(w, http.StatusBadRequest, "Invalid document")
			return
		}
		if err := s.store.Insert(collection, doc["id"].(string), raw); err != nil {
			writeFail(w, http.StatusInternalServerError, "Internal error")
			return
		}
		writeOK(w, json.RawMessage(raw))
	})

	r.Post(updatePath, func(w http.ResponseWriter, r *http.Request) {
		doc, ok := decodeDoc(w, r)
		if !ok {
			return
		}
		id, _ := doc["id"].(string)
		if id == "" {
			writeFail(w, http.StatusBadRequest, "id is required")
			return
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			writeFail(w, http.StatusBadRequest, "Invalid document")
			return
		}
		found, err := s.store.Update(collection, id, raw)
		if err != nil {
			writeFail(w, http.StatusInternalServerError, "Internal error")
			return
		}
		if !found {
			writeFail(w, http.StatusOK, "Record not found")
			return
		}
		writeOK(w, json.RawMessage(raw))
	})

	r.Post(deletePath, func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.ID == "" {
			writeFail(w, http.StatusBadRequest, "id is required")
			return
		}
		found, err := s.store.Delete(collection, in.ID)
		if err != nil {
			writeFail(w, http.StatusInternalServerError, "Internal error")
			return
		}
		if !found {
			writeFail(w, http.StatusOK, "Record not found")
			return
		}
		writeOK(w, true)
	})
}

func decodeDoc(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	return doc, true
}

// expandAssignment turns the assignment picker's {leadId, technicianId}
// body into a full assignment document copied from the lead. Bodies that
// already carry assignment fields pass through untouched.
func (s *Server) expandAssignment(doc map[string]any) map[string]any {
	leadID, _ := doc["leadId"].(string)
	techID, _ := doc["technicianId"].(string)
	if leadID == "" || techID == "" {
		return doc
	}
	out := map[string]any{"status": string(model.AssignNew)}
	if raw, ok, _ := s.store.Get(colLeads, leadID); ok {
		var l model.Lead
		if json.Unmarshal(raw, &l) == nil {
			out["name"] = l.Name
			out["email"] = l.Email
			out["mobile"] = l.Mobile
			out["projectName"] = l.ProjectName
			out["source"] = l.LeadSource
		}
	}
	if raw, ok, _ := s.store.Get(colUsers, techID); ok {
		var u model.User
		if json.Unmarshal(raw, &u) == nil {
			out["assignTo"] = u.Username
		}
	}
	return out
}

func (s *Server) handleToggleStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ID     string           `json:"id"`
		Status model.UserStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.ID == "" {
		writeFail(w, http.StatusBadRequest, "id is required")
		return
	}
	if in.Status != model.UserEnabled && in.Status != model.UserDisabled {
		writeFail(w, http.StatusBadRequest, "status must be enable or disable")
		return
	}
	raw, ok, err := s.store.Get(colUsers, in.ID)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if !ok {
		writeFail(w, http.StatusOK, "User not found")
		return
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal error")
		return
	}
	doc["status"] = in.Status
	updated, _ := json.Marshal(doc)
	if _, err := s.store.Update(colUsers, in.ID, updated); err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeOK(w, json.RawMessage(updated))
}

// handleAssignableUsers returns the reduced technician shape for the
// assignment picker: every enabled user.
func (s *Server) handleAssignableUsers(w http.ResponseWriter, _ *http.Request) {
	docs, err := s.store.List(colUsers)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal error")
		return
	}
	techs := []model.Technician{}
	for _, raw := range docs {
		var u model.User
		if err := json.Unmarshal(raw, &u); err != nil {
			continue
		}
		if u.Status == model.UserDisabled {
			continue
		}
		techs = append(techs, model.Technician{ID: u.ID, Username: u.Username, Mobile: u.Mobile})
	}
	writeOK(w, techs)
}

func (s *Server) handleUploadQuotation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	followUpID := r.FormValue("followUpId")
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeFail(w, http.StatusBadRequest, "file is required")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	fileID := "file-" + uuid.NewString()
	if err := s.store.SaveFile(fileID, hdr.Filename, data); err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal error")
		return
	}

	// Attach the reference to the follow-up when one was named.
	if followUpID != "" {
		if raw, ok, _ := s.store.Get(colFollowUps, followUpID); ok {
			var doc map[string]any
			if json.Unmarshal(raw, &doc) == nil {
				doc["quotationFile"] = fileID
				if updated, err := json.Marshal(doc); err == nil {
					_, _ = s.store.Update(colFollowUps, followUpID, updated)
				}
			}
		}
	}

	writeOK(w, map[string]string{"fileReference": fileID})
}

func (s *Server) handleFileDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name, data, ok, err := s.store.File(id)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, _ *http.Request) {
	stats := model.DashboardStats{}
	var err error
	if stats.TotalLeads, err = s.store.Count(colLeads); err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if stats.TotalQuotations, err = s.store.Count(colQuotations); err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if stats.TotalFollowUps, err = s.store.Count(colFollowUps); err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal error")
		return
	}
	monthly, err := s.monthlyFollowUps()
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal error")
		return
	}
	stats.Monthly = monthly
	writeOK(w, stats)
}

// monthlyFollowUps buckets approved/rejected follow-ups by the month of
// their follow-up date, over a fixed Jan..Dec year.
func (s *Server) monthlyFollowUps() ([]model.MonthlyFollowUps, error) {
	docs, err := s.store.List(colFollowUps)
	if err != nil {
		return nil, err
	}
	out := make([]model.MonthlyFollowUps, 12)
	for i := range out {
		out[i].Month = time.Month(i + 1).String()[:3]
	}
	for _, raw := range docs {
		var f model.FollowUp
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		t, err := time.Parse("2006-01-02", f.FollowUpDate)
		if err != nil {
			continue
		}
		switch f.Status {
		case model.FollowUpApproved:
			out[int(t.Month())-1].Approved++
		case model.FollowUpRejected:
			out[int(t.Month())-1].Rejected++
		}
	}
	return out, nil
}

// ListenAndServe opens the store and serves until the process exits.
func ListenAndServe(addr, dbPath string, opts Options) error {
	store, err := OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	srv, err := New(store, opts)
	if err != nil {
		return err
	}
	log.Printf("crmdeck dev backend listening on %s (db %s)", addr, dbPath)
	return http.ListenAndServe(addr, srv.Handler())
}

// EnvOptions builds Options from the environment (after godotenv has
// loaded any .env file): CRMDECK_ADMIN_EMAIL, CRMDECK_ADMIN_PASSWORD,
// CRMDECK_JWT_SECRET.
func EnvOptions() Options {
	return Options{
		AdminEmail:    os.Getenv("CRMDECK_ADMIN_EMAIL"),
		AdminPassword: os.Getenv("CRMDECK_ADMIN_PASSWORD"),
		JWTSecret:     os.Getenv("CRMDECK_JWT_SECRET"),
	}
}
