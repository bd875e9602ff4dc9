// Package web exposes the agenda manager over HTTP: collection CRUD, the
// OAuth redirect/callback boundary, sync triggers and the aggregated
// calendar views. It holds no state of its own.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/guilherme-santos/agendahub"
	"github.com/guilherme-santos/agendahub/internal/agenda"
	"github.com/guilherme-santos/agendahub/internal/config"
)

type Server struct {
	manager *agenda.Manager
	cfg     *config.Config
	router  *mux.Router
}

func NewServer(manager *agenda.Manager, cfg *config.Config) *Server {
	s := &Server{
		manager: manager,
		cfg:     cfg,
		router:  mux.NewRouter(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	s.router.HandleFunc("/api/agendas", s.handleListAgendas).Methods(http.MethodGet)
	s.router.HandleFunc("/api/agendas", s.handleCreateAgenda).Methods(http.MethodPost)
	s.router.HandleFunc("/api/agendas/{id}/visibility", s.handleToggleVisibility).Methods(http.MethodPost)
	s.router.HandleFunc("/api/agendas/{id}", s.handleRemoveAgenda).Methods(http.MethodDelete)
	s.router.HandleFunc("/api/agendas/{id}/auth", s.handleBeginAuth).Methods(http.MethodPost)
	s.router.HandleFunc("/api/agendas/{id}/sync", s.handleSyncAgenda).Methods(http.MethodPost)
	s.router.HandleFunc("/api/sync", s.handleSyncAll).Methods(http.MethodPost)

	s.router.HandleFunc("/api/appointments", s.handleAppointments).Methods(http.MethodGet)
	s.router.HandleFunc("/api/grid", s.handleGrid).Methods(http.MethodGet)
	s.router.HandleFunc("/api/export.ics", s.handleExportICS).Methods(http.MethodGet)

	s.router.HandleFunc("/auth/callback", s.handleAuthCallback).Methods(http.MethodGet)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type agendaView struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	OwnerType    string             `json:"ownerType"`
	Source       string             `json:"source"`
	Color        string             `json:"color"`
	IsVisible    bool               `json:"isVisible"`
	Appointments []*appointmentView `json:"appointments"`
	AuthStatus   string             `json:"authStatus,omitempty"`
	AuthError    string             `json:"authError,omitempty"`
	TokenExpiry  *time.Time         `json:"tokenExpiry,omitempty"`
}

type appointmentView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AgendaID    string    `json:"agendaId"`
	AgendaName  string    `json:"agendaName,omitempty"`
	AgendaColor string    `json:"agendaColor,omitempty"`
}

// newAgendaView strips the access token; it never leaves the process.
func newAgendaView(a *agendahub.Agenda) *agendaView {
	view := &agendaView{
		ID:           a.ID,
		Name:         a.Name,
		OwnerType:    a.OwnerType.String(),
		Source:       a.Source.String(),
		Color:        a.Color,
		IsVisible:    a.IsVisible,
		Appointments: make([]*appointmentView, len(a.Appointments)),
		AuthStatus:   a.AuthStatus.String(),
		AuthError:    a.AuthErr,
	}
	if !a.TokenExpiry.IsZero() {
		expiry := a.TokenExpiry
		view.TokenExpiry = &expiry
	}
	for i, appt := range a.Appointments {
		view.Appointments[i] = newAppointmentView(appt)
	}
	return view
}

func newAppointmentView(a *agendahub.Appointment) *appointmentView {
	return &appointmentView{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Start:       a.StartsAt,
		End:         a.EndsAt,
		AgendaID:    a.AgendaID,
		AgendaName:  a.AgendaName,
		AgendaColor: a.AgendaColor,
	}
}

func (s *Server) handleListAgendas(w http.ResponseWriter, _ *http.Request) {
	agendas := s.manager.Agendas()
	views := make([]*agendaView, len(agendas))
	for i, a := range agendas {
		views[i] = newAgendaView(a)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateAgenda(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		OwnerType string `json:"ownerType"`
		Source    string `json:"source"`
		Link      string `json:"link"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	owner := agendahub.OwnerType(req.OwnerType)
	source := agendahub.Source(req.Source)
	switch owner {
	case agendahub.OwnerUser, agendahub.OwnerFriend:
	default:
		writeError(w, http.StatusBadRequest, "unknown owner type")
		return
	}
	switch source {
	case agendahub.SourceManual, agendahub.SourceFriendLink, agendahub.SourceGoogle, agendahub.SourceMicrosoft:
	default:
		writeError(w, http.StatusBadRequest, "unknown source")
		return
	}

	created, err := s.manager.CreateAgenda(r.Context(), req.Name, owner, source, req.Link)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, newAgendaView(created))
}

func (s *Server) handleToggleVisibility(w http.ResponseWriter, r *http.Request) {
	err := s.manager.ToggleVisibility(r.Context(), mux.Vars(r)["id"])
	s.writeOutcome(w, err)
}

func (s *Server) handleRemoveAgenda(w http.ResponseWriter, r *http.Request) {
	err := s.manager.RemoveAgenda(r.Context(), mux.Vars(r)["id"])
	s.writeOutcome(w, err)
}

func (s *Server) handleBeginAuth(w http.ResponseWriter, r *http.Request) {
	authURL, err := s.manager.BeginAuthentication(mux.Vars(r)["id"])
	if err != nil {
		s.writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"authUrl": authURL})
}

func (s *Server) handleSyncAgenda(w http.ResponseWriter, r *http.Request) {
	err := s.manager.Synchronize(r.Context(), mux.Vars(r)["id"])
	s.writeOutcome(w, err)
}

func (s *Server) handleSyncAll(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.SynchronizeAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAppointments(w http.ResponseWriter, _ *http.Request) {
	appts := s.manager.AggregateVisible()
	views := make([]*appointmentView, len(appts))
	for i, appt := range appts {
		views[i] = newAppointmentView(appt)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) writeOutcome(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, agendahub.ErrAgendaNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, agendahub.ErrSyncInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, agendahub.ErrNotOAuthSource):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
