package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"studiosim/internal/game"
	"studiosim/internal/store"
)

// maxAdvanceHours caps one manual advance at a game year. Every crossed day
// settles under the engine lock.
const maxAdvanceHours = game.HoursPerDay * game.DaysPerWeek * game.WeeksPerYear

type Server struct {
	log    *slog.Logger
	engine *game.Engine
	store  store.Store
	hub    *Hub
	mux    *chi.Mux
}

// New builds the HTTP surface over engine. st may be nil, in which case
// POST /v1/save answers 503.
func New(logger *slog.Logger, engine *game.Engine, st store.Store) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:    logger,
		engine: engine,
		store:  st,
		hub:    NewHub(logger),
		mux:    chi.NewRouter(),
	}
	engine.OnDay(s.hub.PublishDay)
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// RunStream runs the websocket hub until ctx is done.
func (s *Server) RunStream(ctx context.Context) {
	s.hub.Run(ctx)
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Get("/v1/stream", s.handleStream)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/state", s.handleState)
		r.Post("/clock", s.handleClock)
		r.Post("/save", s.handleSave)

		r.Post("/projects", s.handleCreateProject)
		r.Get("/projects", s.handleProjects)
		r.Get("/projects/{id}", s.handleProject)
		r.Post("/projects/{id}/start", s.handleStartProject)
		r.Put("/projects/{id}/stage", s.handleConfigureStage)
		r.Put("/projects/{id}/team", s.handleProjectTeam)
		r.Delete("/projects/{id}", s.handleAbandonProject)

		r.Get("/products", s.handleProducts)
		r.Patch("/products/{id}/ops", s.handleUpdateOps)
		r.Post("/products/{id}/abandon", s.handleAbandonProduct)

		r.Get("/team", s.handleTeam)
		r.Post("/team/hire", s.handleHire)
		r.Delete("/team/{id}", s.handleFire)

		r.Get("/research", s.handleResearch)
		r.Post("/research", s.handleStartResearch)

		r.Get("/market", s.handleMarket)
		r.Post("/negotiation", s.handleStartNegotiation)
		r.Post("/negotiation/move", s.handleNegotiationMove)

		r.Get("/inbox", s.handleInbox)
		r.Post("/inbox/{id}/resolve", s.handleResolveInbox)

		r.Get("/queue/stage", s.handlePeekStage)
		r.Post("/queue/stage/pop", s.handlePopStage)
		r.Post("/queue/ratings/drain", s.handleDrainRatings)

		r.Get("/recipes/preview", s.handleRecipePreview)
		r.Get("/cash/estimate", s.handleCashEstimate)
	})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, map[string]any{"state": s.engine.Snapshot()})
}

func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Action string  `json:"action"`
		Speed  float64 `json:"speed"`
		Hours  float64 `json:"hours"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	days := 0
	switch strings.ToLower(strings.TrimSpace(in.Action)) {
	case "pause":
		s.engine.Pause()
	case "resume":
		if err := s.engine.Resume(); err != nil {
			writeDomainError(w, err)
			return
		}
	case "speed":
		if in.Speed <= 0 {
			writeError(w, http.StatusBadRequest, "speed must be positive")
			return
		}
		s.engine.SetSpeed(in.Speed)
	case "advance":
		if in.Hours <= 0 || in.Hours > maxAdvanceHours {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("hours must be in (0, %d]", maxAdvanceHours))
			return
		}
		days = s.engine.Advance(in.Hours)
	default:
		writeError(w, http.StatusBadRequest, "action must be pause, resume, speed or advance")
		return
	}
	st := s.engine.Snapshot()
	writeOK(w, http.StatusOK, map[string]any{
		"time":     st.Time,
		"now":      st.Now,
		"days":     days,
		"gameOver": st.Flags.GameOver,
	})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no save store configured")
		return
	}
	snap := s.engine.Snapshot()
	if err := s.store.Save(r.Context(), snap); err != nil {
		s.log.Error("save failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"savedAt": snap.Now.DateISO})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in game.ProjectConfig
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.engine.CreateProject(in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"project": p})
}

func (s *Server) handleProjects(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, map[string]any{"projects": s.engine.Projects()})
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	v, err := s.engine.Project(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"view": v})
}

func (s *Server) handleStartProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.engine.StartProject(id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) handleConfigureStage(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Prefs map[string]float64 `json:"prefs"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.engine.ConfigureStage(id, in.Prefs); err != nil {
		writeDomainError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) handleProjectTeam(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Stage    int    `json:"stage"`
		Role     string `json:"role"`
		MemberID string `json:"memberId"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.engine.SetProjectTeam(id, in.Stage, in.Role, in.MemberID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) handleAbandonProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.engine.AbandonProject(id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) handleProducts(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, map[string]any{"products": s.engine.Products()})
}

func (s *Server) handleUpdateOps(w http.ResponseWriter, r *http.Request) {
	var in game.Ops
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ops, err := s.engine.UpdateOps(chi.URLParam(r, "id"), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"ops": ops})
}

func (s *Server) handleAbandonProduct(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Policy  string `json:"policy"`
		Confirm string `json:"confirm"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.engine.AbandonProduct(id, in.Policy, in.Confirm); err != nil {
		writeDomainError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"id": id, "policy": in.Policy})
}

func (s *Server) handleTeam(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, map[string]any{"team": s.engine.Team()})
}

func (s *Server) handleHire(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CandidateID string `json:"candidateId"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := s.engine.Hire(in.CandidateID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"member": m})
}

func (s *Server) handleFire(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.engine.Fire(id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) handleResearch(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, map[string]any{"research": s.engine.Research()})
}

func (s *Server) handleStartResearch(w http.ResponseWriter, r *http.Request) {
	var in struct {
		NodeID     string `json:"nodeId"`
		AssigneeID string `json:"assigneeId"`
		TargetID   string `json:"targetId"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := s.engine.StartResearch(in.NodeID, in.AssigneeID, in.TargetID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"task": t})
}

func (s *Server) handleMarket(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, map[string]any{"market": s.engine.Market()})
}

func (s *Server) handleStartNegotiation(w http.ResponseWriter, r *http.Request) {
	var in struct {
		LeadID string `json:"leadId"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := s.engine.StartNegotiation(in.LeadID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"negotiation": n})
}

func (s *Server) handleNegotiationMove(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Move string `json:"move"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.engine.NegotiationMove(in.Move)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"result": res})
}

func (s *Server) handleInbox(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, map[string]any{"items": s.engine.Inbox()})
}

func (s *Server) handleResolveInbox(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Choice string `json:"choice"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	msg, err := s.engine.ResolveInbox(chi.URLParam(r, "id"), in.Choice)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"msg": msg})
}

func (s *Server) handlePeekStage(w http.ResponseWriter, _ *http.Request) {
	req, ok := s.engine.PeekStageRequest()
	if !ok {
		writeOK(w, http.StatusOK, map[string]any{"request": nil})
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"request": req})
}

func (s *Server) handlePopStage(w http.ResponseWriter, _ *http.Request) {
	req, ok := s.engine.PopStageRequest()
	if !ok {
		writeOK(w, http.StatusOK, map[string]any{"request": nil})
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"request": req})
}

func (s *Server) handleDrainRatings(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, map[string]any{"ratings": s.engine.DrainRatings()})
}

func (s *Server) handleRecipePreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tags := game.Tags{
		Archetype: strings.TrimSpace(q.Get("archetype")),
		Narrative: strings.TrimSpace(q.Get("narrative")),
		Chain:     strings.TrimSpace(q.Get("chain")),
		Audience:  strings.TrimSpace(q.Get("audience")),
	}
	if tags.Archetype == "" {
		writeError(w, http.StatusBadRequest, "archetype is required")
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"combo": s.engine.PreviewMatch(tags, nil)})
}

func (s *Server) handleCashEstimate(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, map[string]any{"estimate": s.engine.CashEstimate()})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	c := newClient(s.hub, conn)
	c.queue(reportOf(s.engine.Snapshot()))
	if !s.hub.Register(c) {
		_ = conn.Close()
		return
	}
	go c.writePump()
	c.readPump()
	s.log.Debug("stream client left", "remote", r.RemoteAddr)
}

func reportOf(st *game.State) game.DayReport {
	return game.DayReport{
		Now:       st.Now,
		Resources: st.Resources,
		Products:  len(st.Active.Products),
		Projects:  len(st.Active.Projects),
		GameOver:  st.Flags.GameOver,
	}
}
