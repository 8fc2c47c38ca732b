package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/emiliopalmerini/agentboard/internal/configadapter"
	"github.com/emiliopalmerini/agentboard/internal/domain"
	"github.com/emiliopalmerini/agentboard/internal/notify"
	"github.com/emiliopalmerini/agentboard/internal/ports"
	"github.com/emiliopalmerini/agentboard/internal/tracker"
)

// Transcripts is the read side used when no messages are persisted for
// a session.
type Transcripts interface {
	ReadSessionMessages(sessionID, projectPath string) []*domain.Message
}

type Handler struct {
	manager     *tracker.Manager
	messages    ports.MessageRepository
	customCLIs  ports.CustomCLIRepository
	transcripts Transcripts
	registry    *configadapter.Registry
	factory     *configadapter.Factory
	notifier    *notify.Notifier
}

func NewHandler(
	manager *tracker.Manager,
	messages ports.MessageRepository,
	customCLIs ports.CustomCLIRepository,
	transcripts Transcripts,
	registry *configadapter.Registry,
	factory *configadapter.Factory,
	notifier *notify.Notifier,
) *Handler {
	return &Handler{
		manager:     manager,
		messages:    messages,
		customCLIs:  customCLIs,
		transcripts: transcripts,
		registry:    registry,
		factory:     factory,
		notifier:    notifier,
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// IngestEvent accepts one lifecycle event from a CLI hook.
func (h *Handler) IngestEvent(w http.ResponseWriter, r *http.Request) {
	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	payload, err := domain.ParseHookPayload(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing hook_event_name or session_id")
		return
	}

	if err := h.manager.HandleEvent(r.Context(), payload); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UnixMilli(),
	})
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.manager.GetAllSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}
	respondJSON(w, http.StatusOK, sessions)
}

func (h *Handler) ListSessionEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	events, err := h.manager.GetSessionEvents(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	respondJSON(w, http.StatusOK, events)
}

// ListSessionMessages returns persisted chat turns, falling back to a
// direct transcript read when none were stored.
func (h *Handler) ListSessionMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	messages, err := h.messages.ListBySession(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(messages) == 0 {
		if sess, err := h.manager.GetSession(r.Context(), id); err == nil && sess != nil {
			messages = h.transcripts.ReadSessionMessages(id, sess.Project)
		}
	}
	if messages == nil {
		messages = []*domain.Message{}
	}
	respondJSON(w, http.StatusOK, messages)
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.manager.CloseSession(r.Context(), id); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.manager.DeleteSession(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) ListCustomCLIs(w http.ResponseWriter, r *http.Request) {
	clis, err := h.customCLIs.GetAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if clis == nil {
		clis = []*domain.CustomCLI{}
	}
	respondJSON(w, http.StatusOK, clis)
}

func (h *Handler) SaveCustomCLI(w http.ResponseWriter, r *http.Request) {
	var cli domain.CustomCLI
	if err := json.NewDecoder(r.Body).Decode(&cli); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if cli.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if cli.ID == "" {
		cli.ID = uuid.NewString()
		cli.CreatedAt = time.Now().UnixMilli()
	}

	if err := h.customCLIs.Save(r.Context(), &cli); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, &cli)
}

func (h *Handler) DeleteCustomCLI(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.customCLIs.Delete(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) ListConfigs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.registry.Configs())
}

// adapterFor resolves the adapter for a path parameter, consulting the
// custom_cli_id query parameter when the CLI type is "other".
func (h *Handler) adapterFor(r *http.Request) (configadapter.Adapter, string) {
	cliType := domain.CLIType(chi.URLParam(r, "cli"))

	if cliType == domain.CLIOther {
		id := r.URL.Query().Get("custom_cli_id")
		if id == "" {
			return nil, "custom_cli_id is required for custom CLIs"
		}
		cli, err := h.customCLIs.GetByID(r.Context(), id)
		if err != nil || cli == nil {
			return nil, "custom CLI not found"
		}
		if a := h.factory.ForCustom(cli); a != nil {
			return a, ""
		}
		return nil, "custom CLI has no config path"
	}

	if a := h.factory.For(cliType); a != nil {
		return a, ""
	}
	return nil, "unsupported CLI type"
}

func (h *Handler) SaveMCP(w http.ResponseWriter, r *http.Request) {
	adapter, errMsg := h.adapterFor(r)
	if adapter == nil {
		respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	var mcp configadapter.MCPServer
	if err := json.NewDecoder(r.Body).Decode(&mcp); err != nil || mcp.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid MCP server body")
		return
	}
	if err := adapter.SaveMCP(mcp); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) DeleteMCP(w http.ResponseWriter, r *http.Request) {
	adapter, errMsg := h.adapterFor(r)
	if adapter == nil {
		respondError(w, http.StatusBadRequest, errMsg)
		return
	}
	if err := adapter.DeleteMCP(chi.URLParam(r, "name")); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) SaveSkill(w http.ResponseWriter, r *http.Request) {
	adapter, errMsg := h.adapterFor(r)
	if adapter == nil {
		respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	var skill configadapter.Skill
	if err := json.NewDecoder(r.Body).Decode(&skill); err != nil || skill.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid skill body")
		return
	}
	if err := adapter.SaveSkill(skill); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	adapter, errMsg := h.adapterFor(r)
	if adapter == nil {
		respondError(w, http.StatusBadRequest, errMsg)
		return
	}
	if err := adapter.DeleteSkill(chi.URLParam(r, "name")); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) GetNotificationSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.notifier.Settings())
}

func (h *Handler) PutNotificationSettings(w http.ResponseWriter, r *http.Request) {
	var settings notify.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.notifier.UpdateSettings(settings); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, settings)
}
