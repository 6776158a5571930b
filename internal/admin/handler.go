package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	"github.com/JiaLiangChen99/robyn-admin/internal/auth"
	"github.com/JiaLiangChen99/robyn-admin/internal/platform/httpx"
	"github.com/JiaLiangChen99/robyn-admin/internal/rbac"
	"github.com/JiaLiangChen99/robyn-admin/internal/session"
	"github.com/JiaLiangChen99/robyn-admin/internal/view"
)

// SiteConfig carries the handler's presentation settings.
type SiteConfig struct {
	Title           string
	Prefix          string
	Copyright       string
	DefaultLanguage string
	// SupportedLanguages are BCP47-ish codes ("en_US", "zh_CN") matched
	// against set_language requests.
	SupportedLanguages []string
	UploadDir          string
	UploadURLPrefix    string
}

// Handler wires the admin HTTP surface: every request resolves identity
// from the session cookie, authorizes against the permission engine,
// resolves the descriptor and dispatches to the engine.
type Handler struct {
	logger   *slog.Logger
	registry *Registry
	service  *Service
	users    *auth.Service
	perms    *rbac.Engine
	codec    *session.Codec
	views    *view.Engine
	cache    *ListCache
	menus    *MenuManager
	validate *validator.Validate
	site     SiteConfig
	matcher  language.Matcher
	langTags []langEntry
}

type langEntry struct {
	code string
	tag  language.Tag
}

// NewHandler constructs the admin Handler.
func NewHandler(logger *slog.Logger, registry *Registry, service *Service, users *auth.Service, perms *rbac.Engine, codec *session.Codec, views *view.Engine, cache *ListCache, menus *MenuManager, site SiteConfig) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if site.Prefix == "" {
		site.Prefix = "admin"
	}
	if site.DefaultLanguage == "" {
		site.DefaultLanguage = "en_US"
	}
	if len(site.SupportedLanguages) == 0 {
		site.SupportedLanguages = []string{site.DefaultLanguage}
	}
	if menus == nil {
		menus = NewMenuManager()
	}
	entries := make([]langEntry, 0, len(site.SupportedLanguages))
	tags := make([]language.Tag, 0, len(site.SupportedLanguages))
	for _, code := range site.SupportedLanguages {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		entries = append(entries, langEntry{code: code, tag: tag})
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		tags = []language.Tag{language.AmericanEnglish}
		entries = []langEntry{{code: site.DefaultLanguage, tag: language.AmericanEnglish}}
	}
	return &Handler{
		logger:   logger,
		registry: registry,
		service:  service,
		users:    users,
		perms:    perms,
		codec:    codec,
		views:    views,
		cache:    cache,
		menus:    menus,
		validate: validator.New(),
		site:     site,
		matcher:  language.NewMatcher(tags),
		langTags: entries,
	}
}

// MountRoutes registers the admin surface on the router. Static routes are
// registered before the {routeID} wildcard; chi resolves them first.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.dashboard)
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Get("/logout", h.handleLogout)
	r.Post("/upload", h.handleUpload)
	r.Post("/set_language", h.handleSetLanguage)
	r.Route("/{routeID}", func(r chi.Router) {
		r.Get("/", h.modelList)
		r.Get("/search", h.modelSearch)
		r.Get("/data", h.modelData)
		r.Get("/inline_data", h.inlineData)
		r.Post("/add", h.modelAdd)
		r.Post("/batch_delete", h.batchDelete)
		r.Post("/{id}/edit", h.modelEdit)
		r.Post("/{id}/delete", h.modelDelete)
	})
}

// prefixPath joins the configured prefix with a suffix path.
func (h *Handler) prefixPath(suffix string) string {
	if suffix == "" {
		return "/" + h.site.Prefix
	}
	return "/" + h.site.Prefix + suffix
}

// currentUser resolves the request's identity from the session cookie.
// Malformed or absent sessions are anonymous, never an error; a repository
// failure during resolution also yields anonymous so checks fail closed.
func (h *Handler) currentUser(r *http.Request) (*auth.ResolvedUser, session.Payload) {
	payload, ok := h.codec.Decode(r.Header.Get("Cookie"))
	if !ok {
		return nil, session.Payload{}
	}
	user, err := h.users.Resolve(r.Context(), payload.UserID)
	if err != nil {
		h.logger.Error("resolve session user", slog.Int64("user_id", payload.UserID), slog.Any("error", err))
		return nil, payload
	}
	return user, payload
}

// languageFor picks the effective language for the request.
func (h *Handler) languageFor(p session.Payload) string {
	if p.Language == "" {
		return h.site.DefaultLanguage
	}
	return h.matchLanguage(p.Language)
}

// matchLanguage maps a requested code onto the closest supported one,
// falling back to the default.
func (h *Handler) matchLanguage(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return h.site.DefaultLanguage
	}
	_, index, conf := h.matcher.Match(tag)
	if conf == language.No || index >= len(h.langTags) {
		return h.site.DefaultLanguage
	}
	return h.langTags[index].code
}

// --- HTML shells ---

type modelEntry struct {
	RouteID     string
	VerboseName string
}

type dashboardData struct {
	Prefix   string
	Username string
	Menus    []MenuItem
	Models   []modelEntry
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	user, payload := h.currentUser(r)
	if user == nil {
		http.Redirect(w, r, h.prefixPath("/login"), http.StatusTemporaryRedirect)
		return
	}
	// The dashboard lists only models this user may view.
	var models []modelEntry
	for _, desc := range h.registry.All() {
		if h.perms.Authorize(r.Context(), user, desc.RouteID(), rbac.ActionView) {
			models = append(models, modelEntry{RouteID: desc.RouteID(), VerboseName: desc.VerboseName})
		}
	}
	h.render(w, r, "index.html", payload, dashboardData{
		Prefix:   h.prefixPath(""),
		Username: user.Identity.Username,
		Menus:    h.menus.Tree(),
		Models:   models,
	})
}

type loginData struct {
	Error string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	user, payload := h.currentUser(r)
	if user != nil {
		http.Redirect(w, r, h.prefixPath(""), http.StatusTemporaryRedirect)
		return
	}
	h.render(w, r, "login.html", payload, loginData{})
}

type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	_, payload := h.currentUser(r)
	form := loginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if err := h.validate.Struct(form); err != nil {
		h.render(w, r, "login.html", payload, loginData{Error: "username and password are required"})
		return
	}
	user, err := h.users.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		// Generic message: never disclose whether the username exists.
		h.render(w, r, "login.html", payload, loginData{Error: "invalid username or password"})
		return
	}
	cookie := h.codec.Encode(session.Payload{UserID: user.ID, Language: h.languageFor(payload)})
	w.Header().Set("Set-Cookie", cookie)
	http.Redirect(w, r, h.prefixPath(""), http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Set-Cookie", h.codec.EncodeExpired())
	http.Redirect(w, r, h.prefixPath("/login"), http.StatusSeeOther)
}

type modelListData struct {
	Prefix         string
	RouteID        string
	VerboseName    string
	FrontendConfig map[string]any
}

func (h *Handler) modelList(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeID")
	user, payload := h.currentUser(r)
	if user == nil {
		http.Redirect(w, r, h.prefixPath("/login"), http.StatusSeeOther)
		return
	}
	if !h.perms.Authorize(r.Context(), user, routeID, rbac.ActionView) {
		http.Error(w, "permission denied", http.StatusForbidden)
		return
	}
	desc, ok := h.registry.Resolve(routeID)
	if !ok {
		http.Error(w, "model not found", http.StatusNotFound)
		return
	}
	config := desc.FrontendConfig()
	config["language"] = h.languageFor(payload)
	h.render(w, r, "model_list.html", payload, modelListData{
		Prefix:         h.prefixPath(""),
		RouteID:        routeID,
		VerboseName:    desc.VerboseName,
		FrontendConfig: config,
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, payload session.Payload, data any) {
	err := h.views.Render(w, name, view.TemplateData{
		SiteTitle:   h.site.Title,
		Copyright:   h.site.Copyright,
		Language:    h.languageFor(payload),
		CurrentPath: r.URL.Path,
		Data:        data,
	})
	if err != nil {
		h.logger.Error("render template", slog.String("template", name), slog.Any("error", err))
	}
}

// --- JSON endpoints ---

func (h *Handler) modelSearch(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeID")
	user, _ := h.currentUser(r)
	if user == nil {
		httpx.RespondError(w, httpx.ErrUnauthenticated)
		return
	}
	desc, ok := h.registry.Resolve(routeID)
	if !ok {
		httpx.RespondError(w, httpx.ErrRouteNotFound)
		return
	}
	// Search parameters arrive as search_<field>; only declared search
	// fields are collected.
	filters := make(map[string]string)
	query := r.URL.Query()
	for _, name := range desc.SearchFieldNames() {
		if value := query.Get("search_" + name); value != "" {
			filters[name] = value
		}
	}
	data, err := h.service.Search(r.Context(), desc, filters)
	if err != nil {
		h.logger.Error("model search", slog.String("route_id", routeID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": data})
}

func (h *Handler) modelData(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeID")
	user, _ := h.currentUser(r)
	if user == nil {
		httpx.RespondError(w, httpx.ErrUnauthenticated)
		return
	}
	desc, ok := h.registry.Resolve(routeID)
	if !ok {
		httpx.RespondError(w, httpx.ErrRouteNotFound)
		return
	}
	params := ParseListParams(r.URL.Query())
	key, err := h.cache.BuildKey(r.Context(), routeID, params.CacheKey())
	if err != nil {
		h.logger.Warn("list cache key", slog.Any("error", err))
		key = ""
	}
	build := func(ctx context.Context) ([]byte, error) {
		result, err := h.service.List(ctx, desc, params)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	}
	var payload []byte
	if key != "" {
		payload, err = h.cache.GetOrBuild(r.Context(), key, build)
	} else {
		payload, err = build(r.Context())
	}
	if err != nil {
		h.logger.Error("model data", slog.String("route_id", routeID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (h *Handler) inlineData(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeID")
	user, _ := h.currentUser(r)
	if user == nil {
		httpx.RespondError(w, httpx.ErrUnauthenticated)
		return
	}
	desc, ok := h.registry.Resolve(routeID)
	if !ok {
		httpx.RespondError(w, httpx.ErrRouteNotFound)
		return
	}
	query := r.URL.Query()
	parentID := query.Get("parent_id")
	inlineModel := query.Get("inline_model")
	if parentID == "" || inlineModel == "" {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": "missing parameters"})
		return
	}
	result, err := h.service.ResolveInline(r.Context(), desc, inlineModel, parentID, query.Get("sort"), query.Get("order"))
	if err != nil {
		h.logger.Warn("inline data", slog.String("route_id", routeID), slog.String("inline", inlineModel), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    result.Data,
		"total":   result.Total,
		"fields":  result.Fields,
	})
}

// --- mutations ---

func (h *Handler) modelAdd(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeID")
	user, _ := h.currentUser(r)
	if user == nil {
		httpx.RespondError(w, httpx.ErrUnauthenticated)
		return
	}
	if !h.perms.Authorize(r.Context(), user, routeID, rbac.ActionAdd) {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	desc, ok := h.registry.Resolve(routeID)
	if !ok {
		httpx.RespondError(w, httpx.ErrRouteNotFound)
		return
	}
	if !desc.EnableAdd {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	if err := h.service.Create(r.Context(), desc, r.PostForm, user.Identity.ID); err != nil {
		h.logger.Error("model add", slog.String("route_id", routeID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.cache.Bump(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) modelEdit(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeID")
	id := chi.URLParam(r, "id")
	user, _ := h.currentUser(r)
	if user == nil {
		http.Redirect(w, r, h.prefixPath("/login"), http.StatusSeeOther)
		return
	}
	desc, ok := h.registry.Resolve(routeID)
	if !ok {
		httpx.RespondError(w, httpx.ErrRouteNotFound)
		return
	}
	if !desc.EnableEdit {
		httpx.JSON(w, http.StatusForbidden, map[string]string{"error": "model not allow edit"})
		return
	}
	if !h.perms.Authorize(r.Context(), user, routeID, rbac.ActionEdit) {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	if err := h.service.Update(r.Context(), desc, id, r.PostForm, user.Identity.ID); err != nil {
		h.logger.Error("model edit", slog.String("route_id", routeID), slog.String("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.cache.Bump(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "update success"})
}

func (h *Handler) modelDelete(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeID")
	id := chi.URLParam(r, "id")
	user, _ := h.currentUser(r)
	if user == nil {
		httpx.RespondError(w, httpx.ErrUnauthenticated)
		return
	}
	desc, ok := h.registry.Resolve(routeID)
	if !ok {
		httpx.RespondError(w, httpx.ErrRouteNotFound)
		return
	}
	if !h.perms.Authorize(r.Context(), user, routeID, rbac.ActionDelete) {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	if err := h.service.Delete(r.Context(), desc, id, user.Identity.ID); err != nil {
		h.logger.Error("model delete", slog.String("route_id", routeID), slog.String("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.cache.Bump(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) batchDelete(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeID")
	user, _ := h.currentUser(r)
	if user == nil {
		httpx.RespondCode(w, http.StatusUnauthorized, "not logged in", false)
		return
	}
	desc, ok := h.registry.Resolve(routeID)
	if !ok {
		httpx.RespondCode(w, http.StatusNotFound, "model not found", false)
		return
	}
	if !h.perms.Authorize(r.Context(), user, routeID, rbac.ActionDelete) {
		httpx.RespondCode(w, http.StatusForbidden, "permission denied", false)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.RespondCode(w, http.StatusBadRequest, "invalid form", false)
		return
	}
	ids := r.PostForm["ids[]"]
	if len(ids) == 0 {
		httpx.RespondCode(w, http.StatusBadRequest, "no records selected", false)
		return
	}
	deleted := h.service.BatchDelete(r.Context(), desc, ids, user.Identity.ID)
	h.cache.Bump(r.Context())
	httpx.RespondCode(w, http.StatusOK, fmt.Sprintf("deleted %d records", deleted), true)
}

func (h *Handler) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	requested := r.PostFormValue("language")
	if requested == "" {
		requested = h.site.DefaultLanguage
	}
	// Preserve the rest of the session payload; only language changes.
	payload, _ := h.codec.Decode(r.Header.Get("Cookie"))
	payload.Language = h.matchLanguage(requested)
	w.Header().Set("Set-Cookie", h.codec.Encode(payload))
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "language": payload.Language})
}
