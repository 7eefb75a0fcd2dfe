package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"wine/internal/animation"
	"wine/internal/dataset"
	"wine/internal/feature"
	"wine/internal/guide"
	"wine/internal/history"
	"wine/internal/predict"

	"github.com/google/uuid"
)

// maxBodyBytes bounds JSON prediction requests.
const maxBodyBytes = 64 << 10

//go:embed templates/*.html
var templates embed.FS

// Predictor runs one prediction for a feature record.
type Predictor interface {
	Predict(ctx context.Context, r feature.Record) (predict.Prediction, error)
	ModelName() string
}

// Router serves the prediction page and the API v1 endpoints.
type Router struct {
	// predictor: invoker holding the loaded model.
	predictor Predictor
	// guide: feature guide rules; nil disables notes.
	guide *guide.Guide
	// history: recent predictions per browser session.
	history *history.Repository
	// dataset: prediction log.
	dataset dataset.DatasetRepository
	// animations: decorative animations; nil disables them.
	animations *animation.Library
	// static: directory with static files. Empty disables static serving.
	static string
	// sessionCookie: name of the cookie identifying a browser session.
	sessionCookie string

	page *template.Template
}

// predictionResponse is the body of POST /api/v1/predictions.
type predictionResponse struct {
	Model   string   `json:"model"`
	Score   float64  `json:"score"`
	Quality int      `json:"quality"`
	Display string   `json:"display"`
	Notes   []string `json:"notes"`
}

// fieldResponse describes one slider in GET /api/v1/features.
type fieldResponse struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Help    string  `json:"help"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Step    float64 `json:"step"`
}

// Mux returns a *http.ServeMux with registered handlers:
// - GET /: prediction page
// - POST /predict: prediction trigger from the page form
// - POST /api/v1/predictions: prediction from a JSON record
// - GET /api/v1/features: feature schema
// - GET /api/v1/history: predictions of the caller's session
// - GET /api/v1/animations/{name}: decorative animation document
// - GET /static/...: static files (if enabled)
func (rt *Router) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", rt.pageHandler)
	mux.HandleFunc("POST /predict", rt.formPredictHandler)
	mux.HandleFunc("POST /api/v1/predictions", rt.predictHandler)
	mux.HandleFunc("GET /api/v1/features", rt.featuresHandler)
	mux.HandleFunc("GET /api/v1/history", rt.historyHandler)
	mux.HandleFunc("GET /api/v1/animations/{name}", rt.animationHandler)

	if len(rt.static) != 0 {
		fs := http.FileServer(http.Dir(rt.static))
		mux.Handle("GET /static/", http.StripPrefix("/static/", fs))
	}

	return mux
}

// pageHandler renders the page with every slider at its default.
func (rt *Router) pageHandler(w http.ResponseWriter, r *http.Request) {
	session := rt.session(r)
	rt.render(w, r, http.StatusOK, rt.newPage(r, session, feature.NewCollector()))
}

// formPredictHandler handles the Predict button. Form values are clamped into
// a record, the record is predicted and the page is rendered with the result.
func (rt *Router) formPredictHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		slog.Warn("Unable to parse prediction form", "error", err)
	}

	session := rt.ensureSession(w, r)
	collector := feature.FromValues(r.PostForm)
	rec := collector.Record()

	p, err := rt.predictor.Predict(r.Context(), rec)
	if err != nil {
		slog.Error("Prediction failed", "error", err)
		page := rt.newPage(r, session, collector)
		page.Error = "Prediction failed, please try again later."
		rt.render(w, r, http.StatusInternalServerError, page)
		return
	}
	rt.remember(session, rec, p)

	page := rt.newPage(r, session, collector)
	page.Result = &p
	page.Notes = rt.guide.Notes(rec)
	rt.render(w, r, http.StatusOK, page)
}

// predictHandler handles JSON prediction requests. The body is an object of
// feature name to number; absent features take their defaults, values are
// clamped, null values and unknown features are rejected.
func (rt *Router) predictHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		slog.Warn("Unable to read prediction request body", "error", err)
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	collector, err := feature.FromJSON(body)
	if err != nil {
		slog.Warn("Invalid prediction request", "error", err)
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}
	rec := collector.Record()

	p, err := rt.predictor.Predict(r.Context(), rec)
	if err != nil {
		slog.Error("Prediction failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	rt.remember(rt.ensureSession(w, r), rec, p)

	notes := rt.guide.Notes(rec)
	if notes == nil {
		notes = []string{}
	}
	writeJSON(w, predictionResponse{
		Model:   rt.predictor.ModelName(),
		Score:   p.Score,
		Quality: p.Quality,
		Display: predict.Display(p),
		Notes:   notes,
	})
}

// featuresHandler returns the feature schema in training order.
func (rt *Router) featuresHandler(w http.ResponseWriter, r *http.Request) {
	fields := feature.Fields()
	out := make([]fieldResponse, len(fields))
	for i, f := range fields {
		out[i] = fieldResponse{
			Name:    f.Name,
			Label:   f.Label,
			Help:    f.Help,
			Min:     f.Min,
			Max:     f.Max,
			Default: f.Default,
			Step:    f.Step,
		}
	}
	writeJSON(w, out)
}

// historyHandler returns the predictions of the caller's session, oldest first.
func (rt *Router) historyHandler(w http.ResponseWriter, r *http.Request) {
	entries := []history.Entry{}
	if session := rt.session(r); session != "" {
		if found, ok := rt.history.Get(session); ok {
			entries = found
		}
	}
	writeJSON(w, entries)
}

// animationHandler serves a cached animation, or 404 when it is unavailable.
func (rt *Router) animationHandler(w http.ResponseWriter, r *http.Request) {
	if rt.animations == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	doc := rt.animations.Get(r.Context(), r.PathValue("name"))
	if doc == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(doc)
}

func (rt *Router) remember(session string, rec feature.Record, p predict.Prediction) {
	rt.history.Append(session, history.Entry{
		Time:     now(),
		Features: rec.Map(),
		Score:    p.Score,
		Quality:  p.Quality,
	})
	rt.dataset.Append(session, rec, p)
}

// session returns the session token from the request cookie, if any.
func (rt *Router) session(r *http.Request) string {
	cookie, err := r.Cookie(rt.sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// ensureSession returns the session token, issuing a new cookie when the
// request has none.
func (rt *Router) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if session := rt.session(r); session != "" {
		return session
	}
	session := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     rt.sessionCookie,
		Value:    session,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return session
}

func (rt *Router) render(w http.ResponseWriter, r *http.Request, status int, page *pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := rt.page.ExecuteTemplate(w, "index.html", page); err != nil && !errors.Is(err, r.Context().Err()) {
		slog.Error("Unable to render page", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Warn("Unable to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// NewRouter creates the router. guide and animations may be nil.
func NewRouter(
	static string,
	sessionCookie string,
	predictor Predictor,
	guide *guide.Guide,
	historyRepo *history.Repository,
	datasetRepo dataset.DatasetRepository,
	animations *animation.Library,
) *Router {
	if datasetRepo == nil {
		datasetRepo = dataset.NopDatasetRepository{}
	}
	return &Router{
		predictor:     predictor,
		guide:         guide,
		history:       historyRepo,
		dataset:       datasetRepo,
		animations:    animations,
		static:        static,
		sessionCookie: sessionCookie,
		page:          template.Must(template.New("").Funcs(pageFuncs).ParseFS(templates, "templates/*.html")),
	}
}
