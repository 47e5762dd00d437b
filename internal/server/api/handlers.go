package api

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/server/auth"
	"github.com/dmitrijs2005/dreamtracer/internal/server/store"
	"github.com/go-chi/chi/v5"
)

// maxAudioBytes caps accepted audio uploads.
const maxAudioBytes = 25 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /auth/firebase-auth
func (s *Server) handleFirebaseAuth(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirebaseToken string `json:"firebase_token"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.FirebaseToken == "" {
		s.writeError(w, r, http.StatusUnprocessableEntity, "firebase_token is required")
		return
	}

	user := s.store.UserForFirebaseToken(body.FirebaseToken)
	token, err := auth.GenerateToken(user.ID, s.secretKey, s.tokenValidity)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, models.AuthToken{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokenValidity.Seconds()),
		User:        user,
	})
}

func (s *Server) handleCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if !s.decode(w, r, &payload) {
		return
	}
	u, err := s.store.CompleteOnboarding(userID(r.Context()), payload)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, u)
}

func (s *Server) handleCreateDream(w http.ResponseWriter, r *http.Request) {
	var d models.ServerDream
	if !s.decode(w, r, &d) {
		return
	}
	if d.DreamDate == "" {
		s.writeError(w, r, http.StatusUnprocessableEntity, "dream_date is required")
		return
	}
	s.writeJSON(w, r, http.StatusCreated, s.store.UpsertDream(userID(r.Context()), d))
}

// POST /dreams/sync upserts a client-side record by its id.
func (s *Server) handleSyncDream(w http.ResponseWriter, r *http.Request) {
	var d models.ServerDream
	if !s.decode(w, r, &d) {
		return
	}
	if d.ID == "" || d.DreamDate == "" {
		s.writeError(w, r, http.StatusUnprocessableEntity, "id and dream_date are required")
		return
	}
	s.writeJSON(w, r, http.StatusOK, s.store.UpsertDream(userID(r.Context()), d))
}

func (s *Server) handleListDreams(w http.ResponseWriter, r *http.Request) {
	skip, ok1 := intQuery(r, "skip", 0)
	limit, ok2 := intQuery(r, "limit", 20)
	if !ok1 || !ok2 {
		s.writeError(w, r, http.StatusUnprocessableEntity, "skip and limit must be non-negative integers")
		return
	}

	q := r.URL.Query()
	f := models.DreamFilter{
		Skip:          skip,
		Limit:         limit,
		StartDate:     q.Get("start_date"),
		EndDate:       q.Get("end_date"),
		DreamType:     q.Get("dream_type"),
		EmotionFilter: q["emotion_filter"],
	}
	s.writeJSON(w, r, http.StatusOK, s.store.ListDreams(userID(r.Context()), f))
}

func (s *Server) handleGetDream(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.GetDream(userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, d)
}

func (s *Server) handleUpdateDream(w http.ResponseWriter, r *http.Request) {
	var patch models.DreamPatch
	if !s.decode(w, r, &patch) {
		return
	}
	d, err := s.store.UpdateDream(userID(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, d)
}

func (s *Server) handleDeleteDream(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteDream(userID(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /dreams/upload-audio takes a multipart audio_file part. The dev
// backend only measures it.
func (s *Server) handleUploadAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	file, header, err := r.FormFile("audio_file")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "audio_file part is required")
		return
	}
	defer file.Close()

	n, err := io.Copy(io.Discard, file)
	if err != nil {
		s.writeError(w, r, http.StatusRequestEntityTooLarge, "audio file too large")
		return
	}

	s.writeJSON(w, r, http.StatusOK, models.AudioUpload{
		AudioFilePath: "audio/" + userID(r.Context()) + "/" + filepath.Base(header.Filename),
		FileSize:      n,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.Analyze(userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusAccepted, task)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.Analysis(userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleSaveAnalysis(w http.ResponseWriter, r *http.Request) {
	var res models.AnalysisResult
	if !s.decode(w, r, &res) {
		return
	}
	if err := s.store.SaveAnalysis(userID(r.Context()), chi.URLParam(r, "id"), res); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.Task(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, task)
}

func (s *Server) handleDailyInsight(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.store.DailyInsight(userID(r.Context())))
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	days, ok := intQuery(r, "days", 30)
	if !ok || days == 0 {
		s.writeError(w, r, http.StatusUnprocessableEntity, "days must be a positive integer")
		return
	}
	s.writeJSON(w, r, http.StatusOK, s.store.Patterns(userID(r.Context()), days))
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	minSimilarity := 0.3
	if raw := r.URL.Query().Get("min_similarity"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			s.writeError(w, r, http.StatusUnprocessableEntity, "min_similarity must be between 0 and 1")
			return
		}
		minSimilarity = v
	}
	s.writeJSON(w, r, http.StatusOK, s.store.Network(userID(r.Context()), minSimilarity))
}

func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	style := r.URL.Query().Get("art_style")
	v, err := s.store.Visualize(userID(r.Context()), chi.URLParam(r, "id"), style)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, map[string]any{"visualization": v})
}

func (s *Server) handleDreamVisualizations(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.Visualizations(userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]any{"visualizations": list})
}

func (s *Server) handleDeleteVisualization(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteVisualization(userID(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	skip, ok1 := intQuery(r, "skip", 0)
	limit, ok2 := intQuery(r, "limit", 20)
	if !ok1 || !ok2 {
		s.writeError(w, r, http.StatusUnprocessableEntity, "skip and limit must be non-negative integers")
		return
	}
	s.writeJSON(w, r, http.StatusOK, s.store.Gallery(userID(r.Context()), skip, limit))
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]any{"styles": store.Styles})
}

// GET /static/* answers with an empty PNG for any generated image path.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req models.ShareRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.SharedText == "" {
		s.writeError(w, r, http.StatusUnprocessableEntity, "shared_text is required")
		return
	}
	p, err := s.store.CreatePost(userID(r.Context()), req)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, p)
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	skip, ok1 := intQuery(r, "skip", 0)
	limit, ok2 := intQuery(r, "limit", 20)
	if !ok1 || !ok2 {
		s.writeError(w, r, http.StatusUnprocessableEntity, "skip and limit must be non-negative integers")
		return
	}
	s.writeJSON(w, r, http.StatusOK, s.store.Posts(skip, limit))
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.store.Plan(userID(r.Context())))
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	var u models.UsageUpdate
	if !s.decode(w, r, &u) {
		return
	}
	p, err := s.store.AddUsage(userID(r.Context()), u)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, p)
}
