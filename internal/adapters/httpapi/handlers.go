package httpapi

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/routecard/internal/core/quantity"
	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
)

type loginRequest struct {
	Password string `json:"password"`
}

type sessionResponse struct {
	User        string    `json:"user"`
	Role        string    `json:"role"`
	Degraded    bool      `json:"degraded"`
	LastError   string    `json:"lastError,omitempty"`
	LastSavedAt time.Time `json:"lastSavedAt"`
}

type cardResponse struct {
	Card         *models.Card          `json:"card"`
	ProcessState models.ProcessState   `json:"processState"`
	Current      *models.Operation     `json:"current,omitempty"`
	Results      quantity.FinalResults `json:"results"`
	Children     []cardResponse        `json:"children,omitempty"`
}

type actionResponse struct {
	Applied    bool              `json:"applied"`
	Reason     string            `json:"reason,omitempty"`
	Operation  *models.Operation `json:"operation"`
	CardStatus models.Status     `json:"cardStatus"`
	Persisted  bool              `json:"persisted"`
}

type countsRequest struct {
	ItemID string  `json:"itemId"`
	Name   *string `json:"name"`
	Good   *int    `json:"good"`
	Scrap  *int    `json:"scrap"`
	Hold   *int    `json:"hold"`
}

type logResponse struct {
	Entries         []models.LogEntry `json:"entries"`
	InitialSnapshot *models.Card      `json:"initialSnapshot"`
}

type uploadRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
	Size    int64  `json:"size"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	var req loginRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := s.auth.Login(r.Context(), req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, s.session(sess))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		_ = s.auth.Logout(r.Context(), cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	cookie, _ := r.Cookie(SessionCookie)
	sess, err := s.auth.Resolve(r.Context(), cookie.Value)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session(sess))
}

func (s *Server) session(sess *primary.Session) sessionResponse {
	status := s.cards.SyncStatus()
	resp := sessionResponse{
		Degraded:    status.Degraded,
		LastError:   status.LastError,
		LastSavedAt: status.LastSavedAt,
	}
	if sess.User != nil {
		resp.User = sess.User.Name
		resp.Role = sess.User.Role
	}
	return resp
}

func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	col, err := s.data.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, col)
}

func (s *Server) handlePostData(w http.ResponseWriter, r *http.Request) {
	incoming := &models.Collection{}
	if err := decode(r, incoming); err != nil {
		s.fail(w, r, err)
		return
	}
	col, err := s.data.Replace(r.Context(), incoming)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, col)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := primary.CardFilters{
		Status:       models.Status(q.Get("status")),
		ProcessState: models.ProcessState(q.Get("state")),
		GroupID:      q.Get("group"),
		Query:        q.Get("q"),
	}
	filters.Archived, _ = strconv.ParseBool(q.Get("archived"))
	filters.IncludeChildren, _ = strconv.ParseBool(q.Get("children"))

	views, err := s.cards.ListCards(r.Context(), filters)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]cardResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toCardResponse(v))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	view, err := s.cards.GetCard(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCardResponse(view))
}

func toCardResponse(v *primary.CardView) cardResponse {
	resp := cardResponse{
		Card:         v.Card,
		ProcessState: v.ProcessState,
		Current:      v.Current,
		Results:      v.Results,
	}
	for _, child := range v.Children {
		resp.Children = append(resp.Children, toCardResponse(child))
	}
	return resp
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	res, err := s.cards.ApplyOperationAction(r.Context(), primary.OperationActionRequest{
		CardRef: r.PathValue("id"),
		OpRef:   r.PathValue("opId"),
		Action:  r.PathValue("action"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if !res.Applied {
		status = http.StatusConflict
	}
	writeJSON(w, status, actionResponse{
		Applied:    res.Applied,
		Reason:     res.Reason,
		Operation:  res.Operation,
		CardStatus: res.CardStatus,
		Persisted:  res.Persisted,
	})
}

// handleCounts records aggregate counters, or one item's counters when
// itemId is given.
func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	var req countsRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	cardRef, opRef := r.PathValue("id"), r.PathValue("opId")

	if req.ItemID != "" {
		item, err := s.cards.RecordItem(r.Context(), primary.RecordItemRequest{
			CardRef: cardRef,
			OpRef:   opRef,
			ItemRef: req.ItemID,
			Name:    req.Name,
			Good:    req.Good,
			Scrap:   req.Scrap,
			Hold:    req.Hold,
		})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
		return
	}

	op, err := s.cards.RecordCounts(r.Context(), primary.RecordCountsRequest{
		CardRef: cardRef,
		OpRef:   opRef,
		Good:    req.Good,
		Scrap:   req.Scrap,
		Hold:    req.Hold,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, op)
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	log, err := s.cards.GetCardLog(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logResponse{Entries: log.Entries, InitialSnapshot: log.InitialSnapshot})
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.data.ListAttachments(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	meta, err := s.data.AddAttachment(r.Context(), primary.AddAttachmentRequest{
		CardRef: r.PathValue("id"),
		Name:    req.Name,
		Type:    req.Type,
		Content: req.Content,
		Size:    req.Size,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, meta)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	file, err := s.data.GetAttachment(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	_, payload, ok := strings.Cut(file.Content, ";base64,")
	if !ok {
		s.fail(w, r, primary.ErrAttachmentNotFound)
		return
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	contentType := file.Type
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+strings.ReplaceAll(file.Name, "\"", "")+"\"")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.cards.SyncStatus()
	code := http.StatusOK
	state := "ok"
	if status.Degraded {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	writeJSON(w, code, map[string]string{"status": state, "lastError": status.LastError})
}
