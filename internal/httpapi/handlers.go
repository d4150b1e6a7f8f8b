package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nguyentantai21042004/study-flow/internal/export"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/media"
	"github.com/nguyentantai21042004/study-flow/internal/processor"
	"github.com/nguyentantai21042004/study-flow/internal/session"
	"github.com/nguyentantai21042004/study-flow/internal/studyguide"
)

// memoryLimit is how much of a multipart form is held in memory before
// spilling to disk.
const memoryLimit = 32 << 20

type createResponse struct {
	ID     string         `json:"id"`
	Status session.Status `json:"status"`
}

type sessionResponse struct {
	session.Session
	Sections []studyguide.Section `json:"sections,omitempty"`
	Missing  []studyguide.Kind    `json:"missing_sections,omitempty"`
}

type questionRequest struct {
	Question string `json:"question"`
}

type answerResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"mode":       s.mode,
		"summarizer": s.summary,
		"time":       time.Now().UTC(),
	})
}

// createSession accepts an upload or a URL and starts processing in the background.
func (s *Server) createSession(c *gin.Context) {
	ctx := requestContext(c)
	if err := c.Request.ParseMultipartForm(memoryLimit); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.respondError(c, err)
		} else {
			s.respondError(c, InvalidInput("", "malformed form").WithCause(err))
		}
		return
	}
	source := media.Kind(strings.ToLower(strings.TrimSpace(c.PostForm("source"))))

	var req processor.Request
	var fingerprint string

	switch source {
	case media.KindURL:
		rawURL := strings.TrimSpace(c.PostForm("url"))
		if err := media.ValidateURL(rawURL); err != nil {
			s.respondError(c, InvalidInput("url", "a http(s) video URL is required").WithCause(err))
			return
		}
		req = processor.Request{Name: rawURL, Source: media.KindURL, URL: rawURL}

	case media.KindAudio, media.KindVideo:
		upload, name, err := s.saveUpload(c)
		if err != nil {
			s.respondError(c, err)
			return
		}
		if fingerprint, err = session.FingerprintFile(upload.Path); err != nil {
			s.logger.Warn(ctx, "Failed to fingerprint upload: %v", err)
		}
		req = processor.Request{Name: name, Source: upload.Kind, Path: upload.Path}

	default:
		s.respondError(c, InvalidInput("source", "source must be audio, video or url"))
		return
	}

	if name := strings.TrimSpace(c.PostForm("name")); name != "" {
		req.Name = name
	}

	sess, err := s.store.Create(ctx, session.Session{
		Name:        req.Name,
		Source:      string(source),
		Fingerprint: fingerprint,
	})
	if err != nil {
		removeUpload(req)
		s.respondError(c, err)
		return
	}

	s.start(sess.ID, req)
	c.JSON(http.StatusAccepted, createResponse{ID: sess.ID, Status: sess.Status})
}

// saveUpload copies the multipart file into the temp folder under admission
// control and returns it with its client-side name.
func (s *Server) saveUpload(c *gin.Context) (media.File, string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return media.File{}, "", InvalidInput("file", "an audio or video file is required").WithCause(err)
	}
	limit := s.cfg.Server.MaxUploadBytes()
	if err := media.Admit(fh.Size, limit); err != nil {
		return media.File{}, "", err
	}

	f, err := fh.Open()
	if err != nil {
		return media.File{}, "", err
	}
	defer f.Close()

	if err := os.MkdirAll(s.cfg.Paths.Temp, 0755); err != nil {
		return media.File{}, "", err
	}
	name := filepath.Base(fh.Filename)
	upload, err := media.SaveUpload(f, s.cfg.Paths.Temp, name, limit)
	return upload, name, err
}

// start runs the pipeline for a created session. The upload belongs to this
// goroutine and is removed when it ends.
func (s *Server) start(id string, req processor.Request) {
	s.hub.Track(id)
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		defer removeUpload(req)

		ctx := logger.WithSession(s.runCtx, id)
		if _, err := s.processor.Execute(ctx, id, req, s.hub.Reporter(id)); err != nil {
			s.logger.Warn(ctx, "Session %s failed: %v", id, err)
		}
	}()
}

func removeUpload(req processor.Request) {
	if req.Source != media.KindURL && req.Path != "" {
		os.Remove(req.Path)
	}
}

func (s *Server) listSessions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	list, err := s.store.List(requestContext(c), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	// large text fields are only served per session
	for i := range list {
		list[i].Transcript, list[i].Summary, list[i].Material = "", "", ""
		list[i].Timeline = nil
	}
	c.JSON(http.StatusOK, gin.H{"sessions": list})
}

func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.loadSession(c)
	if !ok {
		return
	}

	resp := sessionResponse{Session: sess}
	if sess.Status == session.StatusCompleted {
		guide := studyguide.Parse(sess.Material)
		resp.Sections = guide.Sections
		resp.Missing = guide.Missing()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) exportSession(c *gin.Context) {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	sess, ok := s.loadCompleted(c)
	if !ok {
		return
	}

	// rendered in full first so a failure can still be reported as an error
	var buf bytes.Buffer
	if err := s.render(&buf, format, export.Document{Title: sess.Name, Material: sess.Material}); err != nil {
		s.respondError(c, fmt.Errorf("export %s: %w", format, err))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+format.Filename(export.BaseName)+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) askQuestion(c *gin.Context) {
	var body questionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, InvalidInput("question", "a JSON body with a question is required").WithCause(err))
		return
	}
	sess, ok := s.loadCompleted(c)
	if !ok {
		return
	}

	answer := s.answerer.Answer(requestContext(c), body.Question, sess.Summary)
	c.JSON(http.StatusOK, answerResponse{Question: body.Question, Answer: answer})
}

func (s *Server) loadSession(c *gin.Context) (session.Session, bool) {
	id := c.Param("id")
	sess, err := s.store.Get(requestContext(c), id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			s.respondError(c, NotFound("session", id).WithCause(err))
		} else {
			s.respondError(c, err)
		}
		return session.Session{}, false
	}
	return sess, true
}

func (s *Server) loadCompleted(c *gin.Context) (session.Session, bool) {
	sess, ok := s.loadSession(c)
	if !ok {
		return sess, false
	}
	if sess.Status != session.StatusCompleted {
		s.respondError(c, NotReady(sess.Status))
		return sess, false
	}
	return sess, true
}
