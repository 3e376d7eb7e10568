package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jonathan/job-recommender/internal/ingestion"
	"github.com/jonathan/job-recommender/internal/logger"
	"github.com/jonathan/job-recommender/internal/parsing"
	"github.com/jonathan/job-recommender/internal/schemas"
	"github.com/jonathan/job-recommender/internal/types"
)

// multipartMemory is the part of an upload kept in memory before spilling to disk.
const multipartMemory = 4 << 20

// handleRecommend scores the JSON body's text.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		s.errorResponse(w, r, readError(err))
		return
	}

	req, err := parseRecommendRequest(body)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	text := req.Text.String()
	if req.Format == types.FormatHTML {
		text, err = ingestion.HTMLToText(text)
		if err != nil {
			s.errorResponse(w, r, &ErrValidation{Field: "text", Message: err.Error()})
			return
		}
	}

	s.recommend(w, r, text, req.Limit())
}

// parseRecommendRequest decodes and validates a request body. An empty or
// whitespace-only body is an empty request.
func parseRecommendRequest(body []byte) (*types.RecommendRequest, error) {
	req, err := types.DecodeRecommendRequest(body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := schemas.ValidateRecommendRequest(body); err != nil {
			return nil, err
		}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// handleRecommendFile extracts text from an uploaded resume and scores it.
func (s *Server) handleRecommendFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.errorResponse(w, r, err)
			return
		}
		s.errorResponse(w, r, &ErrValidation{Field: "file", Message: "expected a multipart/form-data upload"})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, r, &ErrValidation{Field: "file", Message: "is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.errorResponse(w, r, readError(err))
		return
	}

	req := &types.RecommendRequest{}
	if v := r.FormValue("n"); v != "" {
		_ = req.N.UnmarshalJSON([]byte(strconv.Quote(v)))
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	text, err := ingestion.Extract(header.Filename, data)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.requestLogger(r).Debug("Extracted upload",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
		zap.Int("chars", utf8.RuneCountInString(text)),
	)
	s.recommend(w, r, text, req.Limit())
}

// recommend truncates text, runs the engine and writes the response.
func (s *Server) recommend(w http.ResponseWriter, r *http.Request, text string, n int) {
	log := s.requestLogger(r)

	if s.maxChars > 0 {
		if cut, truncated := parsing.TruncateRunes(text, s.maxChars); truncated {
			log.Debug("Truncated request text", zap.Int("max_chars", s.maxChars))
			text = cut
		}
	}

	resp, err := s.engine.Recommend(r.Context(), text, n)
	if err != nil {
		log.Error("Recommend failed", zap.Error(err))
		s.jsonResponse(w, http.StatusInternalServerError, s.engine.Failure(err))
		return
	}

	log.Debug("Recommendations computed",
		zap.Int("n", n),
		zap.String("text", logger.Preview(text, 80)),
	)
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, types.HealthResponse{
		Status: "ok",
		Engine: s.engine.Name(),
		Ready:  s.engine.Ready(),
		Model:  s.engine.Model(),
	})
}

// handleCategories lists the categories the engine ranks against.
func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	cats := s.engine.Catalog().Categories()
	out := make([]types.CategoryInfo, len(cats))
	for i, c := range cats {
		out[i] = types.CategoryInfo{Key: c.Key, Title: c.Title, Keywords: c.Keywords}
	}
	s.jsonResponse(w, http.StatusOK, types.CategoriesResponse{Categories: out})
}

// readError keeps size-limit errors and reports anything else as a bad body.
func readError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return err
	}
	return &ErrValidation{Field: "body", Message: "failed to read request body"}
}
