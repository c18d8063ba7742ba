package api

import (
	"text2phenotype.com/postag/evaluation"
	"text2phenotype.com/postag/logger"
	"text2phenotype.com/postag/pos"
	"text2phenotype.com/postag/types"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"io"
	"io/ioutil"
	"math"
	"net/http"
	"strconv"
)

const maxBodyBytes = 8 << 20

var apiLogger = logger.NewLogger("API")

// Server exposes a trained model over HTTP.
type Server struct {
	Model   *pos.Model
	Workers int
}

type TagRequest struct {
	Sentences [][]string `json:"sentences"`
	Strategy  string     `json:"strategy,omitempty"`
	BeamWidth int        `json:"beam_width,omitempty"`
}

type TagResponse struct {
	Strategy string     `json:"strategy"`
	Tags     [][]string `json:"tags"`
}

type ScoreRequest struct {
	Words []string `json:"words"`
	Tags  []string `json:"tags"`
}

// ScoreResponse leaves log probabilities out when they are -Inf, which
// JSON cannot represent.
type ScoreResponse struct {
	Probability        float64  `json:"probability"`
	LogProbability     *float64 `json:"log_probability,omitempty"`
	PathLogProbability *float64 `json:"path_log_probability,omitempty"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Fingerprint string `json:"fingerprint"`
	Order       int    `json:"order"`
	Strategy    string `json:"strategy"`
	Tags        int    `json:"tags"`
	Words       int    `json:"words"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// requestInfo is attached to every request log line so that log entries
// can be matched to the model that served them.
type requestInfo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Remote      string `json:"remote,omitempty"`
	Fingerprint string `json:"model"`
	Order       int    `json:"order"`
}

func (srv *Server) requestInfo(r *http.Request) requestInfo {
	return requestInfo{
		Method:      r.Method,
		Path:        r.URL.Path,
		Remote:      r.RemoteAddr,
		Fingerprint: strconv.FormatUint(srv.Model.Fingerprint(), 16),
		Order:       srv.Model.Config.Order,
	}
}

func (srv *Server) requestLogger(r *http.Request) zerolog.Logger {
	return apiLogger.With().Interface("request_info", srv.requestInfo(r)).Logger()
}

func (srv *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tag", srv.Tag)
	mux.HandleFunc("/score", srv.Score)
	mux.HandleFunc("/health", srv.Health)
	return mux
}

func (srv *Server) Tag(w http.ResponseWriter, r *http.Request) {
	logger := srv.requestLogger(r)
	var req TagRequest
	if !decodeBody(w, r, &logger, &req) {
		return
	}

	decoding := srv.Model.Config.Decoding
	strategy := decoding.Strategy
	if len(req.Strategy) > 0 {
		st, err := types.ParseStrategy(req.Strategy)
		if err != nil {
			writeError(w, &logger, http.StatusBadRequest, err)
			return
		}
		strategy = st
	}
	beamWidth := decoding.BeamWidth
	if req.BeamWidth != 0 {
		beamWidth = req.BeamWidth
	}
	decoder, err := pos.NewDecoder(srv.Model, strategy, beamWidth)
	if err != nil {
		writeError(w, &logger, http.StatusBadRequest, err)
		return
	}

	sentences, err := types.NewCorpus(req.Sentences, nil)
	if err != nil {
		writeError(w, &logger, http.StatusBadRequest, err)
		return
	}
	tags, err := evaluation.Predict(decoder, sentences, srv.Workers)
	if err != nil {
		writeError(w, &logger, http.StatusInternalServerError, err)
		return
	}
	logger.Info().Str("strategy", string(strategy)).Int("sentences", len(sentences)).Msg("Tagged request")
	writeJSON(w, &logger, http.StatusOK, TagResponse{Strategy: string(strategy), Tags: tags})
}

func (srv *Server) Score(w http.ResponseWriter, r *http.Request) {
	logger := srv.requestLogger(r)
	var req ScoreRequest
	if !decodeBody(w, r, &logger, &req) {
		return
	}

	p, err := srv.Model.Score(req.Words, req.Tags)
	if err != nil {
		writeError(w, &logger, http.StatusBadRequest, err)
		return
	}
	resp := ScoreResponse{Probability: p}
	if lp, err := srv.Model.LogScore(req.Words, req.Tags); err == nil && !math.IsInf(lp, -1) {
		resp.LogProbability = &lp
	}
	if lp, err := srv.Model.PathLogProb(req.Words, req.Tags); err == nil && !math.IsInf(lp, -1) {
		resp.PathLogProbability = &lp
	}
	writeJSON(w, &logger, http.StatusOK, resp)
}

func (srv *Server) Health(w http.ResponseWriter, r *http.Request) {
	logger := srv.requestLogger(r)
	if r.Method != http.MethodGet {
		writeError(w, &logger, http.StatusMethodNotAllowed, fmt.Errorf("only 'GET' method is allowed here"))
		return
	}
	writeJSON(w, &logger, http.StatusOK, HealthResponse{
		Status:      "ok",
		Fingerprint: strconv.FormatUint(srv.Model.Fingerprint(), 16),
		Order:       srv.Model.Config.Order,
		Strategy:    string(srv.Model.Config.Decoding.Strategy),
		Tags:        len(srv.Model.Index.Tags()),
		Words:       srv.Model.Index.NumWords(),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, dst interface{}) bool {
	if r.Method != http.MethodPost {
		writeError(w, logger, http.StatusMethodNotAllowed, errors.New("only 'POST' method is allowed here"))
		return false
	}
	body, err := ioutil.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, logger, http.StatusBadRequest, fmt.Errorf("could not read request body: %w", err))
		return false
	}
	if err = json.Unmarshal(body, dst); err != nil {
		writeError(w, logger, http.StatusBadRequest, fmt.Errorf("could not parse request body: %w", err))
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, logger *zerolog.Logger, status int, err error) {
	logger.Err(err).Int("status", status).Msg("Request failed")
	writeJSON(w, logger, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Err(err).Msg("Could not encode response")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
	if status < 400 {
		logger.Info().Int("status", status).Msg("Finished processing request")
	}
}
