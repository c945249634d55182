package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/augment/pkg/augment"
	"github.com/matzehuels/augment/pkg/boxtf"
	"github.com/matzehuels/augment/pkg/buildinfo"
	"github.com/matzehuels/augment/pkg/errors"
	"github.com/matzehuels/augment/pkg/geom"
	"github.com/matzehuels/augment/pkg/raster"
	"github.com/matzehuels/augment/pkg/store"
)

// =============================================================================
// Request / Response Types
// =============================================================================

// BoxOpRequest is the body of POST /v1/boxes/{op}. The operation parameters
// use the same names as recipe steps; op itself comes from the path.
type BoxOpRequest struct {
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Box    geom.OptBox `json:"box"`
	augment.Step
}

// ChainRequest is the body of POST /v1/boxes/chain.
type ChainRequest struct {
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Box    geom.OptBox    `json:"box"`
	Recipe augment.Recipe `json:"recipe"`
}

// ChainResponse is the trace of a recipe plus the final state.
type ChainResponse struct {
	Extent   geom.Extent     `json:"extent"`
	Box      geom.OptBox     `json:"box"`
	Warnings []boxtf.Warning `json:"warnings,omitempty"`
	Trace    augment.Trace   `json:"trace"`
	Cached   bool            `json:"cached"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, healthResponse{Status: "ok", Build: buildinfo.Get()}, http.StatusOK)
}

func (s *Server) handleBoxOp(w http.ResponseWriter, r *http.Request) {
	var req BoxOpRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.Step.Op = chi.URLParam(r, "op")
	op, err := req.Step.Build()
	if err != nil {
		respondError(w, err)
		return
	}
	res, err := op.Plan(geom.Extent{W: req.Width, H: req.Height}, req.Box)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, res, http.StatusOK)
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	var req ChainRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	trace, hit, err := s.runner.Trace(r.Context(), geom.Extent{W: req.Width, H: req.Height}, req.Box, req.Recipe)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, ChainResponse{
		Extent:   trace.Extent(),
		Box:      trace.Box(),
		Warnings: trace.Warnings(),
		Trace:    trace,
		Cached:   hit,
	}, http.StatusOK)
}

// handleImage accepts a multipart form with an image "file", a JSON
// "recipe", an optional JSON "box" and an optional output "format". The
// response body is the encoded image; the resulting box and extent travel in
// X-Augment-* headers.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to parse form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "no file uploaded"))
		return
	}
	defer file.Close()

	var recipe augment.Recipe
	if err := json.Unmarshal([]byte(r.FormValue("recipe")), &recipe); err != nil {
		respondError(w, errors.Wrap(errors.ErrCodeInvalidRecipe, err, "recipe must be JSON"))
		return
	}
	box := geom.None
	if v := r.FormValue("box"); v != "" {
		if err := json.Unmarshal([]byte(v), &box); err != nil {
			respondError(w, errors.Wrap(errors.ErrCodeInvalidBox, err, "box must be a JSON array of four numbers"))
			return
		}
	}

	img, srcFormat, err := raster.Decode(file)
	if err != nil {
		respondError(w, err)
		return
	}
	format, err := raster.FormatOf(firstNonEmpty(r.FormValue("format"), srcFormat))
	if err != nil {
		respondError(w, err)
		return
	}

	out, trace, err := s.runner.Augment(r.Context(), header.Filename, img, box, recipe)
	if err != nil {
		respondError(w, err)
		return
	}
	data, err := raster.EncodeBytes(out, format, 0)
	if err != nil {
		respondError(w, err)
		return
	}

	if s.runner.Store != nil {
		hash, _ := recipe.Hash()
		rec := &store.Record{
			Source:       header.Filename,
			Recipe:       recipe,
			RecipeHash:   hash,
			SourceExtent: trace.Source,
			Extent:       trace.Extent(),
			SourceBox:    trace.SourceBox,
			Box:          trace.Box(),
			Warnings:     trace.Warnings(),
		}
		if err := s.runner.Store.Put(r.Context(), rec); err != nil {
			respondError(w, err)
			return
		}
		w.Header().Set("X-Augment-Record", rec.ID)
	}

	boxJSON, _ := json.Marshal(trace.Box())
	w.Header().Set("X-Augment-Box", string(boxJSON))
	w.Header().Set("X-Augment-Extent", trace.Extent().String())
	w.Header().Set("X-Augment-Warnings", strconv.Itoa(len(trace.Warnings())))
	w.Header().Set("Content-Type", "image/"+format)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	st, err := s.store()
	if err != nil {
		respondError(w, err)
		return
	}
	opts := store.ListOptions{Source: r.URL.Query().Get("source")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, errors.New(errors.ErrCodeInvalidInput, "limit must be a non-negative integer, got %q", v))
			return
		}
		opts.Limit = n
	}
	records, err := st.List(r.Context(), opts)
	if err != nil {
		respondError(w, err)
		return
	}
	if records == nil {
		records = []*store.Record{}
	}
	respondJSON(w, records, http.StatusOK)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	st, err := s.store()
	if err != nil {
		respondError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := errors.ValidateRecordID(id); err != nil {
		respondError(w, err)
		return
	}
	rec, err := st.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, rec, http.StatusOK)
}

func (s *Server) store() (store.Store, error) {
	if s.runner.Store == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "record store is not configured")
	}
	return s.runner.Store, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
