package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/huangsam/quizscale/core"
	"github.com/huangsam/quizscale/internal/contract"
	"github.com/huangsam/quizscale/internal/tabular"
	"github.com/huangsam/quizscale/schema"
)

type handler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

type errorResponse struct {
	Error  string                   `json:"error"`
	Result *schema.ConversionResult `json:"result,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps conversion errors onto response codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, schema.ErrInvalidParameter),
		errors.Is(err, schema.ErrInvalidWeightConfiguration),
		errors.Is(err, schema.ErrMissingColumns),
		errors.Is(err, schema.ErrNoQuestionColumns),
		errors.Is(err, schema.ErrNoRecords):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /quiz/convert (multipart: file plus scale fields)
func (h *handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	f, hdr, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("file required"))
		return
	}
	defer func() { _ = f.Close() }()

	cfg := h.baseCfg.Clone()
	cfg.InputPath = ""
	cfg.QuizName = r.FormValue("quiz_name")
	if sheet := r.FormValue("sheet"); sheet != "" {
		cfg.Sheet = sheet
	}
	if v := r.FormValue("strict"); v != "" {
		strict, err := contract.ParseBoolString(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Errorf("invalid strict: %w", err))
			return
		}
		cfg.Strict = strict
	}

	overrides, err := parseOverrides(r.FormValue)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := contract.RevalidateScale(cfg, overrides); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	sheet, err := tabular.Read(f, hdr.Filename, cfg.Sheet)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("cannot read %s: %w", hdr.Filename, err))
		return
	}

	result, err := core.ConvertSheet(r.Context(), cfg, sheet, h.mgr)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}

	if err := core.StrictCheck(cfg, result); err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Result: result})
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GET /quiz/scale?original_max=&target_max=&question_value=&weights=&use_weighted=
func (h *handler) handleScale(w http.ResponseWriter, r *http.Request) {
	cfg := h.baseCfg.Clone()
	query := r.URL.Query()

	overrides, err := parseOverrides(query.Get)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := contract.RevalidateScale(cfg, overrides); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg.Params.Summary())
}
