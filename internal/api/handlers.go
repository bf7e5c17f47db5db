package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/zipafford/internal/dataset"
	"github.com/sells-group/zipafford/internal/geo"
	"github.com/sells-group/zipafford/internal/model"
	"github.com/sells-group/zipafford/internal/pipeline"
	"github.com/sells-group/zipafford/internal/report"
	"github.com/sells-group/zipafford/internal/store"
)

// maxBodyBytes bounds request bodies; isochrones are the largest payload.
const maxBodyBytes = 4 << 20

type inputsRequest struct {
	Inputs model.AffordabilityInputs `json:"inputs"`
}

type tierRequest struct {
	Inputs model.AffordabilityInputs `json:"inputs"`
	Price  *float64                  `json:"price"`
}

type commuteRequest struct {
	Inputs           model.AffordabilityInputs `json:"inputs"`
	Isochrone        json.RawMessage           `json:"isochrone"`
	HideUnaffordable bool                      `json:"hide_unaffordable"`
}

func (s *Server) maxPrice(w http.ResponseWriter, r *http.Request) {
	req := inputsRequest{Inputs: s.defaults.Clone()}
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, report.Summarize(req.Inputs.Normalize()))
}

func (s *Server) tier(w http.ResponseWriter, r *http.Request) {
	req := tierRequest{Inputs: s.defaults.Clone()}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Price == nil {
		writeError(w, http.StatusBadRequest, "price is required")
		return
	}
	writeJSON(w, http.StatusOK, report.CheckPrice(*req.Price, req.Inputs.Normalize()))
}

func (s *Server) nationwide(w http.ResponseWriter, r *http.Request) {
	req := inputsRequest{Inputs: s.defaults.Clone()}
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.pipeline.Nationwide(r.Context(), req.Inputs)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) stateDetail(w http.ResponseWriter, r *http.Request) {
	in, err := queryInputs(r, s.defaults)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.pipeline.StateDetail(r.Context(), in, chi.URLParam(r, "state"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) zipDetail(w http.ResponseWriter, r *http.Request) {
	in, err := queryInputs(r, s.defaults)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.pipeline.ZipDetail(r.Context(), in, chi.URLParam(r, "zip"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) commute(w http.ResponseWriter, r *http.Request) {
	req := commuteRequest{Inputs: s.defaults.Clone()}
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Isochrone) == 0 {
		writeError(w, http.StatusBadRequest, "isochrone is required")
		return
	}
	iso, err := geo.ParseIsochrone(req.Isochrone)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.pipeline.Commute(r.Context(), iso, req.Inputs, req.HideUnaffordable)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) cacheStats(w http.ResponseWriter, _ *http.Request) {
	if s.cache == nil {
		writeJSON(w, http.StatusOK, dataset.CacheStats{})
		return
	}
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func (s *Server) listProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.store.ListProfiles(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": profiles})
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProfile(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) saveProfile(w http.ResponseWriter, r *http.Request) {
	req := inputsRequest{Inputs: s.defaults.Clone()}
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := s.store.SaveProfile(r.Context(), chi.URLParam(r, "name"), req.Inputs.Normalize())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteProfile(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{Mode: model.RunMode(r.URL.Query().Get("mode"))}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		filter.Limit = n
	}
	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": runs})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	ranked, err := s.store.RunStates(r.Context(), run.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		*model.Run
		States []model.StateAffordability `json:"states"`
	}{run, ranked})
}

// decodeBody decodes a JSON body into v. An empty body leaves v unchanged.
// On failure it writes a 400 and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return false
	}
	return true
}

// queryParams maps query parameters onto inputs. Names match the JSON fields.
var queryParams = map[string]func(in *model.AffordabilityInputs, v float64){
	"annual_income":     func(in *model.AffordabilityInputs, v float64) { in.AnnualIncome = model.Float64(v) },
	"down_payment_pct":  func(in *model.AffordabilityInputs, v float64) { in.DownPaymentPct = v },
	"interest_rate":     func(in *model.AffordabilityInputs, v float64) { in.InterestRate = v },
	"loan_term_years":   func(in *model.AffordabilityInputs, v float64) { in.LoanTermYears = int(v) },
	"property_tax_rate": func(in *model.AffordabilityInputs, v float64) { in.PropertyTaxRate = v },
	"annual_insurance":  func(in *model.AffordabilityInputs, v float64) { in.AnnualInsurance = v },
	"monthly_debts":     func(in *model.AffordabilityInputs, v float64) { in.MonthlyDebts = v },
	"hoa_monthly":       func(in *model.AffordabilityInputs, v float64) { in.HOAMonthly = v },
	"front_dti_pct":     func(in *model.AffordabilityInputs, v float64) { in.FrontDTIPct = v },
	"back_dti_pct":      func(in *model.AffordabilityInputs, v float64) { in.BackDTIPct = v },
	"monthly_spending": func(in *model.AffordabilityInputs, v float64) {
		in.MonthlySpending = v
		in.IncludeSpending = v > 0
	},
	"manual_max_price": func(in *model.AffordabilityInputs, v float64) {
		in.ManualMaxPrice = model.Float64(v)
		in.UseManualMaxPrice = v > 0
	},
}

// queryInputs overlays numeric query parameters onto a copy of base.
func queryInputs(r *http.Request, base model.AffordabilityInputs) (model.AffordabilityInputs, error) {
	in := base.Clone()
	q := r.URL.Query()
	for name, apply := range queryParams {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return in, eris.Errorf("%s must be a number", name)
		}
		apply(&in, v)
	}
	return in, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeErr maps lookup misses to 404 and everything else to 500.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case eris.Is(err, pipeline.ErrUnknownState), eris.Is(err, pipeline.ErrUnknownZip), eris.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		zap.L().Error("api: request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
