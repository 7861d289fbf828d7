package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"veglia/internal/domain"
	"veglia/internal/ports"
)

type Server struct {
	status    ports.StatusFlow
	diagnosis ports.DiagnosisUploader
	countries ports.CountryPreferences
}

func New(status ports.StatusFlow, diagnosis ports.DiagnosisUploader, countries ports.CountryPreferences) *Server {
	return &Server{status: status, diagnosis: diagnosis, countries: countries}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.getHealthz)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.getStatus)
		r.Post("/status/acknowledge", s.postAcknowledge)
		r.Post("/status/reset", s.postReset)
		r.Post("/check", s.postCheck)
		r.Post("/upload", s.postUpload)
		r.Get("/countries", s.getCountries)
		r.Put("/countries", s.putCountries)
	})
	return r
}

type statusResponse struct {
	Status           string     `json:"status"`
	LastExposureDate *time.Time `json:"last_exposure_date,omitempty"`
	Acknowledged     *bool      `json:"acknowledged,omitempty"`
}

func toStatusResponse(st domain.ExposureStatus) statusResponse {
	resp := statusResponse{Status: st.Kind.String()}
	if st.Kind == domain.StatusExposed {
		d := st.LastExposureDate
		ack := st.Acknowledged
		resp.LastExposureDate = &d
		resp.Acknowledged = &ack
	}
	return resp
}

type checkRequest struct {
	ServerDate            time.Time `json:"server_date"`
	DaysSinceLastExposure int       `json:"days_since_last_exposure"`
	MatchedKeyCount       int       `json:"matched_key_count"`
	MaximumRiskScore      int       `json:"maximum_risk_score"`
	HighRiskMinutes       int       `json:"high_risk_attenuation_minutes"`
	MediumRiskMinutes     int       `json:"medium_risk_attenuation_minutes"`
	LowRiskMinutes        int       `json:"low_risk_attenuation_minutes"`
	RiskScoreSum          int       `json:"risk_score_sum"`
}

type checkResponse struct {
	Status   statusResponse `json:"status"`
	Notified bool           `json:"notified"`
}

type uploadRequest struct {
	Token string `json:"token"`
}

type countriesRequest struct {
	Countries []string `json:"countries"`
}

type countryResponse struct {
	Code       string    `json:"code"`
	SelectedAt time.Time `json:"selected_at"`
}

func (s *Server) getHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.status.Current(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatusResponse(st))
}

func (s *Server) postAcknowledge(w http.ResponseWriter, r *http.Request) {
	st, err := s.status.Acknowledge(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatusResponse(st))
}

func (s *Server) postReset(w http.ResponseWriter, r *http.Request) {
	if err := s.status.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// postCheck is the device-push path for a check cycle: the platform bridge
// POSTs the matching result instead of being polled.
func (s *Server) postCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	raw := domain.CheckResult{
		DaysSinceLastExposure: req.DaysSinceLastExposure,
		MatchedKeyCount:       req.MatchedKeyCount,
		MaximumRiskScore:      req.MaximumRiskScore,
		AttenuationMinutes: domain.AttenuationMinutes{
			HighRisk:   req.HighRiskMinutes,
			MediumRisk: req.MediumRiskMinutes,
			LowRisk:    req.LowRiskMinutes,
		},
		RiskScoreSum: req.RiskScoreSum,
	}
	st, notified, err := s.status.ProcessCheckCycle(r.Context(), req.ServerDate, raw)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{Status: toStatusResponse(st), Notified: notified})
}

func (s *Server) postUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, errMissingToken)
		return
	}
	if err := s.diagnosis.Upload(r.Context(), req.Token); err != nil {
		// Transport rejections and server-side token validation both land
		// here; the caller may retry with identical state.
		writeError(w, http.StatusBadGateway, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getCountries(w http.ResponseWriter, r *http.Request) {
	list, err := s.countries.Countries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]countryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, countryResponse{Code: c.Code, SelectedAt: c.SelectedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) putCountries(w http.ResponseWriter, r *http.Request) {
	var req countriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.countries.SetCountries(r.Context(), req.Countries); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

var errMissingToken = errString("token is required")

type errString string

func (e errString) Error() string { return string(e) }
