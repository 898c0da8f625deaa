package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/ymakhloufi/credit-simulator/internal/app/resolver"
	"github.com/ymakhloufi/credit-simulator/internal/app/simulator"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/model"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

type simulateRequest struct {
	PersonType model.PersonType `json:"personType"`
	Modality   model.Modality   `json:"modality"`
	Product    string           `json:"product"`
	Income     string           `json:"income"`
}

type simulateResponse struct {
	Id            uuid.UUID     `json:"id"`
	QuotedOn      civil.Date    `json:"quotedOn"`
	MonthlyIncome string        `json:"monthlyIncome"`
	Result        *model.Result `json:"result"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.Products(r.Context())
	if err != nil {
		s.fail(w, "failed to fetch products", err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	segments, err := s.catalog.Segments(r.Context())
	if err != nil {
		s.fail(w, "failed to fetch segments", err)
		return
	}
	writeJSON(w, http.StatusOK, segments)
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	var filter model.RateFilter
	var ok bool

	if filter.ProductId, ok = optionalId(r, "productId"); !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "productId must be an integer"})
		return
	}
	if filter.SegmentId, ok = optionalId(r, "segmentId"); !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "segmentId must be an integer"})
		return
	}

	rates, err := s.catalog.Rates(r.Context(), filter)
	if err != nil {
		s.fail(w, "failed to fetch rates", err)
		return
	}
	writeJSON(w, http.StatusOK, rates)
}

func (s *Server) handleAvailableProducts(w http.ResponseWriter, r *http.Request) {
	personType := model.PersonType(r.URL.Query().Get("personType"))
	modality := model.Modality(r.URL.Query().Get("modality"))

	snap, err := s.catalog.Snapshot(r.Context())
	if err != nil {
		s.fail(w, "failed to fetch products", err)
		return
	}
	writeJSON(w, http.StatusOK, resolver.AvailableProducts(personType, modality, snap.Products, snap.Rates))
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.PersonType != "" && !req.PersonType.Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "personType must be PF or PJ"})
		return
	}
	if req.Modality != "" && !req.Modality.Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "modality must be Pre-fixado or Pos-fixado"})
		return
	}

	snap, err := s.catalog.Snapshot(r.Context())
	if err != nil {
		s.fail(w, "failed to simulate", err)
		return
	}

	session := simulator.NewSession(snap, s.logger.Named("session"))
	session.SetPersonType(req.PersonType)
	session.SetModality(req.Modality)
	session.SetProduct(req.Product)
	session.SetIncome(req.Income)

	result, err := session.Result()
	if err != nil {
		s.fail(w, "failed to simulate", err)
		return
	}

	resp := simulateResponse{
		Id:            uuid.New(),
		QuotedOn:      civil.DateOf(s.now()),
		MonthlyIncome: session.FormattedIncome(),
		Result:        result,
	}
	s.logger.Info("simulated",
		zap.Stringer("id", resp.Id),
		zap.String("personType", string(req.PersonType)),
		zap.String("modality", string(req.Modality)),
		zap.String("product", req.Product),
		zap.Any("result", result))
	writeJSON(w, http.StatusOK, resp)
}

// fail logs the cause and answers with a generic 500.
func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msg})
}

func optionalId(r *http.Request, name string) (*int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
