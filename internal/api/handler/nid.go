package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/oelgazzar/nidgate/internal/api/request"
	"github.com/oelgazzar/nidgate/internal/api/response"
	"github.com/oelgazzar/nidgate/internal/nid"
)

var nidValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "nid_validations_total",
		Help: "Total number of national ID validations",
	},
	[]string{"valid"},
)

// NationalID serves the Egyptian national-ID validation endpoints. These
// responses use the success/data/message envelope rather than the plain
// resource shapes, including on request errors.
type NationalID struct {
	logger zerolog.Logger
}

func NewNationalID(logger zerolog.Logger) *NationalID {
	return &NationalID{logger: logger}
}

// Validate checks a single ID. The call succeeds with HTTP 200 whether or
// not the ID itself turns out valid; is_valid and errors in the data tell
// the caller which.
func (h *NationalID) Validate(w http.ResponseWriter, r *http.Request) {
	var req request.ValidateNationalID
	if err := request.Decode(r, &req); err != nil {
		response.WriteEnvelopeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	data := nid.Validate(strings.TrimSpace(req.NationalID))
	nidValidationsTotal.WithLabelValues(strconv.FormatBool(data.IsValid)).Inc()

	response.WriteEnvelope(w, http.StatusOK, data, "Validation completed successfully")
}

// BulkResult summarizes a bulk validation run.
type BulkResult struct {
	Success      bool       `json:"success"`
	Total        int        `json:"total"`
	ValidCount   int        `json:"valid_count"`
	InvalidCount int        `json:"invalid_count"`
	Results      []nid.Data `json:"results"`
}

// BulkValidate checks up to 100 IDs in one call. Malformed entries do not
// fail the request; they come back as invalid results like any other.
func (h *NationalID) BulkValidate(w http.ResponseWriter, r *http.Request) {
	var req request.BulkValidateNationalIDs
	if err := request.Decode(r, &req); err != nil {
		response.WriteEnvelopeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	results := make([]nid.Data, 0, len(req.NationalIDs))
	valid := 0
	for _, id := range req.NationalIDs {
		data := nid.Validate(strings.TrimSpace(id))
		nidValidationsTotal.WithLabelValues(strconv.FormatBool(data.IsValid)).Inc()
		if data.IsValid {
			valid++
		}
		results = append(results, data)
	}

	response.WriteJSON(w, http.StatusOK, BulkResult{
		Success:      true,
		Total:        len(results),
		ValidCount:   valid,
		InvalidCount: len(results) - valid,
		Results:      results,
	})
}
