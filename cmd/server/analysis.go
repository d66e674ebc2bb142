package main

import (
	"net/http"

	"github.com/Simplici0/plantplan/internal/capacity"
	"github.com/Simplici0/plantplan/internal/costing"
	"github.com/Simplici0/plantplan/internal/curve"
	"github.com/Simplici0/plantplan/internal/model"
)

type capacityRequest struct {
	Plants []model.Plant `json:"plants"`
}

type productCapacity struct {
	Capacity   float64          `json:"capacity"`
	Configured bool             `json:"configured"`
	Periods    capacity.Periods `json:"periods"`
}

type plantCapacity struct {
	PlantID        string                     `json:"plantId"`
	Capacity       float64                    `json:"capacity"`
	Configured     bool                       `json:"configured"`
	AvailableHours float64                    `json:"availableHours"`
	MaxRateProduct string                     `json:"maxRateProduct,omitempty"`
	UnitLabel      string                     `json:"unitLabel"`
	Products       map[string]productCapacity `json:"products"`
}

func (s *server) handleCapacity(w http.ResponseWriter, r *http.Request) {
	var req capacityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out := make([]plantCapacity, 0, len(req.Plants))
	for _, plant := range req.Plants {
		out = append(out, resolveCapacity(plant))
	}
	writeJSON(w, http.StatusOK, out)
}

func resolveCapacity(plant model.Plant) plantCapacity {
	total, ok := capacity.ForPlant(plant)
	pc := plantCapacity{
		PlantID:        plant.ID,
		Capacity:       total,
		Configured:     ok,
		AvailableHours: capacity.AvailableHours(plant.OperatingTime),
		UnitLabel:      plant.Settings.UnitLabel(),
		Products:       make(map[string]productCapacity, len(plant.Products)),
	}
	if plant.CapacityMode == model.CapacityRate {
		_, pc.MaxRateProduct = capacity.MaxRateCapacity(plant)
	}
	for _, id := range plant.Products.IDs() {
		c, ok := capacity.ForProduct(plant, id)
		pc.Products[id] = productCapacity{
			Capacity:   c,
			Configured: ok,
			Periods:    capacity.ProductCapacities(plant, id),
		}
	}
	return pc
}

type evaluateRequest struct {
	Plant model.Plant        `json:"plant"`
	Units map[string]float64 `json:"units"`
}

func (s *server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, costing.Evaluate(req.Units, req.Plant))
}

type curveRequest struct {
	Plant     model.Plant    `json:"plant"`
	Product   *model.Product `json:"product,omitempty"`
	ProductID string         `json:"productId,omitempty"`
	Capacity  *float64       `json:"capacity,omitempty"`
}

type curveResponse struct {
	ProductID string           `json:"productId"`
	Capacity  float64          `json:"capacity"`
	Interval  float64          `json:"interval"`
	Points    []costing.Point  `json:"points"`
	Optimal   curve.Optimal    `json:"optimal"`
	Analysis  []curve.Analysis `json:"analysis"`
	BreakEven *curve.Analysis  `json:"breakEven,omitempty"`
}

func (s *server) handleCurve(w http.ResponseWriter, r *http.Request) {
	var req curveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	productID := req.ProductID
	if req.Product != nil {
		productID = req.Product.ID
	}
	if productID == "" {
		if ids := req.Plant.Products.IDs(); len(ids) > 0 {
			productID = ids[0]
		}
	}
	if productID != "" && !req.Plant.Products.Produces(productID) {
		writeError(w, http.StatusUnprocessableEntity, "plant does not produce "+productID)
		return
	}

	var (
		capUnits float64
		ok       bool
	)
	switch {
	case req.Capacity != nil:
		capUnits, ok = *req.Capacity, true
	case productID != "":
		capUnits, ok = capacity.ForProduct(req.Plant, productID)
	default:
		capUnits, ok = capacity.ForPlant(req.Plant)
	}
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "capacity not configured")
		return
	}

	resp := curveResponse{
		ProductID: productID,
		Capacity:  capUnits,
		Interval:  curve.SampleInterval(capUnits),
		Points:    curve.Points(req.Plant, productID, capUnits),
		Optimal:   curve.FindOptimal(req.Plant, productID, req.Product, capUnits),
		Analysis:  curve.Analyze(req.Plant, productID, req.Product, capUnits),
	}
	if req.Product != nil {
		if be, found := curve.BreakEven(req.Plant, *req.Product, capUnits); found {
			resp.BreakEven = &be
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
