package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/parcel-planner/internal/api"
	"github.com/eugenenazirov/parcel-planner/internal/config"
	"github.com/eugenenazirov/parcel-planner/internal/packing"
	"github.com/eugenenazirov/parcel-planner/internal/storage"
)

// planRequest is the file format read by the pack command. JSON files parse
// as well since YAML is a superset.
type planRequest struct {
	MaxWeight float64       `yaml:"max_weight"`
	Strategy  string        `yaml:"strategy"`
	Boxes     []packing.Box `yaml:"boxes"`
	Items     []planItem    `yaml:"items"`
}

type planItem struct {
	packing.Item `yaml:",inline"`
	Quantity     int `yaml:"quantity"`
}

type planOutput struct {
	Box        packing.Box    `json:"box"`
	LastParcel *packing.Box   `json:"lastParcel,omitempty"`
	Parcels    []parcelOutput `json:"parcels"`
	Strategy   string         `json:"strategy"`
	MaxWeight  float64        `json:"maxWeight"`
}

type parcelOutput struct {
	Box    string   `json:"box"`
	Items  []string `json:"items"`
	Weight float64  `json:"weight"`
}

func readPlanRequest(path string) (planRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return planRequest{}, fmt.Errorf("read request: %w", err)
	}
	var req planRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return planRequest{}, fmt.Errorf("parse request: %w", err)
	}
	return req, nil
}

// quantities merges repeated item numbers. The request may expand to at most
// limit units in total.
func (r planRequest) quantities(limit int) (packing.QuantityMap, error) {
	q := make(packing.QuantityMap, len(r.Items))
	total := 0
	for _, it := range r.Items {
		number := it.ItemNumber
		if number == "" {
			number = it.Name
		}
		if number == "" {
			return nil, fmt.Errorf("item without item_number or name")
		}
		item, err := packing.NewItem(it.Name, number, it.Length, it.Width, it.Height, it.Weight)
		if err != nil {
			return nil, err
		}
		if it.Quantity < 0 {
			return nil, fmt.Errorf("item %q: quantity must be non-negative", number)
		}
		if it.Quantity > limit-total {
			return nil, fmt.Errorf("request expands to more than %d units", limit)
		}
		entry := q[number]
		entry.Item = item
		entry.Quantity += it.Quantity
		q[number] = entry
		total += it.Quantity
	}
	return q, nil
}

// catalog returns the request boxes, the configured boxes or the stored
// catalog, in that order of preference.
func catalog(ctx context.Context, cfg config.Config, req planRequest) ([]packing.Box, error) {
	if len(req.Boxes) > 0 {
		if err := packing.UniqueNames(req.Boxes); err != nil {
			return nil, err
		}
		if err := storage.ValidateCatalog(req.Boxes); err != nil {
			return nil, err
		}
		return req.Boxes, nil
	}
	if len(cfg.InitialBoxes) > 0 {
		return cfg.InitialBoxes, nil
	}

	store, closeStorage, err := storage.Open(ctx, cfg.StorageDriver, cfg.StorageDSN)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = closeStorage()
	}()
	return store.ListBoxes(ctx)
}

// runPack plans the shipment described in the request file and writes the
// result to w in the requested format.
func runPack(ctx context.Context, w io.Writer, cfg config.Config, path, format string) error {
	req, err := readPlanRequest(path)
	if err != nil {
		return err
	}

	strategy := cfg.Strategy
	if req.Strategy != "" {
		if strategy, err = packing.ParseStrategy(req.Strategy); err != nil {
			return err
		}
	}
	maxWeight := cfg.MaxParcelWeight
	if req.MaxWeight > 0 {
		maxWeight = req.MaxWeight
	}

	limit := cfg.MaxUnits
	if limit <= 0 {
		limit = api.DefaultMaxUnits
	}
	q, err := req.quantities(limit)
	if err != nil {
		return err
	}
	boxes, err := catalog(ctx, cfg, req)
	if err != nil {
		return err
	}

	planner := packing.New(packing.WithMaxWeight(maxWeight), packing.WithStrategy(strategy))
	plan, err := planner.Plan(q, boxes)
	if err != nil {
		return err
	}

	if format == "json" {
		return writePlanJSON(w, plan, planner)
	}
	writePlanText(w, plan, planner)
	return nil
}

func writePlanJSON(w io.Writer, plan packing.Packing, planner packing.Planner) error {
	out := planOutput{
		Box:        plan.Box,
		LastParcel: plan.LastParcel,
		Parcels:    make([]parcelOutput, len(plan.Parcels)),
		Strategy:   string(planner.Strategy()),
		MaxWeight:  planner.MaxWeight(),
	}
	for i, parcel := range plan.Parcels {
		out.Parcels[i] = parcelOutput{
			Box:    parcel.Box.Name,
			Items:  parcel.ItemNumbers(),
			Weight: parcel.Weight(),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writePlanText(w io.Writer, plan packing.Packing, planner packing.Planner) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(w, "%s %d parcel(s), %d unit(s) using %s (%s, max %g g)\n",
		green("Plan:"), len(plan.Parcels), plan.Units(), cyan(plan.Box.Name), planner.Strategy(), planner.MaxWeight())
	for i, parcel := range plan.Parcels {
		fmt.Fprintf(w, "  #%d %s %s  %s\n",
			i+1, cyan(parcel.Box.Name), strings.Join(parcel.ItemNumbers(), ", "), yellow(fmt.Sprintf("%g g", parcel.Weight())))
	}
	if plan.LastParcel != nil {
		fmt.Fprintf(w, "%s last parcel moved to %s\n", yellow("Note:"), cyan(plan.LastParcel.Name))
	}
}
