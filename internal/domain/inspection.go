package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// CheckResult is the outcome recorded for one BA-set checklist item.
type CheckResult string

const (
	CheckOK            CheckResult = "OK"
	CheckNotOK         CheckResult = "NOT OK"
	CheckNotApplicable CheckResult = "N/A"
)

// ParseCheckResult accepts the wire form of a checklist value.
func ParseCheckResult(s string) (CheckResult, error) {
	switch CheckResult(s) {
	case CheckOK, CheckNotOK, CheckNotApplicable:
		return CheckResult(s), nil
	}
	return "", fmt.Errorf("invalid checklist value %q (want OK, NOT OK or N/A)", s)
}

// BAChecklistItems lists the six items every BA-set inspection must answer,
// in form order.
var BAChecklistItems = []string{
	"faceMask",
	"harness",
	"cylinderValve",
	"demandValve",
	"pressureGauge",
	"warningWhistle",
}

// SafetyKitMaterials is the fixed row order of the safety kit material table.
var SafetyKitMaterials = []string{
	"First aid box",
	"Fire blanket",
	"Safety goggles",
	"Ear plugs",
	"Nitrile gloves",
	"Dust masks",
	"Reflective vest",
	"Torch",
	"Eye wash bottle",
	"Burn dressing",
}

type BAReadings struct {
	CylinderPressure string `json:"cylinderPressure"`
	GaugePressure    string `json:"gaugePressure"`
	FlowRate         string `json:"flowRate"`
}

type MaterialRow struct {
	Material    string `json:"material"`
	Quantity    string `json:"quantity,omitempty"`
	Status      string `json:"status,omitempty"`
	Replenished string `json:"replenished,omitempty"`
	Expiry      string `json:"expiry,omitempty"`
	Remarks     string `json:"remarks,omitempty"`
}

// InspectionData is the payload an inspector submits. BA-set tasks use
// Readings and Checklist; safety kit tasks use Materials. Location is handed
// over untouched from the capture step.
type InspectionData struct {
	Readings  *BAReadings            `json:"readings,omitempty"`
	Checklist map[string]CheckResult `json:"checklist,omitempty"`
	Materials []MaterialRow          `json:"materials,omitempty"`
	Location  json.RawMessage        `json:"location,omitempty"`
	Remarks   string                 `json:"remarks,omitempty"`
}

func (d InspectionData) Clone() InspectionData {
	out := d
	if d.Readings != nil {
		r := *d.Readings
		out.Readings = &r
	}
	if d.Checklist != nil {
		out.Checklist = make(map[string]CheckResult, len(d.Checklist))
		for k, v := range d.Checklist {
			out.Checklist[k] = v
		}
	}
	if d.Materials != nil {
		out.Materials = append([]MaterialRow(nil), d.Materials...)
	}
	if d.Location != nil {
		out.Location = append(json.RawMessage(nil), d.Location...)
	}
	return out
}

// MissingChecklistItems returns the BA-set items with no answer, in form order.
func (d InspectionData) MissingChecklistItems() []string {
	var missing []string
	for _, item := range BAChecklistItems {
		if d.Checklist[item] == "" {
			missing = append(missing, item)
		}
	}
	return missing
}

// InvalidChecklistItems returns answered items whose value is outside the
// OK / NOT OK / N/A set in form order, followed by answers for items the
// form does not have, sorted by name.
func (d InspectionData) InvalidChecklistItems() []string {
	known := make(map[string]struct{}, len(BAChecklistItems))
	for _, item := range BAChecklistItems {
		known[item] = struct{}{}
	}
	var invalid []string
	for _, item := range BAChecklistItems {
		v, ok := d.Checklist[item]
		if !ok || v == "" {
			continue
		}
		if _, err := ParseCheckResult(string(v)); err != nil {
			invalid = append(invalid, item)
		}
	}
	var unknown []string
	for item := range d.Checklist {
		if _, ok := known[item]; !ok {
			unknown = append(unknown, item)
		}
	}
	sort.Strings(unknown)
	return append(invalid, unknown...)
}

// NewSafetyKitForm returns an empty material table with one row per kit material.
func NewSafetyKitForm() []MaterialRow {
	rows := make([]MaterialRow, len(SafetyKitMaterials))
	for i, m := range SafetyKitMaterials {
		rows[i] = MaterialRow{Material: m}
	}
	return rows
}
