// Package rubric holds the fixed scoring schema: dimensions, sub-dimensions,
// and their maximum scores. The rubric is loaded once at process start and
// never mutated at runtime; changing it is a deploy-time operation.
package rubric

import (
	"fmt"

	"github.com/pitchai/pitchai-backend/internal/review/domain"
)

// SubDimension is one criterion within a dimension.
type SubDimension struct {
	Name     string  `json:"name"`
	MaxScore float64 `json:"max_score"`
}

// Dimension is one top-level rubric category.
type Dimension struct {
	Name          string         `json:"name"`
	MaxScore      float64        `json:"max_score"`
	SubDimensions []SubDimension `json:"sub_dimensions"`
}

// Rubric is an immutable scoring schema. Construct via Default or New and
// share by reference; all methods are read-only.
type Rubric struct {
	dims  []Dimension
	byKey map[string]Dimension
	total float64
}

// New builds a rubric from an ordered dimension list.
func New(dims []Dimension) *Rubric {
	r := &Rubric{
		dims:  dims,
		byKey: make(map[string]Dimension, len(dims)),
	}
	for _, d := range dims {
		r.byKey[d.Name] = d
		r.total += d.MaxScore
	}
	return r
}

// Default returns the reference rubric (100 points across five dimensions).
func Default() *Rubric {
	return New([]Dimension{
		{Name: "team", MaxScore: 30, SubDimensions: []SubDimension{
			{Name: "core_team_background", MaxScore: 10},
			{Name: "team_completeness", MaxScore: 10},
			{Name: "execution_capability", MaxScore: 10},
		}},
		{Name: "product", MaxScore: 20, SubDimensions: []SubDimension{
			{Name: "technical_innovation", MaxScore: 7},
			{Name: "product_maturity", MaxScore: 7},
			{Name: "rd_capability", MaxScore: 6},
		}},
		{Name: "market", MaxScore: 20, SubDimensions: []SubDimension{
			{Name: "market_size", MaxScore: 7},
			{Name: "competitive_analysis", MaxScore: 7},
			{Name: "market_strategy", MaxScore: 6},
		}},
		{Name: "business_model", MaxScore: 20, SubDimensions: []SubDimension{
			{Name: "revenue_model", MaxScore: 7},
			{Name: "operating_model", MaxScore: 7},
			{Name: "growth_model", MaxScore: 6},
		}},
		{Name: "finance", MaxScore: 10, SubDimensions: []SubDimension{
			{Name: "financial_position", MaxScore: 5},
			{Name: "funding_needs", MaxScore: 5},
		}},
	})
}

// Dimensions returns the declared dimensions in rubric order. Callers must
// not modify the returned slice.
func (r *Rubric) Dimensions() []Dimension {
	return r.dims
}

// Lookup returns the declared dimension by name.
func (r *Rubric) Lookup(name string) (Dimension, bool) {
	d, ok := r.byKey[name]
	return d, ok
}

// MaxScoreFor returns the declared maximum for a dimension, or
// ErrUnknownDimension when the name is not part of the rubric.
func (r *Rubric) MaxScoreFor(name string) (float64, error) {
	d, ok := r.byKey[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownDimension, name)
	}
	return d.MaxScore, nil
}

// Total is the rubric's ceiling: the sum of all dimension max scores.
func (r *Rubric) Total() float64 {
	return r.total
}
