package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/pitchai/pitchai-backend/config"
	"github.com/pitchai/pitchai-backend/internal/ingest/extract"
	"github.com/pitchai/pitchai-backend/internal/ingest/llm"
	"github.com/pitchai/pitchai-backend/internal/review/rubric"
)

// RunEvaluate scores a business plan PDF offline and prints the proposal
// JSON to stdout. Useful for rubric tuning without touching the database.
func RunEvaluate(args []string) {
	if len(args) < 1 {
		log.Fatal("usage: worker evaluate <pdfPath>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.AI.APIKey == "" {
		log.Fatal("DEEPSEEK_API_KEY is required")
	}

	if err := evaluateFile(args[0], cfg); err != nil {
		log.Fatalf("evaluate: %v", err)
	}
}

func evaluateFile(path string, cfg *config.Config) error {
	text, err := extract.NewPDF().ExtractText(path)
	if err != nil {
		return err
	}

	client := llm.NewDeepSeek(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.AI.IngestTimeout)
	defer cancel()

	proposal := &llm.Proposal{Dimensions: make(map[string]llm.DimensionEvaluation)}
	for _, dim := range rubric.Default().Dimensions() {
		eval, err := client.EvaluateDimension(ctx, dim, text)
		if err != nil {
			return err
		}
		proposal.Dimensions[dim.Name] = *eval
		proposal.TotalScore += eval.Score
		proposal.MissingInfo = append(proposal.MissingInfo, eval.MissingInfo...)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(proposal)
}
