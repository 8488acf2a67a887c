package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/tablegen/internal/dice"
	"github.com/louisbranch/tablegen/internal/random"
	"github.com/louisbranch/tablegen/internal/render"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DieResult is one rolled die in tool output.
type DieResult struct {
	Type  string `json:"type" jsonschema:"die type such as d6"`
	Value int    `json:"value" jsonschema:"rolled value including explosions"`
	Kept  bool   `json:"kept" jsonschema:"whether the die counts toward the total"`
}

// RollInput represents the MCP tool input for rolling a formula.
type RollInput struct {
	Formula string `json:"formula" jsonschema:"dice formula such as 4d6kh3+2"`
	Seed    *int64 `json:"seed,omitempty" jsonschema:"optional seed for a reproducible roll"`
}

// RollResult represents the MCP tool output for rolling a formula.
type RollResult struct {
	Formula string      `json:"formula" jsonschema:"formula as given"`
	Total   string      `json:"total" jsonschema:"numeric result as text"`
	Detail  string      `json:"detail" jsonschema:"breakdown of every term and die"`
	Dice    []DieResult `json:"dice" jsonschema:"dice in roll order"`
	Seed    int64       `json:"seed" jsonschema:"seed used; pass it back to replay the roll"`
}

// GenerateInput represents the MCP tool input for running a generator.
type GenerateInput struct {
	Generator string   `json:"generator" jsonschema:"generator id"`
	Args      []string `json:"args,omitempty" jsonschema:"argument tokens for the generator"`
	Seed      *int64   `json:"seed,omitempty" jsonschema:"optional seed for a reproducible result"`
}

// GenerateResult represents the MCP tool output for running a generator.
type GenerateResult struct {
	Generator string      `json:"generator" jsonschema:"generator id"`
	Text      string      `json:"text" jsonschema:"fully expanded text"`
	Annotated string      `json:"annotated" jsonschema:"expanded text with dice annotations"`
	Dice      []DieResult `json:"dice" jsonschema:"every die rolled, depth first"`
	Seed      int64       `json:"seed" jsonschema:"seed used; pass it back to replay the result"`
}

// ListGeneratorsInput represents the MCP tool input for listing generators.
type ListGeneratorsInput struct{}

// GeneratorInfo describes one generator of the loaded collection.
type GeneratorInfo struct {
	ID   string `json:"id" jsonschema:"generator id"`
	Type string `json:"type" jsonschema:"generator kind"`
	Name string `json:"name" jsonschema:"display name"`
}

// ListGeneratorsResult represents the MCP tool output for listing generators.
type ListGeneratorsResult struct {
	Generators []GeneratorInfo `json:"generators" jsonschema:"generators in collection order"`
}

// RollTool defines the MCP tool schema for rolling a formula.
func RollTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll",
		Description: "Rolls a dice formula such as 3d6, 4d6kh3+2 or 10d10ge8",
	}
}

// GenerateTool defines the MCP tool schema for running a generator.
func GenerateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "generate",
		Description: "Runs a generator and expands every {id args} reference in its output",
	}
}

// ListGeneratorsTool defines the MCP tool schema for listing generators.
func ListGeneratorsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_generators",
		Description: "Lists the generators of the loaded collection",
	}
}

// RollHandler evaluates a dice formula.
func RollHandler() mcp.ToolHandlerFor[RollInput, RollResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollInput) (*mcp.CallToolResult, RollResult, error) {
		if strings.TrimSpace(input.Formula) == "" {
			return nil, RollResult{}, fmt.Errorf("formula is required")
		}
		rng, seed, err := random.NewRand(seedOf(input.Seed))
		if err != nil {
			return nil, RollResult{}, err
		}
		node, err := dice.Parse(input.Formula, rng)
		if err != nil {
			return nil, RollResult{}, err
		}
		return nil, RollResult{
			Formula: input.Formula,
			Total:   node.String(),
			Detail:  node.Detail(),
			Dice:    dieResults(dice.Rolls(node)),
			Seed:    seed,
		}, nil
	}
}

// GenerateHandler runs a generator through the server's composer.
func (s *Server) GenerateHandler() mcp.ToolHandlerFor[GenerateInput, GenerateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GenerateInput) (*mcp.CallToolResult, GenerateResult, error) {
		id := strings.TrimSpace(input.Generator)
		if id == "" {
			return nil, GenerateResult{}, fmt.Errorf("generator is required")
		}
		rng, seed, err := random.NewRand(seedOf(input.Seed))
		if err != nil {
			return nil, GenerateResult{}, err
		}
		root, err := s.composer.Generate(ctx, rng, id, input.Args)
		if err != nil {
			return nil, GenerateResult{}, err
		}

		var rolls []dice.Die
		collectRolls(root, &rolls)
		return nil, GenerateResult{
			Generator: id,
			Text:      render.Text{}.Render(root),
			Annotated: render.Text{ShowRolls: true}.Render(root),
			Dice:      dieResults(rolls),
			Seed:      seed,
		}, nil
	}
}

// ListGeneratorsHandler lists the collection's generators.
func (s *Server) ListGeneratorsHandler() mcp.ToolHandlerFor[ListGeneratorsInput, ListGeneratorsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ListGeneratorsInput) (*mcp.CallToolResult, ListGeneratorsResult, error) {
		configs := s.collection.Configs()
		infos := make([]GeneratorInfo, 0, len(configs))
		for _, cfg := range configs {
			infos = append(infos, GeneratorInfo{ID: cfg.ID, Type: cfg.Type, Name: cfg.Name})
		}
		return nil, ListGeneratorsResult{Generators: infos}, nil
	}
}

func seedOf(seed *int64) int64 {
	if seed == nil {
		return 0
	}
	return *seed
}

func dieResults(rolls []dice.Die) []DieResult {
	out := make([]DieResult, 0, len(rolls))
	for _, die := range rolls {
		out = append(out, DieResult{Type: die.Type, Value: die.Value, Kept: die.Kept})
	}
	return out
}
