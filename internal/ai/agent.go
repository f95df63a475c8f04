package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// DraftActionKind enumerates what the agent may draft. The agent never
// executes anything; a draft is surfaced to the user for confirmation.
type DraftActionKind string

const (
	DraftProcurement   DraftActionKind = "create_procurement"
	DraftReceiving     DraftActionKind = "create_receiving"
	DraftSale          DraftActionKind = "create_sale"
	DraftClarification DraftActionKind = "clarification"
	DraftAnswer        DraftActionKind = "answer"
)

// DraftLine is one item position within a drafted action. Quantities and
// prices are decimal strings, never floats.
type DraftLine struct {
	ItemName  string `json:"item_name" jsonschema_description:"Item name exactly as it appears in the catalog"`
	Quantity  string `json:"quantity" jsonschema_description:"Quantity as a decimal string, e.g. \"10\""`
	UnitPrice string `json:"unit_price" jsonschema_description:"Unit purchase price as a decimal string; empty for sales, where pricing is derived server-side"`
}

// DraftAction is the agent's structured interpretation of a free-text stock
// note. Exactly one of the kind-specific fields is meaningful per kind.
type DraftAction struct {
	Kind       DraftActionKind `json:"kind" jsonschema:"enum=create_procurement,enum=create_receiving,enum=create_sale,enum=clarification,enum=answer" jsonschema_description:"What the note asks for"`
	VendorName string          `json:"vendor_name" jsonschema_description:"Vendor name for create_procurement; empty otherwise"`
	OrderID    int64           `json:"order_id" jsonschema_description:"Procurement order id for create_receiving; 0 otherwise"`
	Lines      []DraftLine     `json:"lines" jsonschema_description:"Item lines for create_procurement, create_receiving, or create_sale"`
	Message    string          `json:"message" jsonschema_description:"Clarifying question or direct answer text for clarification/answer kinds"`
	Confidence float64         `json:"confidence" jsonschema_description:"Confidence in this interpretation, 0.0-1.0"`
	Reasoning  string          `json:"reasoning" jsonschema_description:"Short explanation of how the note was interpreted"`
}

// AgentService interprets free-text stock notes into draft actions.
type AgentService interface {
	InterpretStockNote(ctx context.Context, note string, registry *ToolRegistry) (*DraftAction, error)
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// InterpretStockNote runs the registry's read tools to snapshot the current
// catalog and stock state, then asks the model for a single structured
// interpretation of the note. The returned draft is never executed here.
func (a *Agent) InterpretStockNote(ctx context.Context, note string, registry *ToolRegistry) (*DraftAction, error) {
	var contextBlock strings.Builder
	if registry != nil {
		for _, t := range registry.All() {
			result, err := t.Handler(ctx)
			if err != nil {
				return nil, fmt.Errorf("tool %s: %w", t.Name, err)
			}
			fmt.Fprintf(&contextBlock, "## %s (%s)\n%s\n\n", t.Name, t.Description, result)
		}
	}

	prompt := fmt.Sprintf(`You are an inventory clerk assistant for a goods trading business.
Interpret the stock note below and draft exactly one action.
Rules:
1. Reference items ONLY by names present in the catalog data.
2. Quantities and prices MUST be exact decimal strings (e.g. "10", "1500.50").
3. Never invent vendors, order ids, or items; if the note is ambiguous, use kind "clarification" and ask one question.
4. For plain questions about current stock, use kind "answer" and put the answer in message.
5. Provide a confidence score (0.0-1.0) and explain your reasoning.

Current data:
%s
Stock note: %s`, contextBlock.String(), note)

	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "stock_note_draft_action",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A drafted inventory action interpreted from a free-text stock note"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var draft DraftAction
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("draft validation failed: %w", err)
	}

	return &draft, nil
}

// Validate checks the structural consistency of a draft before it is shown
// to the user.
func (d *DraftAction) Validate() error {
	switch d.Kind {
	case DraftProcurement:
		if d.VendorName == "" {
			return fmt.Errorf("create_procurement draft is missing vendor_name")
		}
		if len(d.Lines) == 0 {
			return fmt.Errorf("create_procurement draft has no lines")
		}
	case DraftReceiving:
		if d.OrderID <= 0 {
			return fmt.Errorf("create_receiving draft is missing order_id")
		}
	case DraftSale:
		if len(d.Lines) == 0 {
			return fmt.Errorf("create_sale draft has no lines")
		}
	case DraftClarification, DraftAnswer:
		if d.Message == "" {
			return fmt.Errorf("%s draft has an empty message", d.Kind)
		}
	default:
		return fmt.Errorf("unknown draft kind %q", d.Kind)
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("confidence %f out of range", d.Confidence)
	}
	return nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v DraftAction
	return reflector.Reflect(v)
}
