// Package extract pulls structured song-request records out of free
// text with a JSON-mode model call, then validates them against a JSON
// Schema. Validation failures are collected as field-level messages and
// returned alongside the raw data, never raised.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/quantive/stepgraph/pkg/stepgraph/llm"
)

const extractSystemPrompt = "You are a data extraction assistant. Extract song request information and return valid JSON only."

const extractPromptTemplate = `Extract the following information from this user input and return as JSON:
- song_name: The name of the song
- recipient_name: The name of the person to send the song to
- free_text: The message to include

User input: %q

Return only valid JSON with these three fields. If any information is missing, make reasonable assumptions.`

// songRequestSchema enforces the field contracts: all three fields
// required, non-blank, and length-capped.
var songRequestSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"song_name": {"type": "string", "minLength": 1, "maxLength": 100, "pattern": "\\S"},
		"recipient_name": {"type": "string", "minLength": 1, "maxLength": 50, "pattern": "\\S"},
		"free_text": {"type": "string", "minLength": 1, "maxLength": 500, "pattern": "\\S"}
	},
	"required": ["song_name", "recipient_name", "free_text"],
	"additionalProperties": true
}`)

// SongRequest is a validated extraction.
type SongRequest struct {
	SongName      string `json:"song_name"`
	RecipientName string `json:"recipient_name"`
	FreeText      string `json:"free_text"`
}

// Outcome is the full result of one extraction attempt. Errors hold
// field-level validation messages; Raw holds whatever the model
// produced, valid or not.
type Outcome struct {
	Success bool           `json:"success"`
	Request *SongRequest   `json:"song_request"`
	Errors  []string       `json:"errors"`
	Raw     map[string]any `json:"raw_data"`
}

// Extractor runs song-request extraction against a model.
type Extractor struct {
	client llm.Client
	model  string
	schema *jsonschema.Schema
}

// New builds an Extractor. The model defaults to gpt-4o-mini.
func New(client llm.Client, model string) (*Extractor, error) {
	if model == "" {
		model = "gpt-4o-mini"
	}

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(songRequestSchema)))
	if err != nil {
		return nil, fmt.Errorf("song request schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("mem://extract/song_request.json", doc); err != nil {
		return nil, fmt.Errorf("song request schema: %w", err)
	}
	schema, err := c.Compile("mem://extract/song_request.json")
	if err != nil {
		return nil, fmt.Errorf("song request schema: %w", err)
	}

	return &Extractor{client: client, model: model, schema: schema}, nil
}

// Extract parses one input. Transport failures are returned as an
// error; everything downstream of a successful model call lands in the
// Outcome.
func (e *Extractor) Extract(ctx context.Context, input string) (Outcome, error) {
	resp, err := e.client.Complete(ctx, llm.Request{
		Model:        e.model,
		SystemPrompt: extractSystemPrompt,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf(extractPromptTemplate, input),
		}},
		Temperature: 0.3,
		MaxTokens:   200,
		ForceJSON:   true,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("extraction request: %w", err)
	}
	return e.Validate(resp.Content), nil
}

// Validate checks a raw model payload against the song-request
// contract.
func (e *Extractor) Validate(payload string) Outcome {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(payload))
	if err != nil {
		return Outcome{Errors: []string{fmt.Sprintf("JSON parsing error: %v", err)}}
	}
	raw, _ := doc.(map[string]any)

	if err := e.schema.Validate(doc); err != nil {
		return Outcome{Errors: fieldErrors(err), Raw: raw}
	}

	req := SongRequest{
		SongName:      strings.TrimSpace(stringField(raw, "song_name")),
		RecipientName: strings.TrimSpace(stringField(raw, "recipient_name")),
		FreeText:      strings.TrimSpace(stringField(raw, "free_text")),
	}
	return Outcome{Success: true, Request: &req, Errors: []string{}, Raw: raw}
}

// fieldErrors flattens a schema validation failure into one message per
// violated field.
func fieldErrors(err error) []string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}

	var out []string
	var walk func(v *jsonschema.ValidationError)
	walk = func(v *jsonschema.ValidationError) {
		if len(v.Causes) == 0 {
			field := strings.Join(v.InstanceLocation, " -> ")
			if field == "" {
				field = "(root)"
			}
			out = append(out, fmt.Sprintf("%s: %s", field, v.Error()))
			return
		}
		for _, cause := range v.Causes {
			walk(cause)
		}
	}
	walk(ve)
	return out
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
