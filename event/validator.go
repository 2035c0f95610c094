package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "huddle://schema/event.json"

// eventSchema describes a writable event document.
const eventSchema = `{
  "type": "object",
  "required": ["title", "type", "date", "duration", "visibility", "owner_id"],
  "properties": {
    "title":            {"type": "string", "minLength": 1, "maxLength": 200},
    "description":      {"type": "string", "maxLength": 5000},
    "type":             {"enum": ["SPORTS", "ACTIVITY", "SOCIAL"]},
    "visibility":       {"enum": ["PUBLIC", "PRIVATE"]},
    "owner_id":         {"type": "string", "minLength": 1},
    "duration":         {"type": "integer", "minimum": 1},
    "max_participants": {"type": "integer", "minimum": 0},
    "participants": {
      "type": ["array", "null"],
      "items": {"type": "string", "minLength": 1}
    },
    "location": {
      "type": "object",
      "properties": {
        "lat":  {"type": "number", "minimum": -90,  "maximum": 90},
        "lng":  {"type": "number", "minimum": -180, "maximum": 180},
        "name": {"type": "string"}
      }
    }
  }
}`

// Validator checks events before they are written to the remote source.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the event document schema.
func NewValidator() (*Validator, error) {
	var doc any
	if err := json.Unmarshal([]byte(eventSchema), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate checks the document shape and the rules a schema cannot express.
func (v *Validator) Validate(e *Event) error {
	if e == nil {
		return errors.New("event is nil")
	}

	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return err
	}

	var problems []string
	if e.Date.IsZero() {
		problems = append(problems, "date is required")
	}
	if e.MaxParticipants > 0 && len(e.Participants) > e.MaxParticipants {
		problems = append(problems, fmt.Sprintf("%d participants exceed max %d", len(e.Participants), e.MaxParticipants))
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
