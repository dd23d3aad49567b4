package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"deckview/internal/domain/entities"
)

// ErrNotArray is returned when a deck or library document is not a bare
// array of records.
var ErrNotArray = errors.New("document must be a JSON or YAML array")

// DecodeDeck parses a deck document: a bare JSON or YAML array of slide
// records. Anything else is rejected so a replace-all import can never wipe
// state with a malformed file.
func DecodeDeck(data []byte) (*entities.Deck, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, ErrNotArray
	}

	if strings.HasPrefix(trimmed, "[") {
		var slides []entities.Slide
		if err := json.Unmarshal(data, &slides); err != nil {
			return nil, fmt.Errorf("parsing deck JSON: %w", err)
		}
		return &entities.Deck{Slides: slides}, nil
	}
	if strings.HasPrefix(trimmed, "{") {
		return nil, ErrNotArray
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing deck YAML: %w", err)
	}
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.SequenceNode {
		return nil, ErrNotArray
	}
	var slides []entities.Slide
	if err := node.Decode(&slides); err != nil {
		return nil, fmt.Errorf("parsing deck YAML: %w", err)
	}
	return &entities.Deck{Slides: slides}, nil
}

// DecodeJSONArray parses a library document (templates or themes) into typed
// records, rejecting non-array documents.
func DecodeJSONArray[T any](data []byte) ([]T, error) {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, ErrNotArray
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return records, nil
}

// DecodeArray parses a seed document, JSON or YAML, into typed records with
// the same bare-array requirement as DecodeDeck.
func DecodeArray[T any](data []byte) ([]T, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || strings.HasPrefix(trimmed, "{") {
		return nil, ErrNotArray
	}
	if strings.HasPrefix(trimmed, "[") {
		return DecodeJSONArray[T](data)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.SequenceNode {
		return nil, ErrNotArray
	}
	var records []T
	if err := node.Decode(&records); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return records, nil
}
