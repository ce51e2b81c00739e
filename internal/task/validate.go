package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// CreateInput is the payload of the Create operation.
type CreateInput struct {
	Text string `json:"text"`
}

// Validate returns the normalized input: text with surrounding whitespace
// removed. Blank text is rejected.
func (in CreateInput) Validate() (CreateInput, error) {
	text := strings.TrimFunc(in.Text, isBlank)
	if text == "" {
		return CreateInput{}, validationError(opCreate, "task text cannot be empty", nil)
	}
	return CreateInput{Text: text}, nil
}

// isBlank reports Unicode white space, counting the byte order mark.
func isBlank(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// UpdateInput is the payload of the Update operation. Only the completion
// flag is mutable.
type UpdateInput struct {
	ID        int64 `json:"id"`
	Completed bool  `json:"completed"`
}

// DeleteInput is the payload of the Delete operation.
type DeleteInput struct {
	ID int64 `json:"id"`
}

// DecodeCreateInput parses a raw {"text": ...} payload. Unknown fields,
// wrong types and a missing text are validation failures. The returned
// input is already normalized.
func DecodeCreateInput(data []byte) (CreateInput, error) {
	var raw struct {
		Text *string `json:"text"`
	}
	if err := decodeStrict(data, &raw); err != nil {
		return CreateInput{}, validationError(opCreate, "invalid input", err)
	}
	if raw.Text == nil {
		return CreateInput{}, validationError(opCreate, "text is required", nil)
	}
	return CreateInput{Text: *raw.Text}.Validate()
}

// DecodeUpdateInput parses a raw {"id": ..., "completed": ...} payload.
// Both fields are required.
func DecodeUpdateInput(data []byte) (UpdateInput, error) {
	var raw struct {
		ID        *int64 `json:"id"`
		Completed *bool  `json:"completed"`
	}
	if err := decodeStrict(data, &raw); err != nil {
		return UpdateInput{}, validationError(opUpdate, "invalid input", err)
	}
	if raw.ID == nil {
		return UpdateInput{}, validationError(opUpdate, "id is required", nil)
	}
	if raw.Completed == nil {
		return UpdateInput{}, validationError(opUpdate, "completed is required", nil)
	}
	return UpdateInput{ID: *raw.ID, Completed: *raw.Completed}, nil
}

// DecodeDeleteInput parses a raw {"id": ...} payload.
func DecodeDeleteInput(data []byte) (DeleteInput, error) {
	var raw struct {
		ID *int64 `json:"id"`
	}
	if err := decodeStrict(data, &raw); err != nil {
		return DeleteInput{}, validationError(opDelete, "invalid input", err)
	}
	if raw.ID == nil {
		return DeleteInput{}, validationError(opDelete, "id is required", nil)
	}
	return DeleteInput{ID: *raw.ID}, nil
}

func decodeStrict(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.New("empty payload")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected data after JSON object")
	}
	return nil
}
