package server

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed study_request.schema.json
var studyRequestSchema []byte

// validateStudyRequest checks a raw study request body against the embedded
// JSON schema before it is decoded.
func validateStudyRequest(body []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(studyRequestSchema),
		gojsonschema.NewBytesLoader(body),
	)
	if err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("invalid request: %s", strings.Join(msgs, "; "))
}
