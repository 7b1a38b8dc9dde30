package analysis

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// validateResponse checks a response body against #AnalysisResult.
//
// A fresh cue.Context is used per call; contexts are not safe for
// concurrent use.
func validateResponse(body []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#AnalysisResult"))

	// JSON is valid CUE.
	data := ctx.CompileBytes(body, cue.Filename("response.json"))
	if err := data.Err(); err != nil {
		return fmt.Errorf("parse response: %s", cueerrors.Details(err, nil))
	}

	if err := def.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s", cueerrors.Details(err, nil))
	}
	return nil
}
