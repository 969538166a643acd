// Command calc-engine is a JSON-in, JSON-out wrapper around the
// calculators for callers that shell out instead of using the API.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"dealdesk/pkg/core/debt"
	"dealdesk/pkg/core/deal"
	"dealdesk/pkg/core/underwrite"
)

func main() {
	mode := flag.String("mode", "calculate", "Mode: check, calculate or amortize")
	dataStr := flag.String("data", "", "JSON data payload, or - for stdin")
	flag.Parse()

	payload := []byte(*dataStr)
	if *dataStr == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			fail(err)
		}
		payload = b
	}
	if len(payload) == 0 {
		fail(errors.New("no data provided"))
	}

	out, err := run(*mode, payload)
	if err != nil {
		fail(err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fail(err)
	}
}

type checkResult struct {
	Valid  bool              `json:"valid"`
	Fields []deal.FieldError `json:"fields,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func run(mode string, payload []byte) (interface{}, error) {
	switch mode {
	case "check":
		var d deal.Deal
		if err := json.Unmarshal(payload, &d); err != nil {
			return nil, fmt.Errorf("error unmarshaling deal: %w", err)
		}
		return check(d), nil
	case "calculate":
		var d deal.Deal
		if err := json.Unmarshal(payload, &d); err != nil {
			return nil, fmt.Errorf("error unmarshaling deal: %w", err)
		}
		return underwrite.Run(d)
	case "amortize":
		var loan debt.Loan
		if err := json.Unmarshal(payload, &loan); err != nil {
			return nil, fmt.Errorf("error unmarshaling loan: %w", err)
		}
		return debt.Amortize(loan)
	default:
		return nil, fmt.Errorf("unknown mode: %s", mode)
	}
}

func check(d deal.Deal) checkResult {
	err := deal.Validate(d)
	if err == nil {
		return checkResult{Valid: true}
	}
	var ve *deal.ValidationError
	if errors.As(err, &ve) {
		return checkResult{Fields: ve.Fields, Error: err.Error()}
	}
	return checkResult{Error: err.Error()}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
