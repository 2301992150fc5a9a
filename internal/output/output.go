package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// JSONMode controls whether output is JSON or human-readable
var JSONMode bool

// Out receives command results.
var Out io.Writer = os.Stdout

// Result represents a generic result for JSON output
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Print outputs data. In JSON mode, marshals to JSON. Otherwise calls the textFn.
func Print(data interface{}, textFn func()) error {
	if JSONMode {
		return encode(Result{Success: true, Data: data})
	}
	textFn()
	return nil
}

// PrintError reports err. In JSON mode it is written as a failed Result;
// otherwise printing is left to the caller. err is returned unchanged so the
// command still exits non-zero.
func PrintError(err error) error {
	if JSONMode {
		if encErr := encode(Result{Success: false, Error: err.Error()}); encErr != nil {
			return fmt.Errorf("%w (encode: %v)", err, encErr)
		}
	}
	return err
}

func encode(r Result) error {
	enc := json.NewEncoder(Out)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
