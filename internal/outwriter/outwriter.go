// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/huangsam/quizscale/internal/contract"
	"github.com/huangsam/quizscale/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct{}

var _ contract.ResultWriter = &OutWriter{} // Compile-time check

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteConversion writes converted results using the configured output format.
func (ow *OutWriter) WriteConversion(result *schema.ConversionResult, cfg *contract.Config) error {
	return WriteConversionResult(result, cfg)
}

// WriteParameters writes the derived scale values using the configured output format.
func (ow *OutWriter) WriteParameters(params *schema.ScaleParameters, cfg *contract.Config) error {
	return WriteScaleParameters(params, cfg)
}

// GetMaxNameWidth calculates the maximum width for student names in table output
// based on terminal width.
func GetMaxNameWidth(cfg *contract.Config) int {
	termWidth := cfg.Width

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// # + ID + Team + Original + Converted + Q Sum + Check, with borders
	baseWidth := 75

	available := termWidth - baseWidth
	if available < 12 {
		return 12
	}
	if available > 40 {
		return 40
	}
	return available
}
