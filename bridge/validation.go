package bridge

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/phptoro/bridge-sdk/wireformat"
)

// validate is a package-level singleton for better performance.
// Creating a new validator on each call is expensive; reusing is recommended.
var validate = validator.New()

// ValidateRequest checks the invoke envelope before dispatch. Only the
// envelope is validated: command is a required argument, while params stays
// an opaque blob the bridge never inspects.
func ValidateRequest(req *wireformat.InvokeRequestWire) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("missing required argument %q", fieldToArg(verrs[0].Field()))
		}
		return fmt.Errorf("request validation failed: %w", err)
	}
	return nil
}

// fieldToArg maps wire struct field names to the script-level argument
// names used in diagnostics.
func fieldToArg(field string) string {
	switch field {
	case "Command":
		return "command"
	case "Params":
		return "params"
	default:
		return field
	}
}
