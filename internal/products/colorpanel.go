package product

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	pkgerrors "github.com/justgold/justgold-backend/pkg/errors"
)

// Color panel types a variant swatch may declare.
const (
	ColorPanelHex      = "hex"
	ColorPanelGradient = "gradient"
	ColorPanelImage    = "image"
)

// ColorPanelInput is the raw swatch submission for one variant.
// FileURL is set when a swatch file was uploaded to the media store;
// Required marks create-time submissions where a panel must be present.
type ColorPanelInput struct {
	Type     *string
	Value    *string
	FileURL  *string
	Required bool
}

// ColorPanel is a validated swatch ready to persist.
type ColorPanel struct {
	Type  string
	Value string
}

var (
	hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	gradientRe = regexp.MustCompile(`(?i)^(repeating-)?(linear|radial|conic)-gradient\(.+\)$`)
)

// ResolveColorPanel runs the swatch decision table. A nil, nil return
// means "nothing submitted, nothing to change" on an optional panel.
// An uploaded file forces the image type and wins over a typed value.
func ResolveColorPanel(in ColorPanelInput) (*ColorPanel, error) {
	panelType := trimmedOrNil(strDeref(in.Type))
	value := trimmedOrNil(strDeref(in.Value))
	hasFile := in.FileURL != nil && strings.TrimSpace(*in.FileURL) != ""

	if panelType == nil && value == nil && !hasFile {
		if in.Required {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "color panel is required")
		}
		return nil, nil
	}
	if panelType == nil && hasFile {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "color panel type is required when a swatch file is uploaded")
	}
	if !in.Required {
		if panelType == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "color panel type is required")
		}
		if value == nil && !hasFile {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "color panel value is required")
		}
	}

	resolvedType := ColorPanelHex
	if panelType != nil {
		resolvedType = *panelType
	}

	var resolvedValue string
	switch {
	case hasFile:
		if resolvedType != ColorPanelImage {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("uploaded swatch file conflicts with color panel type %q", resolvedType))
		}
		resolvedValue = strings.TrimSpace(*in.FileURL)
	case value != nil:
		resolvedValue = *value
	}

	switch resolvedType {
	case ColorPanelHex:
		if !hexColorRe.MatchString(resolvedValue) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("invalid hex color %q for color panel type %q", resolvedValue, ColorPanelHex))
		}
	case ColorPanelGradient:
		if !gradientRe.MatchString(resolvedValue) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("invalid gradient expression for color panel type %q", ColorPanelGradient))
		}
	case ColorPanelImage:
		if !hasFile && !isHTTPURL(resolvedValue) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("invalid image url for color panel type %q", ColorPanelImage))
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown color panel type %q", resolvedType))
	}

	return &ColorPanel{Type: resolvedType, Value: resolvedValue}, nil
}

func isHTTPURL(value string) bool {
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func strDeref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
