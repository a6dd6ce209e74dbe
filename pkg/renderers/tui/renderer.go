package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-vortex/pkg/model"
	"github.com/goliatone/go-vortex/pkg/render"
	"github.com/goliatone/go-vortex/pkg/validation"
)

const skipOption = "(skip)"

// Renderer implements render.Renderer for terminal sessions: every field of
// the step becomes a prompt, validated live with the single-field rules.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	uploader     Uploader
	env          validation.Env
	theme        Theme
	logger       *zap.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		logger:       zap.NewNop(),
		theme:        Theme{ErrorPrefix: "✗ "},
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Driver exposes the prompt driver so a flow runner can ask navigation
// questions through the same terminal.
func (r *Renderer) Driver() PromptDriver {
	return r.driver
}

// Render prompts for every field of form and serializes the answers.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	values, err := r.Collect(ctx, form, opts)
	if err != nil {
		return nil, err
	}
	return r.serialize(form, values)
}

// Collect prompts for every field of form and returns the raw answers keyed
// by field name. Errors from a previous submission are printed before the
// field they belong to.
func (r *Renderer) Collect(ctx context.Context, form model.FormModel, opts render.RenderOptions) (map[string]string, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, message := range render.MergeFormErrors(opts.FormErrors) {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return nil, err
		}
	}

	values := make(map[string]string, len(form.Fields))
	for _, field := range form.Fields {
		if message := opts.FirstError(field.Name); message != "" {
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
				return nil, err
			}
		}
		value, err := r.promptField(ctx, field, opts.Value(field))
		if err != nil {
			return nil, err
		}
		values[field.Name] = value
	}
	return values, nil
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, current string) (string, error) {
	validator := func(value string) error {
		return validation.ValidateField(field, value, r.env).Err()
	}

	for {
		value, err := r.ask(ctx, field, current, validator)
		if err != nil {
			return "", err
		}
		res := validation.ValidateField(field, value, r.env)
		if res.Valid {
			return value, nil
		}
		r.logger.Debug("prompt rejected", zap.String("field", field.Name))
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+res.Message); err != nil {
			return "", err
		}
	}
}

func (r *Renderer) ask(ctx context.Context, field model.Field, current string, validator func(string) error) (string, error) {
	label := displayLabel(field)
	help := displayHelp(field)

	switch field.Type {
	case model.FieldTypePassword:
		return r.driver.Password(ctx, InputConfig{Message: label, Help: help, Validator: validator})
	case model.FieldTypeTextArea:
		return r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: current, Help: help, Validator: validator})
	case model.FieldTypeSelect:
		return r.askSelect(ctx, field, current, label, help)
	case model.FieldTypeFile:
		return r.askFile(ctx, field, current, label, help)
	case model.FieldTypeDate:
		if help == "" {
			help = "Format: YYYY-MM-DD"
		}
	}
	return r.driver.Input(ctx, InputConfig{Message: label, Default: current, Help: help, Validator: validator})
}

func (r *Renderer) askSelect(ctx context.Context, field model.Field, current, label, help string) (string, error) {
	labels := make([]string, 0, len(field.Options)+1)
	values := make([]string, 0, len(field.Options)+1)
	if !field.Required {
		labels = append(labels, skipOption)
		values = append(values, "")
	}
	for _, opt := range field.Options {
		labels = append(labels, opt.Label)
		values = append(values, opt.Value)
	}

	def := slices.Index(values, current)
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      label,
		Options:      labels,
		DefaultIndex: def,
		Help:         help,
		PageSize:     10,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(values) {
		return "", nil
	}
	return values[idx], nil
}

func (r *Renderer) askFile(ctx context.Context, field model.Field, current, label, help string) (string, error) {
	if help == "" {
		help = "Path to an image file, leave empty to skip"
	}
	path, err := r.driver.Input(ctx, InputConfig{Message: label + " (file path)", Help: help})
	if err != nil {
		return "", err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return current, nil
	}
	if r.uploader == nil {
		return "", ErrNoUploader
	}
	ref, err := r.uploader(ctx, field, path)
	if err != nil {
		return "", fmt.Errorf("tui: upload %s: %w", field.Name, err)
	}
	return ref, nil
}

func (r *Renderer) serialize(form model.FormModel, values map[string]string) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		out := url.Values{}
		for key, value := range values {
			out.Set(key, value)
		}
		return []byte(out.Encode()), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(form, values)), nil
	default:
		return json.Marshal(values)
	}
}

func displayLabel(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func displayHelp(field model.Field) string {
	if h := field.Metadata["cli.help"]; h != "" {
		return h
	}
	return field.Description
}

// prettyPrint lists answers in field order, masking passwords.
func prettyPrint(form model.FormModel, values map[string]string) string {
	var b strings.Builder
	seen := make(map[string]struct{}, len(values))
	for _, field := range form.Fields {
		value, ok := values[field.Name]
		if !ok {
			continue
		}
		seen[field.Name] = struct{}{}
		if field.Type == model.FieldTypePassword && value != "" {
			value = strings.Repeat("*", 8)
		}
		fmt.Fprintf(&b, "%s: %s\n", displayLabel(field), value)
	}

	var extra []string
	for key := range values {
		if _, ok := seen[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		fmt.Fprintf(&b, "%s: %s\n", key, values[key])
	}
	return b.String()
}
