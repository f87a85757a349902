package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/1broseidon/wlshell/internal/config"
)

// ErrAborted is returned when the user cancels the wizard.
var ErrAborted = errors.New("config wizard aborted")

// wizardFields holds the form values as the strings huh edits.
type wizardFields struct {
	outputName   string
	outputWidth  string
	outputHeight string
	fallbackW    string
	fallbackH    string
	memoLimit    string
	logLevel     string
	logFormat    string
	importX11    bool
}

func fieldsFrom(cfg *config.Config) wizardFields {
	f := wizardFields{
		fallbackW: strconv.Itoa(cfg.Placement.FallbackSize.Width),
		fallbackH: strconv.Itoa(cfg.Placement.FallbackSize.Height),
		memoLimit: strconv.Itoa(cfg.Placement.MemoLimit),
		logLevel:  cfg.Logging.Level,
		logFormat: cfg.Logging.Format,
		importX11: cfg.X11.ImportOutputs,
	}
	if len(cfg.Outputs) > 0 {
		f.outputName = cfg.Outputs[0].Name
		f.outputWidth = strconv.Itoa(cfg.Outputs[0].Width)
		f.outputHeight = strconv.Itoa(cfg.Outputs[0].Height)
	}
	return f
}

func positiveInt(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if v <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func nonNegativeInt(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if v < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

// apply writes the fields into cfg. The first output is replaced; any
// further configured outputs are kept.
func (f wizardFields) apply(cfg *config.Config) error {
	atoi := func(name, s string, check func(string) error) (int, error) {
		if err := check(s); err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		v, _ := strconv.Atoi(strings.TrimSpace(s))
		return v, nil
	}

	name := strings.TrimSpace(f.outputName)
	if name == "" {
		return fmt.Errorf("output name: must not be empty")
	}
	ow, err := atoi("output width", f.outputWidth, positiveInt)
	if err != nil {
		return err
	}
	oh, err := atoi("output height", f.outputHeight, positiveInt)
	if err != nil {
		return err
	}
	fw, err := atoi("fallback width", f.fallbackW, positiveInt)
	if err != nil {
		return err
	}
	fh, err := atoi("fallback height", f.fallbackH, positiveInt)
	if err != nil {
		return err
	}
	memo, err := atoi("memo limit", f.memoLimit, nonNegativeInt)
	if err != nil {
		return err
	}

	first := config.OutputConfig{Name: name, Width: ow, Height: oh}
	if len(cfg.Outputs) == 0 {
		cfg.Outputs = []config.OutputConfig{first}
	} else {
		cfg.Outputs[0] = first
	}
	cfg.Placement.FallbackSize = config.Size{Width: fw, Height: fh}
	cfg.Placement.MemoLimit = memo
	cfg.Logging.Level = f.logLevel
	cfg.Logging.Format = f.logFormat
	cfg.X11.ImportOutputs = f.importX11
	return cfg.Validate()
}

func (f *wizardFields) form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("output_name").
				Title("Output Name").
				Description("Name of the headless output created at start-up").
				Value(&f.outputName),
			huh.NewInput().
				Key("output_width").
				Title("Output Width").
				Validate(positiveInt).
				Value(&f.outputWidth),
			huh.NewInput().
				Key("output_height").
				Title("Output Height").
				Validate(positiveInt).
				Value(&f.outputHeight),
			huh.NewConfirm().
				Key("import_outputs").
				Title("Import Host Outputs").
				Description("Seed outputs and dock struts from the X server").
				Value(&f.importX11),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("fallback_width").
				Title("Fallback Width").
				Description("Window size assumed before the first buffer arrives").
				Validate(positiveInt).
				Value(&f.fallbackW),
			huh.NewInput().
				Key("fallback_height").
				Title("Fallback Height").
				Validate(positiveInt).
				Value(&f.fallbackH),
			huh.NewInput().
				Key("memo_limit").
				Title("Placement Memo Limit").
				Description("Remembered spiral cells, 0 for unbounded").
				Validate(nonNegativeInt).
				Value(&f.memoLimit),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&f.logLevel),
			huh.NewSelect[string]().
				Key("log_format").
				Title("Log Format").
				Options(huh.NewOptions("auto", "text", "json", "logfmt")...).
				Value(&f.logFormat),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

// Wizard asks for the common settings, starting from base, and returns
// the edited copy.
func Wizard(base *config.Config) (*config.Config, error) {
	if base == nil {
		base = config.DefaultConfig()
	}
	cfg := *base
	cfg.Outputs = append([]config.OutputConfig(nil), base.Outputs...)
	cfg.Layers = append([]config.LayerConfig(nil), base.Layers...)

	fields := fieldsFrom(&cfg)
	if err := fields.form().Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrAborted
		}
		return nil, err
	}
	if err := fields.apply(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
