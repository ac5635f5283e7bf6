package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/playctl/playctl/color"
	"github.com/playctl/playctl/constant"
	"github.com/playctl/playctl/key"
	"github.com/playctl/playctl/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

// Field is a configuration key with its default value.
type Field struct {
	Key         string
	Value       any
	Description string

	// Options, when set, lists the only accepted values of a string field.
	Options []string
}

// Env returns the environment variable that overrides the field.
func (f Field) Env() string {
	return strings.ToUpper(constant.Playctl + "_" + EnvKeyReplacer.Replace(f.Key))
}

func (f Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return fmt.Sprintf("%T", f.Value)
	}
}

// Pretty renders the field with its current value for the terminal.
func (f Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string   `json:"key"`
		Value       any      `json:"value"`
		Default     any      `json:"default"`
		Description string   `json:"description"`
		Type        string   `json:"type"`
		Options     []string `json:"options,omitempty"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
		Options:     f.Options,
	})
}

var fields = []Field{
	{Key: key.Player, Value: "mpv", Description: "Player executable. It must speak the mpv JSON IPC protocol"},
	{Key: key.VideoFormat, Value: "webm", Description: "Preferred video container.\nOnly streams with MIME type video/<format> are listed, LBRY MP4 always is"},
	{Key: key.DefaultResolution, Value: "", Description: "Preferred resolution label, e.g. 1080p.\nMatched as a substring of the available quality labels"},
	{Key: key.DefaultSubtitle, Value: "", Description: "Preferred subtitle language code, e.g. en or en-US.\nThe region suffix is ignored when matching"},
	{Key: key.Autoplay, Value: false, Description: "Play the next video automatically when the current one ends"},
	{Key: key.PlayerPollInterval, Value: 100, Description: "Delay in milliseconds between position checks of segments, live edge and chapters"},
	{Key: key.PositionsEnable, Value: true, Description: "Remember the watch position of unfinished videos"},
	{Key: key.PositionsBackend, Value: "json", Description: "Watch position storage", Options: []string{"json", "bolt"}},
	{Key: key.RecentSuggestions, Value: true, Description: "Suggest recently watched videos when completing the watch command"},
	{Key: key.SponsorBlockEnable, Value: true, Description: "Skip sponsor segments automatically"},
	{Key: key.SponsorBlockNotifications, Value: true, Description: "Print a line when a segment was skipped"},
	{Key: key.SponsorBlockCategories, Value: []string{"sponsor"}, Description: "SponsorBlock categories to skip.\nEmpty disables segment fetching"},
	{Key: key.PipedInstance, Value: "https://pipedapi.kavin.rocks", Description: "Piped API instance used to resolve streams"},
	{Key: key.IconsVariant, Value: "plain", Description: "Icons variant, nerd requires a nerd font", Options: []string{"emoji", "kaomoji", "plain", "squares", "nerd"}},
	{Key: key.LogsWrite, Value: false, Description: "Write logs"},
	{Key: key.LogsLevel, Value: "info", Description: "Log level, from least to most verbose", Options: []string{"panic", "fatal", "error", "warn", "info", "debug", "trace"}},
	{Key: key.LogsJson, Value: false, Description: "Use json format for logs"},
	{Key: key.CliColored, Value: true, Description: "Enable colored CLI output"},
	{Key: key.CliVersionCheck, Value: true, Description: "Check for a new release when printing the version"},
}

// Default maps every key to its field.
var Default = lo.KeyBy(fields, func(f Field) string { return f.Key })

// Keys returns every configuration key, sorted.
func Keys() []string {
	keys := lo.Keys(Default)
	slices.Sort(keys)
	return keys
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint": style.Faint,
	"key":   style.Fg(color.Purple),
	"label": style.Fg(color.Blue),
	"value": func(k string) string { return highlight(viper.Get(k)) },
	"hl":    highlight,
	"join":  strings.Join,
}).Parse(`{{ faint .Description }}
{{ label "Key:" }}     {{ key .Key }}
{{ label "Env:" }}     {{ .Env }}
{{ label "Value:" }}   {{ value .Key }}
{{ label "Default:" }} {{ hl .Value }}
{{ label "Type:" }}    {{ .TypeName }}{{ if .Options }}
{{ label "Options:" }} {{ join .Options ", " }}{{ end }}`))

// TypeName is the type of the default value as shown to users.
func (f Field) TypeName() string {
	return f.typeName()
}

func highlight(v any) string {
	switch value := v.(type) {
	case bool:
		if value {
			return style.Fg(color.Green)("true")
		}
		return style.Fg(color.Red)("false")
	case string:
		return style.Fg(color.Yellow)(fmt.Sprintf("%q", value))
	default:
		return fmt.Sprint(value)
	}
}
