package text

import (
	"bytes"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/davidmdm/ansi"
)

type DiffFunc func(previous, next File, context int) string

type File struct {
	Name    string
	Content string
}

// Diff returns the unified diff turning previous into next, or an empty
// string when both have the same content.
func Diff(previous, next File, context int) string {
	if previous.Content == next.Content {
		return ""
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(previous.Content),
		B:        difflib.SplitLines(next.Content),
		FromFile: previous.Name,
		ToFile:   next.Name,
		Context:  context,
	})
	return diff
}

func DiffColorized(previous, next File, context int) string {
	return colorize(Diff(previous, next, context))
}

var (
	green = ansi.MakeStyle(ansi.FgGreen)
	red   = ansi.MakeStyle(ansi.FgRed)
)

func colorize(value string) string {
	lines := strings.Split(value, "\n")
	colorized := make([]string, len(lines))
	for i, line := range lines {
		switch {
		case len(line) == 0:
			continue
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			colorized[i] = line
		case line[0] == '-':
			colorized[i] = red.Sprint(line)
		case line[0] == '+':
			colorized[i] = green.Sprint(line)
		default:
			colorized[i] = line
		}
	}

	return strings.Join(colorized, "\n")
}

func ToYamlFile(name string, value any) (File, error) {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(2)
	err := encoder.Encode(value)
	return File{Name: name, Content: buffer.String()}, err
}
