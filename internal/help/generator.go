package help

import (
	"fmt"
	"io"
	"strings"

	"github.com/podhmo/gocalc/internal/metadata"
)

// GenerateHelp returns the usage message of a program made of subcommands sharing global flags.
// The first command is the default one.
func GenerateHelp(program, description string, global []*metadata.OptionMetadata, commands []*metadata.CommandMetadata) string {
	var sb strings.Builder
	generateHelp(&sb, program, description, global, commands)
	return sb.String()
}

func generateHelp(w io.Writer, program, description string, global []*metadata.OptionMetadata, commands []*metadata.CommandMetadata) {
	fmt.Fprintf(w, "%s - %s\n\n", program, strings.ReplaceAll(description, "\n", "\n"+strings.Repeat(" ", len(program)+3)))

	fmt.Fprintln(w, "Usage:")
	for i, cmd := range commands {
		name := cmd.Name
		if i == 0 {
			name = "[" + name + "]"
		}
		line := strings.TrimSpace(fmt.Sprintf("%s [flags] %s %s", program, name, cmd.Usage))
		fmt.Fprintf(w, "  %s\n", line)
	}

	if len(commands) > 0 {
		fmt.Fprintln(w, "\nCommands:")
		maxCmdLen := 0
		for _, cmd := range commands {
			if l := len(cmd.Name); l > maxCmdLen {
				maxCmdLen = l
			}
		}
		for _, cmd := range commands {
			fmt.Fprintf(w, "  %-*s  %s\n", maxCmdLen, cmd.Name, cmd.Description)
		}
	}

	options := global
	for _, cmd := range commands {
		options = append(options[:len(options):len(options)], cmd.Options...)
	}

	fmt.Fprintln(w, "\nFlags:")
	maxNameLen := len("h, -help")
	for _, opt := range options {
		if l := len(opt.CliName); l > maxNameLen {
			maxNameLen = l
		}
	}
	for _, opt := range options {
		writeOption(w, maxNameLen, opt)
	}
	fmt.Fprintf(w, "  -%-*s %s\n", maxNameLen, "h, -help", "Show this help message and exit")
}

func writeOption(w io.Writer, maxNameLen int, opt *metadata.OptionMetadata) {
	parts := strings.Split(strings.TrimPrefix(opt.TypeName, "*"), ".")
	typeIndicator := strings.ToLower(parts[len(parts)-1])
	if opt.TypeName == "bool" {
		typeIndicator = ""
	}

	helpText := strings.ReplaceAll(opt.HelpText, "\n", "\n"+strings.Repeat(" ", maxNameLen+14))
	fmt.Fprintf(w, "  -%-*s %-9s %s", maxNameLen, opt.CliName, typeIndicator, helpText)
	if opt.DefaultValue != nil && opt.DefaultValue != "" {
		if s, ok := opt.DefaultValue.(string); ok {
			fmt.Fprintf(w, " (default: %q)", s)
		} else {
			fmt.Fprintf(w, " (default: %v)", opt.DefaultValue)
		}
	}
	if len(opt.EnumValues) > 0 {
		var enumStrs []string
		for _, v := range opt.EnumValues {
			if s, ok := v.(string); ok {
				enumStrs = append(enumStrs, fmt.Sprintf("%q", s))
			} else {
				enumStrs = append(enumStrs, fmt.Sprintf("%v", v))
			}
		}
		fmt.Fprintf(w, " (allowed: %s)", strings.Join(enumStrs, ", "))
	}
	fmt.Fprintln(w)
}
