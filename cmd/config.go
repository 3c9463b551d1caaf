package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/playspan/playspan/color"
	"github.com/playspan/playspan/config"
	"github.com/playspan/playspan/constant"
	"github.com/playspan/playspan/filesystem"
	"github.com/playspan/playspan/icon"
	"github.com/playspan/playspan/reltime"
	"github.com/playspan/playspan/style"
	"github.com/playspan/playspan/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

// sectionOrder is the order config info lists sections in. Unlisted sections follow alphabetically.
var sectionOrder = []string{"playback", "dump", "probe", "player", "network", "logs", "cli", "icons"}

// closestKey returns the known key with the smallest edit distance to k.
func closestKey(k string) string {
	return lo.MinBy(lo.Keys(config.Default), func(a string, b string) bool {
		da, db := levenshtein.Distance(k, a), levenshtein.Distance(k, b)
		if da == db {
			return a < b
		}
		return da < db
	})
}

func errUnknownKey(k string) error {
	return fmt.Errorf(
		"unknown key %s, did you mean %s?",
		style.Fg(color.Red)(k),
		style.Fg(color.Yellow)(closestKey(k)),
	)
}

func lookupField(k string) (config.Field, error) {
	field, ok := config.Default[k]
	if !ok {
		return config.Field{}, errUnknownKey(k)
	}
	return field, nil
}

func completionConfigKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}

func configFilePath() string {
	return filepath.Join(where.Config(), fmt.Sprintf("%s.%s", constant.Playspan, "toml"))
}

// persistConfig writes the in-memory config, creating the file on first use.
func persistConfig() error {
	switch err := viper.WriteConfig(); err.(type) {
	case viper.ConfigFileNotFoundError:
		return viper.SafeWriteConfig()
	default:
		return err
	}
}

// parseFieldValue converts command line words into a value of the field's type
// and checks it the way the config loader would.
func parseFieldValue(field config.Field, words []string) (any, error) {
	if len(words) == 0 {
		return nil, errors.New("value is required as an argument or --value flag")
	}

	var v any
	switch field.Value.(type) {
	case string:
		v = strings.Join(words, " ")
	case int:
		parsed, err := strconv.Atoi(words[0])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid integer value %q", field.Key, words[0])
		}
		v = parsed
	case bool:
		parsed, err := strconv.ParseBool(words[0])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid boolean value %q", field.Key, words[0])
		}
		v = parsed
	case []string:
		v = words
	default:
		return nil, fmt.Errorf("%s: unsupported value type %T", field.Key, field.Value)
	}

	if err := config.ValidateValue(field.Key, v); err != nil {
		return nil, err
	}
	return v, nil
}

// fieldSection is the part of a key before the first dot.
func fieldSection(k string) string {
	section, _, _ := strings.Cut(k, ".")
	return section
}

type fieldGroup struct {
	Section string
	Fields  []config.Field
}

// groupFields splits fields by section, in sectionOrder, each sorted by key.
func groupFields(fields []config.Field) []fieldGroup {
	bySection := lo.GroupBy(fields, func(f config.Field) string {
		return fieldSection(f.Key)
	})

	sections := lo.Keys(bySection)
	rank := func(s string) int {
		if i := slices.Index(sectionOrder, s); i >= 0 {
			return i
		}
		return len(sectionOrder)
	}
	sort.Slice(sections, func(i, j int) bool {
		ri, rj := rank(sections[i]), rank(sections[j])
		if ri != rj {
			return ri < rj
		}
		return sections[i] < sections[j]
	})

	return lo.Map(sections, func(s string, _ int) fieldGroup {
		group := bySection[s]
		sort.Slice(group, func(i, j int) bool {
			return group[i].Key < group[j].Key
		})
		return fieldGroup{Section: s, Fields: group}
	})
}

// describeRange renders the configured play range, or why it is unusable.
func describeRange() string {
	r, err := config.PlayRange()
	if err != nil {
		return style.Fg(color.Red)(err.Error())
	}
	if r.IsZero() {
		return style.Faint("whole media")
	}
	return style.Fg(color.Yellow)(r.String())
}

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application configuration settings and defaults",
}

func init() {
	configCmd.AddCommand(configInfoCmd)
	configInfoCmd.Flags().StringSliceP("key", "k", []string{}, "Specify the configuration keys to retrieve information for")
	configInfoCmd.Flags().StringP("section", "s", "", "Only show keys of one section, such as playback or dump")
	configInfoCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	_ = configInfoCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
	_ = configInfoCmd.RegisterFlagCompletionFunc("section", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return sectionOrder, cobra.ShellCompDirectiveNoFileComp
	})

	configInfoCmd.SetOut(os.Stdout)
}

var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display detailed information and descriptions for specified configuration fields",
	Long: `Display configuration fields grouped by section.
The playback section also shows how the configured play range reads.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			keys    = lo.Must(cmd.Flags().GetStringSlice("key"))
			section = lo.Must(cmd.Flags().GetString("section"))
			asJson  = lo.Must(cmd.Flags().GetBool("json"))
			fields  = lo.Values(config.Default)
		)

		if len(keys) > 0 {
			fields = make([]config.Field, 0, len(keys))
			for _, k := range keys {
				field, err := lookupField(k)
				handleErr(err)
				fields = append(fields, field)
			}
		}

		if section != "" {
			fields = lo.Filter(fields, func(f config.Field, _ int) bool {
				return fieldSection(f.Key) == section
			})
			if len(fields) == 0 {
				handleErr(fmt.Errorf("no keys in section %q", section))
			}
		}

		groups := groupFields(fields)

		if asJson {
			flat := lo.FlatMap(groups, func(g fieldGroup, _ int) []*config.Field {
				return lo.ToSlicePtr(g.Fields)
			})
			lo.Must0(json.NewEncoder(cmd.OutOrStdout()).Encode(flat))
			return
		}

		for i, group := range groups {
			if i > 0 {
				cmd.Println()
			}
			cmd.Println(style.Title(group.Section))
			if group.Section == "playback" {
				cmd.Printf("%s %s\n", style.Faint("range:"), describeRange())
			}

			for _, field := range group.Fields {
				cmd.Println()
				cmd.Println(field.Pretty())
			}
		}
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configSetCmd.Flags().StringP("key", "k", "", "The configuration key to update")
	configSetCmd.Flags().StringSliceP("value", "v", []string{}, "The new value to assign to the configuration key")
	_ = configSetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)

	configSetCmd.SetOut(os.Stdout)
}

var configSetCmd = &cobra.Command{
	Use:               "set [key] [value]",
	Short:             "Update the value of a specified configuration key",
	Example:           "  playspan config set playback.start 25%\n  playspan config set playback.end -- -1:30",
	Args:              cobra.MaximumNArgs(2),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		k := lo.Must(cmd.Flags().GetString("key"))
		words := lo.Must(cmd.Flags().GetStringSlice("value"))

		if len(args) >= 1 {
			k = args[0]
		}
		if len(args) >= 2 {
			words = args[1:]
		}
		if k == "" {
			handleErr(errors.New("key is required as an argument or --key flag"))
		}

		field, err := lookupField(k)
		handleErr(err)

		v, err := parseFieldValue(field, words)
		handleErr(err)

		viper.Set(k, v)
		handleErr(persistConfig())

		cmd.Printf(
			"%s set %s to %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(k),
			style.Fg(color.Yellow)(fmt.Sprintf("%v", v)),
		)
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configGetCmd.Flags().StringP("key", "k", "", "The specific configuration key to retrieve")
	_ = configGetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)

	configGetCmd.SetOut(os.Stdout)
}

var configGetCmd = &cobra.Command{
	Use:               "get [key]",
	Short:             "Retrieve the current value of a specified configuration key",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		k := lo.Must(cmd.Flags().GetString("key"))
		if len(args) >= 1 {
			k = args[0]
		}
		if k == "" {
			handleErr(errors.New("key is required as an argument or --key flag"))
		}

		_, err := lookupField(k)
		handleErr(err)

		value := viper.Get(k)
		if !config.IsRangeKey(k) {
			cmd.Println(value)
			return
		}

		t, err := reltime.Parse(viper.GetString(k))
		if err != nil {
			cmd.Printf("%v %s\n", value, style.Fg(color.Red)("("+err.Error()+")"))
			return
		}
		cmd.Printf("%v %s\n", value, style.Faint("("+t.Kind().String()+")"))
	},
}

func init() {
	configCmd.AddCommand(configWriteCmd)
	configWriteCmd.Flags().BoolP("force", "f", false, "Forcefully overwrite the existing configuration file")

	configWriteCmd.SetOut(os.Stdout)
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Persist the current in-memory configuration to the localized config file",
	Run: func(cmd *cobra.Command, args []string) {
		path := configFilePath()

		if lo.Must(cmd.Flags().GetBool("force")) {
			handleErr(filesystem.API().Remove(path))
		}

		handleErr(viper.SafeWriteConfig())
		cmd.Printf(
			"%s wrote config to %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			path,
		)
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)

	configDeleteCmd.SetOut(os.Stdout)
}

var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Permanently remove the localized configuration file from the system",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(filesystem.API().Remove(configFilePath()))
		cmd.Printf(
			"%s deleted config\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
		)
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)

	configResetCmd.Flags().StringP("key", "k", "", "The configuration key to restore to its default value")
	configResetCmd.Flags().StringP("section", "s", "", "Restore every key of one section")
	configResetCmd.Flags().BoolP("all", "a", false, "Restore all configuration settings to their factory defaults")
	configResetCmd.MarkFlagsMutuallyExclusive("key", "section", "all")
	_ = configResetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)

	configResetCmd.SetOut(os.Stdout)
}

var configResetCmd = &cobra.Command{
	Use:     "reset",
	Short:   "Restore configuration keys to their default values",
	Example: "  playspan config reset --section playback",
	PreRun: func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("key") && !cmd.Flags().Changed("section") && !cmd.Flags().Changed("all") {
			handleErr(errors.New("one of --key, --section or --all must be set"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		var (
			k       = lo.Must(cmd.Flags().GetString("key"))
			section = lo.Must(cmd.Flags().GetString("section"))
			fields  []config.Field
		)

		switch {
		case lo.Must(cmd.Flags().GetBool("all")):
			fields = lo.Values(config.Default)
		case section != "":
			fields = lo.Filter(lo.Values(config.Default), func(f config.Field, _ int) bool {
				return fieldSection(f.Key) == section
			})
			if len(fields) == 0 {
				handleErr(fmt.Errorf("no keys in section %q", section))
			}
		default:
			field, err := lookupField(k)
			handleErr(err)
			fields = []config.Field{field}
		}

		for _, field := range fields {
			viper.Set(field.Key, field.Value)
		}
		handleErr(persistConfig())

		if len(fields) == 1 {
			cmd.Printf(
				"%s reset %s to default value %s\n",
				style.Fg(color.Green)(icon.Get(icon.Success)),
				style.Fg(color.Purple)(fields[0].Key),
				style.Fg(color.Yellow)(fmt.Sprintf("%v", fields[0].Value)),
			)
			return
		}

		cmd.Printf(
			"%s reset %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Faint(fmt.Sprintf("%d keys", len(fields))),
		)
	},
}
