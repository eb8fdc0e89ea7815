package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue               = "true"
	toggleFalseCanonicalValue              = "false"
	toggleParseErrorTemplate               = "invalid toggle value %q"
	toggleArgumentTruePlaceholderConstant  = "<YES|no>"
	toggleArgumentFalsePlaceholderConstant = "<yes|NO>"
	toggleAnnotationKeyConstant            = "gogs-github-mirror/toggle"
	toggleFlagTypeName                     = "bool"
	longFlagPrefixConstant                 = "--"
	shortFlagPrefixConstant                = "-"
	flagValueSeparatorConstant             = "="
)

var (
	trueLiterals  = map[string]struct{}{"true": {}, "yes": {}, "on": {}, "1": {}, "t": {}, "y": {}}
	falseLiterals = map[string]struct{}{"false": {}, "no": {}, "off": {}, "0": {}, "f": {}, "n": {}}
)

// AddToggleFlag registers a boolean flag that accepts yes/no style values and may be given without a value.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	toggleValue := &toggleFlagValue{currentValue: defaultValue, target: target}
	if target != nil {
		*target = defaultValue
	}
	flagSet.VarP(toggleValue, name, shorthand, formatToggleUsage(usage, defaultValue))

	flag := flagSet.Lookup(name)
	if flag == nil {
		return
	}
	flag.NoOptDefVal = toggleTrueCanonicalValue
	_ = flagSet.SetAnnotation(name, toggleAnnotationKeyConstant, []string{toggleTrueCanonicalValue})
}

// NormalizeToggleArguments rewrites "--flag value" into "--flag=value" for toggle flags registered
// on flagSet so that pflag does not treat the value as a positional argument.
func NormalizeToggleArguments(flagSet *pflag.FlagSet, arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == longFlagPrefixConstant {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		flag := lookupToggleFlag(flagSet, current)
		if flag == nil || strings.Contains(current, flagValueSeparatorConstant) || index+1 >= len(arguments) {
			normalized = append(normalized, current)
			continue
		}

		nextValue := arguments[index+1]
		if _, parseError := parseToggleValue(nextValue); parseError != nil || strings.HasPrefix(nextValue, shortFlagPrefixConstant) {
			normalized = append(normalized, current)
			continue
		}

		normalized = append(normalized, current+flagValueSeparatorConstant+nextValue)
		index++
	}

	return normalized
}

func lookupToggleFlag(flagSet *pflag.FlagSet, argument string) *pflag.Flag {
	if flagSet == nil {
		return nil
	}

	var flag *pflag.Flag
	switch {
	case strings.HasPrefix(argument, longFlagPrefixConstant):
		name := strings.SplitN(strings.TrimPrefix(argument, longFlagPrefixConstant), flagValueSeparatorConstant, 2)[0]
		flag = flagSet.Lookup(name)
	case strings.HasPrefix(argument, shortFlagPrefixConstant):
		shorthand := strings.SplitN(strings.TrimPrefix(argument, shortFlagPrefixConstant), flagValueSeparatorConstant, 2)[0]
		if len(shorthand) != 1 {
			return nil
		}
		flag = flagSet.ShorthandLookup(shorthand)
	}

	if flag == nil {
		return nil
	}
	if _, isToggle := flag.Annotations[toggleAnnotationKeyConstant]; !isToggle {
		return nil
	}
	return flag
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleArgumentFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleArgumentTruePlaceholderConstant
	}
	trimmed := strings.TrimSpace(description)
	if len(trimmed) == 0 {
		return fmt.Sprintf("`%s`", placeholder)
	}
	return fmt.Sprintf("`%s` %s", placeholder, trimmed)
}

type toggleFlagValue struct {
	currentValue bool
	target       *bool
}

func (value *toggleFlagValue) Set(rawValue string) error {
	parsedValue, parseError := parseToggleValue(rawValue)
	if parseError != nil {
		return parseError
	}

	value.currentValue = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleFlagValue) String() string {
	if value == nil || !value.currentValue {
		return toggleFalseCanonicalValue
	}
	return toggleTrueCanonicalValue
}

func (value *toggleFlagValue) Type() string {
	return toggleFlagTypeName
}

func parseToggleValue(rawValue string) (bool, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalizedValue) == 0 {
		return true, nil
	}
	if _, isTrue := trueLiterals[normalizedValue]; isTrue {
		return true, nil
	}
	if _, isFalse := falseLiterals[normalizedValue]; isFalse {
		return false, nil
	}
	return false, fmt.Errorf(toggleParseErrorTemplate, rawValue)
}
