package source

import (
	"net/http"
	"strings"
)

const (
	linkHeaderNameConstant          = "Link"
	nextRelationConstant            = "next"
	relationParameterNameConstant   = "rel"
	linkSegmentSeparatorConstant    = ','
	linkParameterSeparatorConstant  = ";"
	linkTargetOpenConstant          = '<'
	linkTargetCloseConstant         = '>'
	parameterValueSeparatorConstant = "="
	parameterValueQuoteConstant     = `"`
)

// ParseLinkHeader maps relation names to target URLs for a raw Link header value.
// A segment may declare several space separated relations, so rel="next last"
// counts as both next and last rather than as one opaque relation. The first
// target seen for a relation wins, and malformed segments are skipped.
func ParseLinkHeader(headerValue string) map[string]string {
	links := make(map[string]string)
	for _, segment := range splitLinkSegments(headerValue) {
		target, parameters, parsed := parseLinkSegment(segment)
		if !parsed {
			continue
		}
		for _, relation := range relationsOf(parameters) {
			if _, exists := links[relation]; exists {
				continue
			}
			links[relation] = target
		}
	}
	return links
}

// NextCursor returns the "next" link of a response header, or an empty string when pagination ends.
func NextCursor(header http.Header) string {
	if header == nil {
		return ""
	}
	return ParseLinkHeader(strings.Join(header.Values(linkHeaderNameConstant), string(linkSegmentSeparatorConstant)))[nextRelationConstant]
}

// splitLinkSegments splits on commas outside of <...> so that targets containing commas survive.
func splitLinkSegments(headerValue string) []string {
	var segments []string
	insideTarget := false
	segmentStart := 0
	for index := 0; index < len(headerValue); index++ {
		switch headerValue[index] {
		case linkTargetOpenConstant:
			insideTarget = true
		case linkTargetCloseConstant:
			insideTarget = false
		case linkSegmentSeparatorConstant:
			if insideTarget {
				continue
			}
			segments = append(segments, headerValue[segmentStart:index])
			segmentStart = index + 1
		}
	}
	return append(segments, headerValue[segmentStart:])
}

func parseLinkSegment(segment string) (string, []string, bool) {
	trimmedSegment := strings.TrimSpace(segment)
	if len(trimmedSegment) == 0 || trimmedSegment[0] != linkTargetOpenConstant {
		return "", nil, false
	}
	closingIndex := strings.IndexByte(trimmedSegment, linkTargetCloseConstant)
	if closingIndex < 0 {
		return "", nil, false
	}
	target := strings.TrimSpace(trimmedSegment[1:closingIndex])
	if len(target) == 0 {
		return "", nil, false
	}
	return target, strings.Split(trimmedSegment[closingIndex+1:], linkParameterSeparatorConstant), true
}

func relationsOf(parameters []string) []string {
	var relations []string
	for _, parameter := range parameters {
		name, value, found := strings.Cut(strings.TrimSpace(parameter), parameterValueSeparatorConstant)
		if !found || !strings.EqualFold(strings.TrimSpace(name), relationParameterNameConstant) {
			continue
		}
		unquotedValue := strings.Trim(strings.TrimSpace(value), parameterValueQuoteConstant)
		relations = append(relations, strings.Fields(unquotedValue)...)
	}
	return relations
}
