package production

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/giantswarm/microerror"
	"gopkg.in/yaml.v3"

	"github.com/comalice/reactiontask/internal/primitives"
)

// Format selects an export encoding.
type Format string

const (
	// FormatText is the nested-array text form:
	// [[groupIndex,[elapsedMs,value],...],...]
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a name to a Format. The empty name selects FormatText.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", microerror.Maskf(unknownFormatError, "format %q", name)
}

// ContentType returns the HTTP content type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ReactionsText renders reaction groups as
// [[0,[elapsedMs,reactionMs],...],...]. A tagged entry carries the tag as a
// third, JSON-quoted element.
func ReactionsText(groups [][]primitives.Reaction) string {
	return renderGroups(groups, func(buf *bytes.Buffer, r primitives.Reaction) {
		buf.WriteString(strconv.FormatInt(r.ElapsedMs, 10))
		buf.WriteByte(',')
		buf.WriteString(strconv.FormatInt(r.ReactionMs, 10))
		if r.Tag != "" {
			buf.WriteByte(',')
			writeQuoted(buf, r.Tag)
		}
	})
}

// EventsText renders log event groups as [[0,[elapsedMs,"name"],...],...].
func EventsText(groups [][]primitives.LogEvent) string {
	return renderGroups(groups, func(buf *bytes.Buffer, e primitives.LogEvent) {
		buf.WriteString(strconv.FormatInt(e.ElapsedMs, 10))
		buf.WriteByte(',')
		writeQuoted(buf, e.Name)
	})
}

// MarshalReactions encodes reaction groups in format f.
func MarshalReactions(groups [][]primitives.Reaction, f Format) ([]byte, error) {
	if f == FormatText {
		return []byte(ReactionsText(groups)), nil
	}
	return marshal(nonNil(groups), f)
}

// MarshalEvents encodes log event groups in format f.
func MarshalEvents(groups [][]primitives.LogEvent, f Format) ([]byte, error) {
	if f == FormatText {
		return []byte(EventsText(groups)), nil
	}
	return marshal(nonNil(groups), f)
}

// MarshalDataset encodes both streams. Only JSON and YAML carry the
// combined shape.
func MarshalDataset(ds primitives.Dataset, f Format) ([]byte, error) {
	ds.Reactions = nonNil(ds.Reactions)
	ds.Events = nonNil(ds.Events)
	if f == FormatText {
		return nil, microerror.Maskf(unknownFormatError, "dataset has no %q form", f)
	}
	return marshal(ds, f)
}

func marshal(v any, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, microerror.Mask(err)
		}
		return b, nil
	case FormatYAML:
		b, err := yaml.Marshal(v)
		if err != nil {
			return nil, microerror.Mask(err)
		}
		return b, nil
	}
	return nil, microerror.Maskf(unknownFormatError, "format %q", f)
}

func renderGroups[T any](groups [][]T, entry func(*bytes.Buffer, T)) string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, group := range groups {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		buf.WriteString(strconv.Itoa(i))
		for _, v := range group {
			buf.WriteString(",[")
			entry(&buf, v)
			buf.WriteByte(']')
		}
		buf.WriteByte(']')
	}
	buf.WriteByte(']')
	return buf.String()
}

// writeQuoted writes s as a JSON string so delimiters inside it cannot
// break the surrounding structure.
func writeQuoted(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}

func nonNil[T any](groups [][]T) [][]T {
	if groups == nil {
		return [][]T{}
	}
	return groups
}
