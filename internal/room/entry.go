package room

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Room is an immutable input unit holding ordered entries.
type Room struct {
	ID      string  `json:"roomId" yaml:"roomId" validate:"required"`
	Entries []Entry `json:"entries" yaml:"entries" validate:"dive"`
}

// Entry is one addressable item of a room. Pointer fields distinguish an
// absent value from a zero value.
type Entry struct {
	Slug  *string   `json:"slug,omitempty" yaml:"slug,omitempty"`
	ID    *EntryID  `json:"id,omitempty" yaml:"id,omitempty"`
	Index *int      `json:"index,omitempty" yaml:"index,omitempty" validate:"omitempty,gte=0"`
	Audio *AudioRef `json:"audio,omitempty" yaml:"audio,omitempty"`
}

// EntryID holds an entry id that may be authored as a number or a string.
type EntryID struct {
	text    string
	number  int
	numeric bool
}

// NumericID builds an id authored as a number.
func NumericID(n int) *EntryID {
	return &EntryID{number: n, numeric: true, text: strconv.Itoa(n)}
}

// TextID builds an id authored as a string.
func TextID(s string) *EntryID {
	return &EntryID{text: s}
}

// Number returns the numeric value when the id was authored as a number.
func (id EntryID) Number() (int, bool) {
	return id.number, id.numeric
}

func (id EntryID) String() string {
	return id.text
}

func (id EntryID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(strconv.Itoa(id.number)), nil
	}
	return json.Marshal(id.text)
}

func (id *EntryID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = EntryID{text: s}
		return nil
	}
	raw := string(data)
	if n, err := strconv.Atoi(raw); err == nil {
		*id = EntryID{text: raw, number: n, numeric: true}
		return nil
	}
	*id = EntryID{text: raw}
	return nil
}

func (id *EntryID) UnmarshalYAML(node *yaml.Node) error {
	if node.ShortTag() == "!!int" {
		n, err := strconv.Atoi(node.Value)
		if err == nil {
			*id = EntryID{text: node.Value, number: n, numeric: true}
			return nil
		}
	}
	*id = EntryID{text: node.Value}
	return nil
}

// AudioRef is the audio reference stored on an entry. Older files hold a
// single string; current files hold one filename per language.
type AudioRef struct {
	EN     string `json:"en,omitempty" yaml:"en,omitempty"`
	VI     string `json:"vi,omitempty" yaml:"vi,omitempty"`
	Legacy string `json:"-" yaml:"-"`
}

// IsLegacy reports whether the reference was authored as a bare string.
func (a AudioRef) IsLegacy() bool {
	return a.Legacy != ""
}

type audioPair struct {
	EN string `json:"en,omitempty" yaml:"en,omitempty"`
	VI string `json:"vi,omitempty" yaml:"vi,omitempty"`
}

func (a AudioRef) MarshalJSON() ([]byte, error) {
	if a.IsLegacy() {
		return json.Marshal(a.Legacy)
	}
	return json.Marshal(audioPair{EN: a.EN, VI: a.VI})
}

func (a *AudioRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AudioRef{Legacy: strings.TrimSpace(s)}
		return nil
	}
	var pair audioPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	*a = AudioRef{EN: pair.EN, VI: pair.VI}
	return nil
}

func (a *AudioRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*a = AudioRef{Legacy: strings.TrimSpace(node.Value)}
		return nil
	}
	var pair audioPair
	if err := node.Decode(&pair); err != nil {
		return err
	}
	*a = AudioRef{EN: pair.EN, VI: pair.VI}
	return nil
}
