package catalog

import (
	"fmt"
	"sort"
)

// Encoder names as stored in the model bundle
const (
	EncoderAirline     = "Maskapai"
	EncoderRoute       = "Rute"
	EncoderDescription = "Deskripsi_tujuan"
)

// UnknownLabelError is returned when a label is not among an encoder's classes
type UnknownLabelError struct {
	Encoder string
	Label   string
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("encoder %s: unknown label %q", e.Encoder, e.Label)
}

// LabelEncoder is a fitted bijection between string labels and dense codes.
// The code of a label is its position in the class list.
type LabelEncoder struct {
	name    string
	classes []string
	codes   map[string]int
}

// NewLabelEncoder builds an encoder from a fitted class list.
// Empty and duplicate labels are rejected.
func NewLabelEncoder(name string, classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("encoder %s: no classes", name)
	}

	enc := &LabelEncoder{
		name:    name,
		classes: make([]string, len(classes)),
		codes:   make(map[string]int, len(classes)),
	}
	copy(enc.classes, classes)

	for i, label := range classes {
		if label == "" {
			return nil, fmt.Errorf("encoder %s: empty label at position %d", name, i)
		}
		if _, dup := enc.codes[label]; dup {
			return nil, fmt.Errorf("encoder %s: duplicate label %q", name, label)
		}
		enc.codes[label] = i
	}

	return enc, nil
}

// Name returns the encoder name
func (e *LabelEncoder) Name() string {
	return e.name
}

// Transform returns the integer code of label
func (e *LabelEncoder) Transform(label string) (int, error) {
	code, ok := e.codes[label]
	if !ok {
		return 0, &UnknownLabelError{Encoder: e.name, Label: label}
	}
	return code, nil
}

// Classes returns the classes in code order
func (e *LabelEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// SortedClasses returns the classes in ascending label order
func (e *LabelEncoder) SortedClasses() []string {
	out := e.Classes()
	sort.Strings(out)
	return out
}

// Len returns the number of known classes
func (e *LabelEncoder) Len() int {
	return len(e.classes)
}

// Encoders groups the three encoders consumed by the prediction model
type Encoders struct {
	Airline     *LabelEncoder
	Route       *LabelEncoder
	Description *LabelEncoder
}

// NewEncoders builds the encoder set from a name → classes map
func NewEncoders(classes map[string][]string) (*Encoders, error) {
	build := func(name string) (*LabelEncoder, error) {
		cls, ok := classes[name]
		if !ok {
			return nil, fmt.Errorf("label encoder %s missing from bundle", name)
		}
		return NewLabelEncoder(name, cls)
	}

	airline, err := build(EncoderAirline)
	if err != nil {
		return nil, err
	}
	route, err := build(EncoderRoute)
	if err != nil {
		return nil, err
	}
	description, err := build(EncoderDescription)
	if err != nil {
		return nil, err
	}

	return &Encoders{Airline: airline, Route: route, Description: description}, nil
}
