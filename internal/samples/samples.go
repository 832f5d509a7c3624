// Package samples registers the example domain: model1, which stores a hashed
// secret, and model2, whose model1Id field links it to a model1.
package samples

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"domaind/internal/model"
	"domaind/internal/relations"
)

const (
	Model1 = "model1"
	Model2 = "model2"
)

// Hash maps a secret to its stored form. It must be deterministic.
type Hash func(string) string

// SHA256Hex is the default Hash.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

var (
	errField1 = errors.New("Field1 invalid or missing")
	errField2 = errors.New("Field2 invalid or missing")
	errTitle  = errors.New("title invalid or missing")
)

// NewModel1Factory returns the model1 factory. field1 and field2 are required;
// secret defaults to field1+field2 and is stored hashed.
func NewModel1Factory(hash Hash) model.Factory {
	if hash == nil {
		hash = SHA256Hex
	}
	return func(_ context.Context, args model.Fields) (model.Fields, error) {
		field1, _ := args.String("field1")
		field2, _ := args.String("field2")
		if err := checkModel1(field1, field2); err != nil {
			return nil, err
		}
		secret, ok := args.String("secret")
		if !ok {
			secret = field1 + field2
		}
		return model.Fields{
			"secret": hash(secret),
			"field1": field1,
			"field2": field2,
		}, nil
	}
}

func checkModel1(field1, field2 string) error {
	if field1 == "" {
		return errField1
	}
	if field2 == "" {
		return errField2
	}
	return nil
}

// ValidateModel1 re-checks the required model1 fields. A missing field is
// reported as an error.
func ValidateModel1(_ context.Context, m *model.Model) (bool, error) {
	field1, _ := m.String("field1")
	field2, _ := m.String("field2")
	if err := checkModel1(field1, field2); err != nil {
		return false, err
	}
	return true, nil
}

// Model2Factory builds a model2 from a title and an optional model1Id.
func Model2Factory(_ context.Context, args model.Fields) (model.Fields, error) {
	title, _ := args.String("title")
	if title == "" {
		return nil, errTitle
	}
	out := model.Fields{"title": title}
	if id, ok := args.String("model1Id"); ok && id != "" {
		out["model1Id"] = id
	}
	return out, nil
}

// ValidateModel2 requires a title.
func ValidateModel2(_ context.Context, m *model.Model) (bool, error) {
	title, _ := m.String("title")
	return title != "", nil
}

// Relations returns the declared relations between the sample models, keyed
// by model name and then relation name.
func Relations() map[string]map[string]relations.Descriptor {
	return map[string]map[string]relations.Descriptor{
		Model1: {"model2s": relations.OneToMany{ModelName: Model2, ForeignKey: "model1Id"}},
		Model2: {"model1": relations.ManyToOne{ModelName: Model1, ForeignKey: "model1Id"}},
	}
}

// Registrar is the registration surface of *registry.Registry.
type Registrar interface {
	RegisterModel(name string, factory model.Factory, isValid model.Validator)
	RegisterEvent(eventType model.EventType, modelName string, factory model.Factory) error
}

// Register installs both sample models and pass-through event factories for
// every event type.
func Register(reg Registrar, hash Hash) error {
	reg.RegisterModel(Model1, NewModel1Factory(hash), ValidateModel1)
	reg.RegisterModel(Model2, Model2Factory, ValidateModel2)
	for _, name := range []string{Model1, Model2} {
		for _, et := range model.EventTypes {
			if err := reg.RegisterEvent(et, name, passThrough); err != nil {
				return err
			}
		}
	}
	return nil
}

func passThrough(_ context.Context, args model.Fields) (model.Fields, error) { return args, nil }
