// Package relations resolves declared links between models. Each relation of a
// model becomes an Accessor that fetches the related models on demand from the
// data source registered for the related model name.
package relations

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"domaind/internal/model"
)

// Descriptor declares one relation. The only implementations are OneToMany
// and ManyToOne.
type Descriptor interface {
	relatedModel() string
	resolve(ctx context.Context, m *model.Model, ds DataSource) ([]*model.Model, error)
}

// OneToMany relates a model to every model of ModelName whose ForeignKey field
// holds the model's id.
type OneToMany struct {
	ModelName  string
	ForeignKey string
}

// ManyToOne relates a model to the single model of ModelName whose id is held
// in the model's ForeignKey field.
type ManyToOne struct {
	ModelName  string
	ForeignKey string
}

func (r OneToMany) relatedModel() string { return r.ModelName }
func (r ManyToOne) relatedModel() string { return r.ModelName }

func (r OneToMany) resolve(ctx context.Context, m *model.Model, ds DataSource) ([]*model.Model, error) {
	pk := m.ID()
	if pk == "" {
		return nil, nil
	}
	all, err := ds.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.ModelName, err)
	}
	var out []*model.Model
	for _, candidate := range all {
		fk, ok := keyOf(candidate, r.ForeignKey)
		if ok && fk == pk {
			out = append(out, candidate)
		}
	}
	return out, nil
}

func (r ManyToOne) resolve(ctx context.Context, m *model.Model, ds DataSource) ([]*model.Model, error) {
	fk, ok := keyOf(m, r.ForeignKey)
	if !ok {
		return nil, nil
	}
	found, err := ds.Find(ctx, fk)
	if err != nil {
		return nil, fmt.Errorf("find %s %s: %w", r.ModelName, fk, err)
	}
	if found == nil {
		return nil, nil
	}
	return []*model.Model{found}, nil
}

// keyOf returns the non-empty key stored in m under field.
func keyOf(m *model.Model, field string) (string, bool) {
	v, ok := m.Get(field)
	if !ok || v == nil {
		return "", false
	}
	s, isString := v.(string)
	if !isString {
		s = fmt.Sprint(v)
	}
	return s, s != ""
}

// Accessor fetches the models related to one model through one relation.
type Accessor func(ctx context.Context) ([]*model.Model, error)

// DataSource is the read side of a store of models of one kind.
type DataSource interface {
	// List returns stored models in listing order. all=false lets a store
	// return a bounded page.
	List(ctx context.Context, all bool) ([]*model.Model, error)
	// Find returns the model stored under id, or nil when absent.
	Find(ctx context.Context, id string) (*model.Model, error)
}

// Locator resolves the data source holding models of modelName. It returns
// nil when there is none.
type Locator interface {
	DataSource(modelName string) DataSource
}

// Make returns one Accessor per entry of rels, keyed like rels, for model m.
// It returns nil when rels is empty. A relation whose data source cannot be
// located logs a warning and resolves to nothing; the others are unaffected.
func Make(m *model.Model, rels map[string]Descriptor, loc Locator, log zerolog.Logger) map[string]Accessor {
	if len(rels) == 0 {
		return nil
	}
	out := make(map[string]Accessor, len(rels))
	for name, rel := range rels {
		out[name] = accessor(m, name, rel, loc, log)
	}
	return out
}

func accessor(m *model.Model, name string, rel Descriptor, loc Locator, log zerolog.Logger) Accessor {
	return func(ctx context.Context) ([]*model.Model, error) {
		if rel == nil {
			log.Warn().Str("relation", name).Msg("invalid relation")
			return nil, nil
		}
		var ds DataSource
		if loc != nil {
			ds = loc.DataSource(rel.relatedModel())
		}
		if ds == nil {
			log.Warn().Str("relation", name).Str("model", rel.relatedModel()).Msg("invalid relation: no data source")
			return nil, nil
		}
		return rel.resolve(ctx, m, ds)
	}
}

// Relation type tags accepted in configuration.
const (
	TypeOneToMany = "oneToMany"
	TypeManyToOne = "manyToOne"
)

// Spec is the configuration form of a relation.
type Spec struct {
	Type       string `json:"type" yaml:"type" toml:"type"`
	ModelName  string `json:"model_name" yaml:"model_name" toml:"model_name"`
	ForeignKey string `json:"foreign_key" yaml:"foreign_key" toml:"foreign_key"`
}

// Descriptor converts s. It returns nil for an unknown Type.
func (s Spec) Descriptor() Descriptor {
	switch {
	case strings.EqualFold(s.Type, TypeOneToMany):
		return OneToMany{ModelName: s.ModelName, ForeignKey: s.ForeignKey}
	case strings.EqualFold(s.Type, TypeManyToOne):
		return ManyToOne{ModelName: s.ModelName, ForeignKey: s.ForeignKey}
	}
	return nil
}

// Descriptors converts every spec. Unknown types map to nil and are reported
// by the resulting accessors.
func Descriptors(specs map[string]Spec) map[string]Descriptor {
	if len(specs) == 0 {
		return nil
	}
	out := make(map[string]Descriptor, len(specs))
	for name, s := range specs {
		out[name] = s.Descriptor()
	}
	return out
}

// MakeFromSpecs is Make over relations declared in configuration.
func MakeFromSpecs(m *model.Model, specs map[string]Spec, loc Locator, log zerolog.Logger) map[string]Accessor {
	return Make(m, Descriptors(specs), loc, log)
}
