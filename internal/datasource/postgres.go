package datasource

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"domaind/internal/model"
)

// DefaultPageSize caps List(ctx, false) on Postgres stores.
const DefaultPageSize = 100

// Restorer rebuilds a stored record as a model. The registry implements it.
type Restorer interface {
	Restore(record model.Fields) (*model.Model, error)
}

// jsonFields stores model fields in a jsonb column.
type jsonFields model.Fields

func (j jsonFields) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

func (j *jsonFields) Scan(value any) error {
	if value == nil {
		*j = make(jsonFields)
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan fields: unsupported type %T", value)
	}
	return json.Unmarshal(raw, j)
}

// record is one row of the shared records table.
type record struct {
	ModelName  string     `gorm:"primaryKey;column:model_name"`
	ID         string     `gorm:"primaryKey;column:id"`
	CreateTime string     `gorm:"column:create_time;index"`
	Fields     jsonFields `gorm:"column:fields;type:jsonb;not null"`
}

func (record) TableName() string { return "domaind_records" }

// OpenPostgres connects to dsn. The returned handle is shared by every
// Postgres store.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// Migrate creates or extends the records table.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(&record{})
}

// Postgres stores models of one kind in the shared records table.
type Postgres struct {
	PageSize int

	db        *gorm.DB
	modelName string
	restore   Restorer
}

// NewPostgres returns a store scoped to modelName. Rows are rebuilt through
// restore.
func NewPostgres(db *gorm.DB, modelName string, restore Restorer) *Postgres {
	return &Postgres{
		PageSize:  DefaultPageSize,
		db:        db,
		modelName: strings.ToUpper(modelName),
		restore:   restore,
	}
}

// Migrate creates or extends the records table.
func (s *Postgres) Migrate(ctx context.Context) error { return Migrate(ctx, s.db) }

func (s *Postgres) Find(ctx context.Context, id string) (*model.Model, error) {
	var row record
	err := s.db.WithContext(ctx).First(&row, "model_name = ? AND id = ?", s.modelName, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s %s: %w", s.modelName, id, err)
	}
	return s.toModel(row)
}

// Save inserts or replaces the row for id.
func (s *Postgres) Save(ctx context.Context, id string, m *model.Model) error {
	if id == "" {
		return model.ErrArgument("id missing")
	}
	row := record{
		ModelName:  s.modelName,
		ID:         id,
		CreateTime: m.CreateTime(),
		Fields:     jsonFields(m.Fields()),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "model_name"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"create_time", "fields"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save %s %s: %w", s.modelName, id, err)
	}
	return nil
}

// List returns models in creation order; create_time holds fixed-width
// model.TimeLayout stamps, so the text column sorts chronologically. all=false
// returns at most PageSize.
func (s *Postgres) List(ctx context.Context, all bool) ([]*model.Model, error) {
	q := s.db.WithContext(ctx).Where("model_name = ?", s.modelName).Order("create_time, id")
	if !all && s.PageSize > 0 {
		q = q.Limit(s.PageSize)
	}
	var rows []record
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", s.modelName, err)
	}
	out := make([]*model.Model, 0, len(rows))
	for _, row := range rows {
		m, err := s.toModel(row)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Postgres) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Delete(&record{}, "model_name = ? AND id = ?", s.modelName, id).Error
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", s.modelName, id, err)
	}
	return nil
}

func (s *Postgres) toModel(row record) (*model.Model, error) {
	fields := model.Fields(row.Fields).Clone()
	fields[model.KeyID] = row.ID
	fields[model.KeyModelName] = row.ModelName
	if row.CreateTime != "" {
		fields[model.KeyCreateTime] = row.CreateTime
	}
	if s.restore == nil {
		return model.Restore(fields, nil), nil
	}
	return s.restore.Restore(fields)
}
