package datasource

import (
	"context"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"domaind/internal/model"
)

func TestJSONFields_ValueScan(t *testing.T) {
	v, err := jsonFields{"a": "b"}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	var back jsonFields
	if err := back.Scan(v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if back["a"] != "b" {
		t.Fatalf("unexpected fields %v", back)
	}
	if err := back.Scan(42); err == nil {
		t.Fatalf("expected error for unsupported column type")
	}
	if err := back.Scan(nil); err != nil || len(back) != 0 {
		t.Fatalf("nil should scan to empty fields, got %v %v", back, err)
	}
}

func TestPostgres_Integration(t *testing.T) {
	dsn := os.Getenv("DOMAIND_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("DOMAIND_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s := NewPostgres(db, "itest_"+model.NewID()[:8], nil)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM domaind_records WHERE model_name = ?", s.modelName)
	})

	m := model.Restore(model.Fields{"id": "1", "createTime": "2024-01-01T00:00:00.000000000Z", "field1": "a"}, nil)
	if err := s.Save(ctx, "1", m); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, "1", m.With(model.Fields{"field1": "b"})); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := s.Find(ctx, "1")
	if err != nil || got == nil {
		t.Fatalf("find: %v %v", got, err)
	}
	want := model.Fields{"id": "1", "modelName": s.modelName, "createTime": "2024-01-01T00:00:00.000000000Z", "field1": "b"}
	if diff := cmp.Diff(want, got.Map()); diff != "" {
		t.Fatalf("record (-want +got):\n%s", diff)
	}
	list, err := s.List(ctx, true)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %v", list, err)
	}

	// saved out of order with mixed sub-second precision
	for _, st := range []struct{ id, at string }{
		{"3", "2024-01-01T00:00:05.500000000Z"},
		{"2", "2024-01-01T00:00:05.000000000Z"},
		{"4", "2024-01-01T00:00:05.120000000Z"},
	} {
		rec := model.Restore(model.Fields{"id": st.id, "createTime": st.at}, nil)
		if err := s.Save(ctx, st.id, rec); err != nil {
			t.Fatalf("save %s: %v", st.id, err)
		}
	}
	list, err = s.List(ctx, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var order []string
	for _, m := range list {
		order = append(order, m.ID())
	}
	if diff := cmp.Diff([]string{"1", "2", "4", "3"}, order); diff != "" {
		t.Fatalf("list order (-want +got):\n%s", diff)
	}

	if err := s.Delete(ctx, "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := s.Find(ctx, "1"); got != nil {
		t.Fatalf("expected row to be deleted")
	}
}
