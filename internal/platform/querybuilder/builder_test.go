package querybuilder

import "testing"

type rowModel struct {
	Key     string `db:"merge_key"`
	Status  string `db:"status"`
	Ignored string `db:"-"`
	private string
}

func TestInsertModelsWithUpsert(t *testing.T) {
	rows := []rowModel{
		{Key: "2025-09-20|manchester united|chelsea", Status: "FINISHED"},
		{Key: "2025-09-27|brentford|manchester united", Status: "SCHEDULED", private: "x"},
	}
	cols, err := Columns(rows[0])
	if err != nil {
		t.Fatalf("columns: %v", err)
	}

	query, args, err := InsertModels("canonical_matches", rows, OnConflictUpdate("merge_key", cols))
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO canonical_matches (merge_key, status) VALUES ($1, $2), ($3, $4) ON CONFLICT (merge_key) DO UPDATE SET status = EXCLUDED.status"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[2] != "2025-09-27|brentford|manchester united" || args[3] != "SCHEDULED" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModelsRequiresRows(t *testing.T) {
	if _, _, err := InsertModels[rowModel]("canonical_matches", nil, ""); err == nil {
		t.Fatal("expected error for empty models")
	}
}

func TestDeleteBuilderNotIn(t *testing.T) {
	query, args, err := DeleteFrom("canonical_matches").
		Where(NotIn("merge_key", []any{"a", "b"})).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM canonical_matches WHERE merge_key NOT IN ($1, $2)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "a" || args[1] != "b" {
		t.Fatalf("unexpected args: %+v", args)
	}

	query, args, err = DeleteFrom("canonical_matches").Where(NotIn("merge_key", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build delete-all query: %v", err)
	}
	if query != "DELETE FROM canonical_matches WHERE 1=1" || len(args) != 0 {
		t.Fatalf("unexpected delete-all query: %s %+v", query, args)
	}
}
