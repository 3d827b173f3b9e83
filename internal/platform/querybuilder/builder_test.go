package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "external_id", "status").
		From("matches").
		Where(Eq("status", "FINISHED")).
		OrderBy("kickoff_at").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, external_id, status FROM matches WHERE status = $1 ORDER BY kickoff_at LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "FINISHED" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ExprCondition(t *testing.T) {
	query, args, err := Select("id").
		From("predictions").
		Where(Eq("processed", false), Expr("match_id = ?", int64(7))).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM predictions WHERE processed = $1 AND match_id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != false || args[1] != int64(7) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_WithConflictSuffix(t *testing.T) {
	query, args, err := InsertInto("matches").
		Columns("external_id", "home_team", "away_team").
		Values(int64(101), "Arsenal", "Chelsea").
		Suffix("ON CONFLICT (external_id) DO NOTHING RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO matches (external_id, home_team, away_team) VALUES ($1, $2, $3) ON CONFLICT (external_id) DO NOTHING RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != int64(101) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder_SetExpr(t *testing.T) {
	query, args, err := Update("users").
		SetExpr("total_points", "total_points + ?", 5).
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", "u1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE users SET total_points = total_points + $1, updated_at = NOW() WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != 5 || args[1] != "u1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		ExternalID int64  `db:"external_id"`
		HomeTeam   string `db:"home_team"`
		Ignored    string `db:"-"`
	}

	query, args, err := InsertModel("matches", row{ExternalID: 9, HomeTeam: "Leeds"}, "RETURNING id")
	if err != nil {
		t.Fatalf("build insert from model: %v", err)
	}

	wantQuery := "INSERT INTO matches (external_id, home_team) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(9) || args[1] != "Leeds" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
