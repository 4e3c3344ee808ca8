package store

import "testing"

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in   string
		want Dialect
	}{
		{"", SQLite},
		{"sqlite", SQLite},
		{"SQLite3", SQLite},
		{"postgresql", Postgres},
		{"mariadb", MySQL},
	}
	for _, tt := range tests {
		got, err := ParseDialect(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseDialect(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseDialect("mssql"); err == nil {
		t.Error("ParseDialect(mssql) should fail")
	}
}

func TestRebind(t *testing.T) {
	q := "UPDATE orders SET needs = ? WHERE id = ?"
	if got := SQLite.Rebind(q); got != q {
		t.Errorf("SQLite.Rebind() = %q", got)
	}
	if got := MySQL.Rebind(q); got != q {
		t.Errorf("MySQL.Rebind() = %q", got)
	}
	want := "UPDATE orders SET needs = $1 WHERE id = $2"
	if got := Postgres.Rebind(q); got != want {
		t.Errorf("Postgres.Rebind() = %q, want %q", got, want)
	}
}

func TestUpsertClause(t *testing.T) {
	conflict := []string{"week_data_id", "order_number"}
	update := []string{"delivery_date"}

	want := " ON CONFLICT(week_data_id, order_number) DO UPDATE SET delivery_date = excluded.delivery_date"
	if got := SQLite.Upsert(conflict, update); got != want {
		t.Errorf("SQLite.Upsert() = %q, want %q", got, want)
	}
	if got := Postgres.Upsert(conflict, update); got != want {
		t.Errorf("Postgres.Upsert() = %q, want %q", got, want)
	}
	wantMySQL := " ON DUPLICATE KEY UPDATE delivery_date = VALUES(delivery_date)"
	if got := MySQL.Upsert(conflict, update); got != wantMySQL {
		t.Errorf("MySQL.Upsert() = %q, want %q", got, wantMySQL)
	}
}

func TestForUpdate(t *testing.T) {
	if SQLite.ForUpdate() != "" {
		t.Error("SQLite should not lock rows")
	}
	if Postgres.ForUpdate() != " FOR UPDATE" {
		t.Error("Postgres should lock rows")
	}
}
