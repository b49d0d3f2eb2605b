package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/onlyhub/internal/services"
	"github.com/desertthunder/onlyhub/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(shared.MemoryDSN)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// fakeTables is an in-memory stand-in for the PostgREST tables.
type fakeTables struct {
	mu    sync.Mutex
	rows  map[string][]map[string]any
	fail  map[string]error
	calls []string
}

func newFakeTables() *fakeTables {
	return &fakeTables{rows: map[string][]map[string]any{}, fail: map[string]error{}}
}

func toMaps(v any) []map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var many []map[string]any
	if err := json.Unmarshal(data, &many); err == nil {
		return many
	}
	var one map[string]any
	if err := json.Unmarshal(data, &one); err != nil {
		panic(err)
	}
	return []map[string]any{one}
}

func (f *fakeTables) seed(table string, rows any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[table] = append(f.rows[table], toMaps(rows)...)
}

func (f *fakeTables) ids(table string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, row := range f.rows[table] {
		ids = append(ids, fmt.Sprint(row["id"]))
	}
	sort.Strings(ids)
	return ids
}

func (f *fakeTables) row(table, id string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows[table] {
		if fmt.Sprint(row["id"]) == id {
			return row
		}
	}
	return nil
}

func (f *fakeTables) called(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, op) {
			n++
		}
	}
	return n
}

func (f *fakeTables) enter(op, table string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op+" "+table)
	return f.fail[op]
}

func matches(row map[string]any, filters []services.Filter) bool {
	for _, flt := range filters {
		got := fmt.Sprint(row[flt.Column])
		switch flt.Operator {
		case "eq":
			if got != flt.Value {
				return false
			}
		case "in":
			found := false
			for _, raw := range strings.Split(strings.Trim(flt.Value, "()"), ",") {
				if v, err := strconv.Unquote(raw); err == nil && v == got {
					found = true
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

func (f *fakeTables) Select(_ context.Context, table string, q services.Query, dst any) error {
	if err := f.enter("select", table); err != nil {
		return err
	}

	f.mu.Lock()
	var out []map[string]any
	for _, row := range f.rows[table] {
		if matches(row, q.Filters) {
			out = append(out, row)
		}
	}
	f.mu.Unlock()

	if q.Order != "" {
		sort.SliceStable(out, func(i, j int) bool {
			a, _ := out[i]["sort_order"].(float64)
			b, _ := out[j]["sort_order"].(float64)
			return a < b
		})
	}

	var payload any = out
	if out == nil {
		payload = []map[string]any{}
	}
	if q.Single {
		if len(out) != 1 {
			return fmt.Errorf("%w: %s row", shared.ErrNotFound, table)
		}
		payload = out[0]
	}

	data, _ := json.Marshal(payload)
	return json.Unmarshal(data, dst)
}

func (f *fakeTables) Upsert(_ context.Context, table string, rows any, _ string) error {
	if err := f.enter("upsert", table); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, incoming := range toMaps(rows) {
		replaced := false
		for i, existing := range f.rows[table] {
			if existing["id"] == incoming["id"] {
				f.rows[table][i] = incoming
				replaced = true
			}
		}
		if !replaced {
			f.rows[table] = append(f.rows[table], incoming)
		}
	}
	return nil
}

func (f *fakeTables) Delete(_ context.Context, table string, filters ...services.Filter) error {
	if err := f.enter("delete", table); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []map[string]any
	for _, row := range f.rows[table] {
		if !matches(row, filters) {
			kept = append(kept, row)
		}
	}
	f.rows[table] = kept
	return nil
}

// fakeMedia records media deletes.
type fakeMedia struct {
	mu      sync.Mutex
	deleted []string
	fail    error
}

func (m *fakeMedia) DeleteByURL(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, url)
	return m.fail
}
