package postgres

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"

	"fastwc/internal/storage"
)

func TestSplitFQN(t *testing.T) {
	t.Parallel()

	tests := map[string]pgx.Identifier{
		"word_counts":        {"word_counts"},
		"public.word_counts": {"public", "word_counts"},
		".x.":                {"x"},
	}
	for in, want := range tests {
		if got := splitFQN(in); !reflect.DeepEqual(got, want) {
			t.Fatalf("splitFQN(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPgFQN(t *testing.T) {
	t.Parallel()

	if got, want := pgFQN(`public.we"ird`), `"public"."we""ird"`; got != want {
		t.Fatalf("pgFQN = %s, want %s", got, want)
	}
}

type execRecorder struct{ stmts []string }

func (e *execRecorder) CopyFrom(context.Context, []string, [][]any) (int64, error) { return 0, nil }
func (e *execRecorder) Exec(_ context.Context, sql string) error {
	e.stmts = append(e.stmts, sql)
	return nil
}
func (e *execRecorder) Close() {}

func TestEnsureTable(t *testing.T) {
	t.Parallel()

	rec := &execRecorder{}
	if err := ensureTable(context.Background(), rec, "public.wc", true); err != nil {
		t.Fatalf("ensureTable: %v", err)
	}
	if len(rec.stmts) != 2 {
		t.Fatalf("stmts = %v, want create and truncate", rec.stmts)
	}
	if !strings.HasPrefix(rec.stmts[0], `CREATE TABLE IF NOT EXISTS "public"."wc"`) {
		t.Fatalf("create = %q", rec.stmts[0])
	}
	if rec.stmts[1] != `TRUNCATE TABLE "public"."wc"` {
		t.Fatalf("truncate = %q", rec.stmts[1])
	}
}

// TestFactoryRegistration goes through storage.New with the constructor hook
// replaced, so no server is needed.
func TestFactoryRegistration(t *testing.T) {
	want := errors.New("no server")
	var got Config
	prev := newRepository
	newRepository = func(_ context.Context, cfg Config) (*Repository, func(), error) {
		got = cfg
		return nil, nil, want
	}
	t.Cleanup(func() { newRepository = prev })

	_, err := storage.New(context.Background(), storage.Config{Kind: "postgres", DSN: "postgres://x", Table: "wc"})
	if !errors.Is(err, want) {
		t.Fatalf("New error = %v, want %v", err, want)
	}
	if got.Table != "wc" || !reflect.DeepEqual(got.Columns, storage.ReportColumns) {
		t.Fatalf("constructor config = %+v", got)
	}
}
