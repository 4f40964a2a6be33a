package storage

import (
	"context"
	"errors"
	"slices"
	"testing"
)

// nopRepo accepts every batch and writes nothing.
type nopRepo struct{}

func (nopRepo) CopyFrom(_ context.Context, _ []string, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}
func (nopRepo) Exec(context.Context, string) error { return nil }
func (nopRepo) Close()                             {}

// captureColumns registers kind with a factory that stores the columns it is
// opened with.
func captureColumns(kind string, got *[]string) {
	Register(kind, func(_ context.Context, cfg Config) (Repository, error) {
		*got = cfg.Columns
		return nopRepo{}, nil
	})
}

func TestNew_ReportColumns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		columns []string
		want    []string
	}{
		{"defaults_to_rank_word_count", nil, []string{"rank", "word", "count"}},
		{"explicit_columns_kept", []string{"pos", "token", "n"}, []string{"pos", "token", "n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			kind := "columns-" + tt.name
			var got []string
			captureColumns(kind, &got)

			if _, err := New(context.Background(), Config{Kind: kind, Table: "word_counts", Columns: tt.columns}); err != nil {
				t.Fatalf("New: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Fatalf("factory columns = %v, want %v", got, tt.want)
			}
		})
	}
}

// A backend that rewrites its column list must not change the columns later
// exports are opened with.
func TestNew_ColumnsAreCopied(t *testing.T) {
	t.Parallel()

	kind := "columns-mutating"
	Register(kind, func(_ context.Context, cfg Config) (Repository, error) {
		cfg.Columns[1] = "WORD"
		return nopRepo{}, nil
	})
	if _, err := New(context.Background(), Config{Kind: kind}); err != nil {
		t.Fatalf("New: %v", err)
	}
	if ReportColumns[1] != "word" {
		t.Fatalf("ReportColumns = %v after a backend rewrote its copy", ReportColumns)
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	refused := errors.New("connection refused")
	Register("refusing", func(context.Context, Config) (Repository, error) { return nil, refused })

	_, err := New(context.Background(), Config{Kind: "refusing"})
	if !errors.Is(err, refused) {
		t.Fatalf("New(refusing) error = %v, want %v", err, refused)
	}

	_, err = New(context.Background(), Config{Kind: "oracle"})
	if err == nil || err.Error() != "unsupported storage.kind=oracle" {
		t.Fatalf("New(oracle) error = %v, want unsupported storage.kind=oracle", err)
	}
}

func TestRegister_LastFactoryWins(t *testing.T) {
	t.Parallel()

	var opened []string
	Register("sqlite-replaced", func(context.Context, Config) (Repository, error) {
		opened = append(opened, "first")
		return nopRepo{}, nil
	})
	Register("sqlite-replaced", func(context.Context, Config) (Repository, error) {
		opened = append(opened, "second")
		return nopRepo{}, nil
	})
	if _, err := New(context.Background(), Config{Kind: "sqlite-replaced"}); err != nil {
		t.Fatalf("New: %v", err)
	}
	if !slices.Equal(opened, []string{"second"}) {
		t.Fatalf("factories opened = %v, want [second]", opened)
	}
}

func TestListKinds_SortedCopy(t *testing.T) {
	t.Parallel()

	captureColumns("kinds-b", new([]string))
	captureColumns("kinds-a", new([]string))

	kinds := ListKinds()
	if !slices.IsSorted(kinds) {
		t.Fatalf("ListKinds = %v, want sorted", kinds)
	}
	if !slices.Contains(kinds, "kinds-a") || !slices.Contains(kinds, "kinds-b") {
		t.Fatalf("ListKinds = %v, missing registered kinds", kinds)
	}
	kinds[0] = "mutated"
	if slices.Contains(ListKinds(), "mutated") {
		t.Fatalf("ListKinds shares its slice with the registry")
	}
}
