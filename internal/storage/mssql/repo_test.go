package mssql

import (
	"context"
	"strings"
	"testing"
)

func TestQuoting(t *testing.T) {
	t.Parallel()

	if got, want := msFQN("dbo.we]ird"), "[dbo].[we]]ird]"; got != want {
		t.Fatalf("msFQN = %s, want %s", got, want)
	}
	if got, want := quoteLiteral("o'brien"), "N'o''brien'"; got != want {
		t.Fatalf("quoteLiteral = %s, want %s", got, want)
	}
}

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	got := createTableSQL("dbo.word_counts")
	for _, want := range []string{
		"IF OBJECT_ID(N'dbo.word_counts', N'U') IS NULL",
		"CREATE TABLE [dbo].[word_counts]",
		"[word]  NVARCHAR(1023) NOT NULL",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("DDL %q missing %q", got, want)
		}
	}
}

func TestNewRepository_BadDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "sqlserver://%zz"}); err == nil {
		t.Fatalf("NewRepository error = nil, want DSN parse failure")
	}
}
