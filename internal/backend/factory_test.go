package backend

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/query"
)

const owner = "7f2b8a9e-4c1d-4e8f-9a0b-1c2d3e4f5a6b"

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{"sqlite", "sqlite", false},
		{"memory", "memory", false},
		{"sheets is no longer a store", "sheets", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromAppConfig(&config.Config{DataBackend: tt.backend, SQLiteDBPath: "x.db", AMQPURL: "amqp://h/"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (cfg.Type.String() != tt.backend || cfg.AMQPURL != "amqp://h/") {
				t.Errorf("FromAppConfig() = %+v", cfg)
			}
		})
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("FromAppConfig(nil) expected error")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Type: SQLiteBackend}).Validate(); err == nil {
		t.Error("sqlite without path should fail")
	}
	if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
		t.Errorf("memory backend: %v", err)
	}
	if got := strings.Join(GetBackendTypeStrings(), ","); got != "sqlite,memory" {
		t.Errorf("GetBackendTypeStrings() = %s", got)
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()

	for _, typ := range GetBackendTypes() {
		t.Run(typ.String(), func(t *testing.T) {
			f := NewFactory(nil)
			res, err := f.CreateBackend(ctx, Config{
				Type:         typ,
				SQLiteDBPath: filepath.Join(t.TempDir(), "fintrack.db"),
			})
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			defer func() {
				if err := res.Cleanup(); err != nil {
					t.Errorf("Cleanup() error = %v", err)
				}
			}()
			if res.EventsEnabled {
				t.Error("events should be disabled without AMQP URL")
			}

			created, err := res.Backend.Add(ctx, owner, core.KindIncome, core.Candidate{Label: "Salary", Amount: "1500", Date: "2024-03-01"})
			if err != nil {
				t.Fatalf("Add() error = %v", err)
			}
			page, err := res.Backend.List(ctx, owner, core.KindIncome, query.Params{})
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if page.TotalItems != 1 || page.Items[0].ID != created.ID {
				t.Errorf("List() = %+v", page)
			}
			if err := res.Backend.Ping(ctx); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}

func TestCreateBackend_AMQPFailureIsTolerated(t *testing.T) {
	f := NewFactory(nil)
	f.dial = func(url, exchange, queue string) (*amqp.Client, error) {
		return nil, errors.New("connection refused")
	}

	res, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend, AMQPURL: "amqp://nowhere/"})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()

	if res.EventsEnabled {
		t.Error("events should be disabled when the broker is unreachable")
	}
	if _, err := res.Backend.Add(context.Background(), owner, core.KindExpense, core.Candidate{Label: "Food", Amount: "3", Date: "2024-03-01"}); err != nil {
		t.Errorf("Add() without broker error = %v", err)
	}
}

func TestCreateBackend_InvalidType(t *testing.T) {
	if _, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: "sheets"}); err == nil {
		t.Error("expected error for unknown backend type")
	}
}
