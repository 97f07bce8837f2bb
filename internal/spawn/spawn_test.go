package spawn

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/Jeropeesee-Bashan/pybar/internal/errors"
	"github.com/Jeropeesee-Bashan/pybar/internal/testutil"
)

func TestNewRunner(t *testing.T) {
	tests := []struct {
		via     string
		want    string
		wantErr bool
	}{
		{"", ViaDirect, false},
		{"direct", ViaDirect, false},
		{"herbstclient", ViaHerbstclient, false},
		{"systemd-run", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.via, func(t *testing.T) {
			r, err := NewRunner(tt.via, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewRunner() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrInvalidInput) {
					t.Errorf("error %v does not wrap ErrInvalidInput", err)
				}
				return
			}
			if r.Via() != tt.want {
				t.Errorf("Via() = %q, want %q", r.Via(), tt.want)
			}
		})
	}
}

func TestRunner_CommandViaHerbstclient(t *testing.T) {
	r, _ := NewRunner(ViaHerbstclient, nil)
	cmd := r.Command(context.Background(), "pavucontrol", "-t", "3")

	want := []string{"herbstclient", "spawn", "pavucontrol", "-t", "3"}
	if !slices.Equal(cmd.Args, want) {
		t.Errorf("Args = %v, want %v", cmd.Args, want)
	}
}

func TestRunner_SpawnDirect(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "spawned")
	r, _ := NewRunner(ViaDirect, nil)

	if err := r.Spawn("touch", marker); err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	testutil.Eventually(t, func() bool {
		_, err := os.Stat(marker)
		return err == nil
	}, "spawned program ran")
}

func TestRunner_SpawnErrors(t *testing.T) {
	r, _ := NewRunner(ViaDirect, nil)
	if err := r.Spawn(""); err == nil {
		t.Error("Spawn(\"\") error = nil, want error")
	}
	if err := r.Spawn(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Spawn(missing) error = nil, want error")
	}
}

func TestRunner_Callback(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "clicked")
	r, _ := NewRunner(ViaDirect, nil)

	cb := r.Callback("touch " + marker)
	if cb.Name() != "touch "+marker {
		t.Errorf("Name() = %q", cb.Name())
	}
	cb.Invoke()
	testutil.Eventually(t, func() bool {
		_, err := os.Stat(marker)
		return err == nil
	}, "callback spawned program")
}
