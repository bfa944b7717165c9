package diff

import (
	"testing"

	"github.com/ndmpd/ndmpadm/pkg/models"
)

func TestCompare(t *testing.T) {
	oldValues := map[string]string{
		"listen-nic":         "em0",
		"serve-nic":          "em0",
		"cleartext-username": "admin",
	}
	newValues := map[string]string{
		"listen-nic":       "em1",
		"serve-nic":        "em0",
		"restore-fullpath": "TRUE",
	}

	r := Compare(oldValues, newValues)
	if !r.Changed() {
		t.Fatal("Changed() = false")
	}

	all := r.AllChanges()
	want := []models.ConfigChange{
		{Key: "cleartext-username", Type: models.ChangeDeleted, OldValue: "admin"},
		{Key: "listen-nic", Type: models.ChangeModified, OldValue: "em0", NewValue: "em1"},
		{Key: "restore-fullpath", Type: models.ChangeAdded, NewValue: "TRUE"},
	}
	if len(all) != len(want) {
		t.Fatalf("AllChanges() has %d entries, want %d", len(all), len(want))
	}
	for i := range want {
		if *all[i] != want[i] {
			t.Errorf("AllChanges()[%d] = %+v, want %+v", i, *all[i], want[i])
		}
	}

	if len(r.Unchanged) != 1 || r.Unchanged[0].Key != "serve-nic" {
		t.Errorf("Unchanged = %v", r.Unchanged)
	}
}

func TestCompareIdentical(t *testing.T) {
	values := map[string]string{"listen-nic": "em0"}
	if Compare(values, values).Changed() {
		t.Error("identical configurations reported as changed")
	}
	if Compare(nil, nil).Changed() {
		t.Error("empty configurations reported as changed")
	}
}
