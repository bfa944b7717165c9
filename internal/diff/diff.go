package diff

import (
	"sort"

	"github.com/ndmpd/ndmpadm/pkg/models"
)

// Result contains the differences between two configurations
type Result struct {
	Added     []*models.ConfigChange
	Modified  []*models.ConfigChange
	Deleted   []*models.ConfigChange
	Unchanged []*models.ConfigChange
}

// Compare compares two key/value configurations. Every slice of the result
// is sorted by key.
func Compare(oldValues, newValues map[string]string) *Result {
	result := &Result{}

	for key, newValue := range newValues {
		oldValue, exists := oldValues[key]
		switch {
		case !exists:
			result.Added = append(result.Added, &models.ConfigChange{
				Key:      key,
				Type:     models.ChangeAdded,
				NewValue: newValue,
			})
		case oldValue != newValue:
			result.Modified = append(result.Modified, &models.ConfigChange{
				Key:      key,
				Type:     models.ChangeModified,
				OldValue: oldValue,
				NewValue: newValue,
			})
		default:
			result.Unchanged = append(result.Unchanged, &models.ConfigChange{
				Key:      key,
				Type:     models.ChangeUnchanged,
				OldValue: oldValue,
				NewValue: newValue,
			})
		}
	}

	for key, oldValue := range oldValues {
		if _, exists := newValues[key]; !exists {
			result.Deleted = append(result.Deleted, &models.ConfigChange{
				Key:      key,
				Type:     models.ChangeDeleted,
				OldValue: oldValue,
			})
		}
	}

	for _, changes := range [][]*models.ConfigChange{result.Added, result.Modified, result.Deleted, result.Unchanged} {
		sort.Slice(changes, func(i, j int) bool { return changes[i].Key < changes[j].Key })
	}
	return result
}

// Changed reports whether the configurations differ
func (r *Result) Changed() bool {
	return len(r.Added)+len(r.Modified)+len(r.Deleted) > 0
}

// AllChanges returns added, modified and deleted keys in one slice sorted
// by key
func (r *Result) AllChanges() []*models.ConfigChange {
	all := make([]*models.ConfigChange, 0, len(r.Added)+len(r.Modified)+len(r.Deleted))
	all = append(all, r.Added...)
	all = append(all, r.Modified...)
	all = append(all, r.Deleted...)
	sort.Slice(all, func(i, j int) bool { return all[i].Key < all[j].Key })
	return all
}
