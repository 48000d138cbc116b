package masterdata

import (
	"fmt"
	"slices"
	"strings"

	"masterdata-importer/core/merge"
	"masterdata-importer/feature/masterdata/models"
)

// KindSelection describes per-kind import settings as given on the command line.
type KindSelection struct {
	// Only limits the run to these kinds. Empty selects every kind.
	Only []string
	// Policy is the default policy for selected kinds.
	Policy string
	// Policies overrides the policy per kind, e.g. servant=append.
	Policies map[string]string
	// MinCollectionNo and MaxCollectionNo bound servants when set.
	MinCollectionNo *int
	MaxCollectionNo *int
}

// KindOptions converts a selection into merge options. Kinds not selected
// are present with Import disabled so the report lists them.
func (s KindSelection) KindOptions() (map[merge.Kind]merge.KindOptions, error) {
	policy, err := merge.ParsePolicy(s.Policy)
	if err != nil {
		return nil, err
	}

	selected := make(map[merge.Kind]bool, len(models.Kinds))
	for _, name := range s.Only {
		k, err := parseKind(name)
		if err != nil {
			return nil, err
		}
		selected[k] = true
	}

	out := make(map[merge.Kind]merge.KindOptions, len(models.Kinds))
	for _, k := range models.Kinds {
		out[k] = merge.KindOptions{
			Import: len(selected) == 0 || selected[k],
			Policy: policy,
		}
	}
	servant := out[models.KindServant]
	servant.MinCollectionNo = s.MinCollectionNo
	servant.MaxCollectionNo = s.MaxCollectionNo
	out[models.KindServant] = servant

	for name, raw := range s.Policies {
		k, err := parseKind(name)
		if err != nil {
			return nil, err
		}
		p, err := merge.ParsePolicy(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		o := out[k]
		o.Policy = p
		out[k] = o
	}
	return out, nil
}

func parseKind(name string) (merge.Kind, error) {
	k := merge.Kind(strings.ToLower(strings.TrimSpace(name)))
	if !slices.Contains(models.Kinds, k) {
		return "", fmt.Errorf("unknown entity kind %q", name)
	}
	return k, nil
}
