package selector_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/inherit/internal/core/domain"
	"go.trai.ch/inherit/internal/engine/selector"
	"go.trai.ch/zerr"
)

const rootPath = "Cargo.toml"

func emptyRoot() *domain.WorkspaceManifest {
	return &domain.WorkspaceManifest{
		Manifest: &domain.Manifest{Path: rootPath},
		Shared:   map[string]domain.DependencySpec{},
	}
}

// uses records one entry per (member, version) pair for key.
func uses(occ domain.Occurrences, ns domain.Namespace, name string, versions ...string) {
	key := domain.OccurrenceKey{Namespace: ns, Name: name}
	rec, ok := occ[key]
	if !ok {
		rec = domain.NewOccurrenceRecord(key)
		occ[key] = rec
	}
	offset := len(rec.Members)
	for i, v := range versions {
		m := &domain.MemberManifest{Manifest: &domain.Manifest{
			Path: fmt.Sprintf("%s-%s-%d/Cargo.toml", ns, name, offset+i),
		}}
		rec.Add(&domain.DependencyEntry{
			Member:    m,
			Namespace: ns,
			Name:      name,
			Spec:      domain.DependencySpec{Version: v},
		})
	}
}

func TestSelect_Threshold(t *testing.T) {
	occ := domain.Occurrences{}
	uses(occ, domain.NamespaceNormal, "serde", "1.0", "1.0", "1.0")
	uses(occ, domain.NamespaceNormal, "rand", "0.8", "0.8")
	uses(occ, domain.NamespaceNormal, "log", "0.4")

	tests := []struct {
		threshold int
		expected  []string
	}{
		{threshold: 1, expected: []string{"log", "rand", "serde"}},
		{threshold: 2, expected: []string{"rand", "serde"}},
		{threshold: 3, expected: []string{"serde"}},
		{threshold: 4, expected: nil},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.threshold), func(t *testing.T) {
			sel, err := selector.New().Select(occ, emptyRoot(), selector.Options{Threshold: tt.threshold})
			require.NoError(t, err)

			var names []string
			for _, d := range sel.Decisions {
				names = append(names, d.Key.Name)
			}
			assert.Equal(t, tt.expected, names)
			assert.Empty(t, sel.Warnings)
		})
	}
}

func TestSelect_ThresholdIsMonotonic(t *testing.T) {
	occ := domain.Occurrences{}
	uses(occ, domain.NamespaceNormal, "a", "1", "1", "1", "1")
	uses(occ, domain.NamespaceNormal, "b", "1", "2")
	uses(occ, domain.NamespaceDev, "c", "1", "1", "1")

	selected := func(n int) map[domain.OccurrenceKey]bool {
		sel, err := selector.New().Select(occ, emptyRoot(), selector.Options{Threshold: n})
		require.NoError(t, err)
		out := make(map[domain.OccurrenceKey]bool)
		for _, d := range sel.Decisions {
			out[d.Key] = true
		}
		return out
	}

	for n := 1; n < 5; n++ {
		higher := selected(n + 1)
		lower := selected(n)
		for k := range higher {
			assert.True(t, lower[k], "%s selected at n=%d but not at n=%d", k, n+1, n)
		}
	}
}

func TestSelect_InvalidThreshold(t *testing.T) {
	_, err := selector.New().Select(domain.Occurrences{}, emptyRoot(), selector.Options{Threshold: 0})
	require.Error(t, err)
	require.ErrorContains(t, err, domain.ErrInvalidThreshold.Error())
}

func TestSelect_HighestVersionWins(t *testing.T) {
	occ := domain.Occurrences{}
	uses(occ, domain.NamespaceNormal, "serde", "1.0", "1.0", "1.0", "1.2", "1.2")

	sel, err := selector.New().Select(occ, emptyRoot(), selector.Options{Threshold: 5})
	require.NoError(t, err)

	require.Len(t, sel.Decisions, 1)
	d := sel.Decisions[0]
	assert.Equal(t, "1.2", d.Version)
	assert.Len(t, d.Entries, 5, "members on the discarded version are rewritten too")
	require.NotNil(t, d.Conflict)
	assert.Equal(t, "1.2", d.Conflict.Resolved)
	assert.Len(t, d.Conflict.Discarded["1.0"], 3)

	require.Len(t, sel.Warnings, 1)
	w := sel.Warnings[0]
	assert.Equal(t, domain.WarningVersionConflictResolved, w.Kind)
	assert.Equal(t, "serde", w.Dependency)
	assert.Equal(t, []string{
		"normal-serde-0/Cargo.toml",
		"normal-serde-1/Cargo.toml",
		"normal-serde-2/Cargo.toml",
	}, w.Members)
	assert.Equal(t, `"1.2" chosen over "1.0"`, w.Detail)
}

func TestSelect_FailOnConflict(t *testing.T) {
	occ := domain.Occurrences{}
	uses(occ, domain.NamespaceNormal, "serde", "1.0", "1.2")

	_, err := selector.New().Select(occ, emptyRoot(), selector.Options{Threshold: 2, FailOnConflict: true})
	require.Error(t, err)
	require.ErrorContains(t, err, domain.ErrVersionConflict.Error())

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "serde", zErr.Metadata()["dependency"])
	assert.Equal(t, "1.0, 1.2", zErr.Metadata()["versions"])
}

func TestSelect_FailOnConflictAllowsAgreement(t *testing.T) {
	occ := domain.Occurrences{}
	uses(occ, domain.NamespaceNormal, "serde", "1.0", "1.0")

	sel, err := selector.New().Select(occ, emptyRoot(), selector.Options{Threshold: 2, FailOnConflict: true})
	require.NoError(t, err)
	require.Len(t, sel.Decisions, 1)
	assert.Nil(t, sel.Decisions[0].Conflict)
}

func TestSelect_NamespacesShareOneVersion(t *testing.T) {
	occ := domain.Occurrences{}
	uses(occ, domain.NamespaceNormal, "tokio", "1.38", "1.38")
	uses(occ, domain.NamespaceDev, "tokio", "1.30", "1.30")

	sel, err := selector.New().Select(occ, emptyRoot(), selector.Options{Threshold: 2})
	require.NoError(t, err)

	require.Len(t, sel.Decisions, 2)
	assert.Equal(t, domain.NamespaceNormal, sel.Decisions[0].Key.Namespace)
	assert.Equal(t, "1.38", sel.Decisions[0].Version)
	assert.Nil(t, sel.Decisions[0].Conflict)

	assert.Equal(t, domain.NamespaceDev, sel.Decisions[1].Key.Namespace)
	assert.Equal(t, "1.38", sel.Decisions[1].Version)
	require.NotNil(t, sel.Decisions[1].Conflict)

	require.Len(t, sel.Warnings, 1)
	assert.Equal(t, domain.NamespaceDev, sel.Warnings[0].Namespace)
}

func TestSelect_NamespacesCountedIndependently(t *testing.T) {
	occ := domain.Occurrences{}
	uses(occ, domain.NamespaceNormal, "serde", "1.0")
	uses(occ, domain.NamespaceDev, "serde", "1.0")

	sel, err := selector.New().Select(occ, emptyRoot(), selector.Options{Threshold: 2})
	require.NoError(t, err)
	assert.Empty(t, sel.Decisions)
}

func TestSelect_SharedVersionParticipates(t *testing.T) {
	root := emptyRoot()
	root.Shared["serde"] = domain.DependencySpec{Kind: domain.SpecPlainVersion, Version: "1.5"}

	occ := domain.Occurrences{}
	uses(occ, domain.NamespaceNormal, "serde", "1.0", "1.0")

	sel, err := selector.New().Select(occ, root, selector.Options{Threshold: 2})
	require.NoError(t, err)

	require.Len(t, sel.Decisions, 1)
	assert.Equal(t, "1.5", sel.Decisions[0].Version)
	require.NotNil(t, sel.Decisions[0].Conflict)
	assert.Len(t, sel.Decisions[0].Conflict.Discarded["1.0"], 2)
	require.Len(t, sel.Warnings, 1)
	assert.Equal(t, domain.WarningVersionConflictResolved, sel.Warnings[0].Kind)
}

func TestSelect_LosingSharedVersionIsNotAConflict(t *testing.T) {
	root := emptyRoot()
	root.Shared["foo"] = domain.DependencySpec{Kind: domain.SpecPlainVersion, Version: "0.9"}

	// The member inheriting foo is not counted; the two plain entries agree.
	occ := domain.Occurrences{}
	uses(occ, domain.NamespaceNormal, "foo", "1.0", "1.0")

	sel, err := selector.New().Select(occ, root, selector.Options{Threshold: 2, FailOnConflict: true})
	require.NoError(t, err)

	require.Len(t, sel.Decisions, 1)
	assert.Equal(t, "1.0", sel.Decisions[0].Version)
	assert.Nil(t, sel.Decisions[0].Conflict)

	for _, w := range sel.Warnings {
		assert.NotEqual(t, domain.WarningVersionConflictResolved, w.Kind)
	}
	require.Len(t, sel.Warnings, 1)
	assert.Equal(t, domain.WarningSharedVersionReplaced, sel.Warnings[0].Kind)
	assert.Equal(t, []string{rootPath}, sel.Warnings[0].Members)
	assert.Equal(t, `"1.0" replaces "0.9"`, sel.Warnings[0].Detail)
}

func TestSelect_SharedVersionReportedOncePerName(t *testing.T) {
	root := emptyRoot()
	root.Shared["tokio"] = domain.DependencySpec{Kind: domain.SpecPlainVersion, Version: "1.0"}

	occ := domain.Occurrences{}
	uses(occ, domain.NamespaceNormal, "tokio", "1.38", "1.38")
	uses(occ, domain.NamespaceDev, "tokio", "1.38", "1.38")

	sel, err := selector.New().Select(occ, root, selector.Options{Threshold: 2})
	require.NoError(t, err)

	require.Len(t, sel.Decisions, 2)
	require.Len(t, sel.Warnings, 1)
	assert.Equal(t, domain.WarningSharedVersionReplaced, sel.Warnings[0].Kind)
}

func TestSelect_NoVersionToPublish(t *testing.T) {
	occ := domain.Occurrences{}
	uses(occ, domain.NamespaceNormal, "local", "", "")

	sel, err := selector.New().Select(occ, emptyRoot(), selector.Options{Threshold: 2})
	require.NoError(t, err)

	assert.Empty(t, sel.Decisions)
	require.Len(t, sel.Warnings, 1)
	assert.Equal(t, domain.WarningNoVersionToPublish, sel.Warnings[0].Kind)
	assert.Equal(t, "local", sel.Warnings[0].Dependency)
}

func TestSelect_ExcludeDependencies(t *testing.T) {
	occ := domain.Occurrences{}
	uses(occ, domain.NamespaceNormal, "openssl", "0.10", "0.10")
	uses(occ, domain.NamespaceNormal, "serde", "1", "1")

	sel, err := selector.New().Select(occ, emptyRoot(), selector.Options{
		Threshold:           2,
		ExcludeDependencies: []string{"openssl"},
	})
	require.NoError(t, err)

	require.Len(t, sel.Decisions, 1)
	assert.Equal(t, "serde", sel.Decisions[0].Key.Name)
}
