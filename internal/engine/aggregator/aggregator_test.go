package aggregator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/inherit/internal/core/domain"
	"go.trai.ch/inherit/internal/engine/aggregator"
	"go.trai.ch/inherit/internal/toml"
)

func member(t *testing.T, path, content string) *domain.MemberManifest {
	t.Helper()
	doc, err := toml.Parse([]byte(content))
	require.NoError(t, err)
	return &domain.MemberManifest{
		Manifest: &domain.Manifest{Path: path, Document: doc, Source: []byte(content)},
	}
}

func key(ns domain.Namespace, name string) domain.OccurrenceKey {
	return domain.OccurrenceKey{Namespace: ns, Name: name}
}

func TestAggregate_CountsMembersPerNamespace(t *testing.T) {
	a := member(t, "a/Cargo.toml", `[package]
name = "a"

[dependencies]
serde = "1.0"
tokio = { version = "1.38", features = ["full"] }

[dev-dependencies]
serde = "1.0"
`)
	b := member(t, "b/Cargo.toml", `[package]
name = "b"

[dependencies]
serde = { version = "1.2", features = ["derive"] }

[build_dependencies]
cc = "1"
`)

	occ, warnings := aggregator.New().Aggregate([]*domain.MemberManifest{a, b})

	assert.Equal(t, []domain.OccurrenceKey{
		key(domain.NamespaceNormal, "serde"),
		key(domain.NamespaceNormal, "tokio"),
		key(domain.NamespaceDev, "serde"),
		key(domain.NamespaceBuild, "cc"),
	}, occ.Keys())

	serde := occ[key(domain.NamespaceNormal, "serde")]
	assert.Equal(t, 2, serde.Count())
	assert.Equal(t, []string{"1.0", "1.2"}, serde.DistinctVersions())
	assert.Equal(t, []string{"a/Cargo.toml", "b/Cargo.toml"}, serde.Members)

	assert.Equal(t, 1, occ[key(domain.NamespaceDev, "serde")].Count())
	assert.Empty(t, warnings)
}

func TestAggregate_EntryForms(t *testing.T) {
	m := member(t, "a/Cargo.toml", `[dependencies]
plain = "1"
inline = { version = "2", optional = true }
dotted.version = "3"
dotted.features = ["x"]
weird = 42

[dependencies.table]
version = "4"
default-features = false
`)

	entries := aggregator.Entries(m)
	require.Len(t, entries, 5)

	byName := make(map[string]*domain.DependencyEntry)
	for _, e := range entries {
		byName[e.Name] = e
	}

	assert.Equal(t, domain.FormString, byName["plain"].Form)
	assert.Equal(t, "1", byName["plain"].Spec.Version)

	assert.Equal(t, domain.FormInline, byName["inline"].Form)
	assert.Equal(t, "2", byName["inline"].Spec.Version)
	assert.Equal(t, []string{"optional"}, byName["inline"].Spec.Attributes)

	assert.Equal(t, domain.FormDotted, byName["dotted"].Form)
	assert.Equal(t, "3", byName["dotted"].Spec.Version)
	assert.Equal(t, []string{"features"}, byName["dotted"].Spec.Attributes)

	assert.Equal(t, domain.FormOther, byName["weird"].Form)
	assert.False(t, byName["weird"].Spec.HasVersion())

	assert.Equal(t, domain.FormTable, byName["table"].Form)
	assert.Nil(t, byName["table"].Entry)
	assert.Equal(t, "4", byName["table"].Spec.Version)
	assert.Equal(t, toml.Key{"dependencies", "table"}, byName["table"].Table.Path())
}

func TestAggregate_TargetTablesShareNamespace(t *testing.T) {
	m := member(t, "a/Cargo.toml", `[dependencies]
libc = "0.2"

[target.'cfg(unix)'.dependencies]
libc = "0.2"

[target.'cfg(windows)'.dev-dependencies]
winapi = "0.3"

[target.'cfg(windows)'.dependencies.windows-sys]
version = "0.52"
`)

	occ, _ := aggregator.New().Aggregate([]*domain.MemberManifest{m})

	libc := occ[key(domain.NamespaceNormal, "libc")]
	require.NotNil(t, libc)
	assert.Equal(t, 1, libc.Count(), "a member counts once")
	assert.Len(t, libc.Entries, 2, "every location is recorded")

	assert.NotNil(t, occ[key(domain.NamespaceDev, "winapi")])
	assert.NotNil(t, occ[key(domain.NamespaceNormal, "windows-sys")])
}

func TestAggregate_SkipsInheritedEntries(t *testing.T) {
	m := member(t, "a/Cargo.toml", `[dependencies]
serde = { workspace = true, features = ["derive"] }
rand.workspace = true
anyhow = "1"

[dependencies.tokio]
workspace = true
`)

	occ, _ := aggregator.New().Aggregate([]*domain.MemberManifest{m})

	assert.Equal(t, []domain.OccurrenceKey{key(domain.NamespaceNormal, "anyhow")}, occ.Keys())
}

func TestAggregate_UnversionedEntries(t *testing.T) {
	a := member(t, "a/Cargo.toml", "[dependencies]\nserde = { features = [\"derive\"] }\n")
	b := member(t, "b/Cargo.toml", "[dependencies]\nserde = \"1\"\n")

	occ, _ := aggregator.New().Aggregate([]*domain.MemberManifest{a, b})

	rec := occ[key(domain.NamespaceNormal, "serde")]
	assert.Equal(t, 2, rec.Count())
	assert.Equal(t, []string{"a/Cargo.toml"}, rec.Unversioned)
	assert.Equal(t, []string{"1"}, rec.DistinctVersions())
}

func TestAggregate_IgnoresUnrelatedTables(t *testing.T) {
	m := member(t, "a/Cargo.toml", `[package]
name = "a"

[features]
default = ["serde"]

[[bin]]
name = "tool"

[patch.crates-io]
serde = { git = "https://example.com/serde" }
`)

	occ, warnings := aggregator.New().Aggregate([]*domain.MemberManifest{m})
	assert.Empty(t, occ)
	assert.Empty(t, warnings)
}

func TestAggregate_WarnsAboutDependencyTablesWrittenAsKeys(t *testing.T) {
	m := member(t, "a/Cargo.toml", `dependencies = { serde = "1" }
dev-dependencies.proptest = "1.4"
dev-dependencies.rand = "0.8"
package.name = "a"

[target.'cfg(unix)']
build-dependencies = { cc = "1" }

[dependencies.tokio]
version = "1.38"
`)

	occ, warnings := aggregator.New().Aggregate([]*domain.MemberManifest{m})

	assert.Equal(t, []domain.OccurrenceKey{key(domain.NamespaceNormal, "tokio")}, occ.Keys())
	require.Len(t, warnings, 3)

	var names []string
	for _, w := range warnings {
		assert.Equal(t, domain.WarningIgnoredDependencyTable, w.Kind)
		assert.Equal(t, []string{"a/Cargo.toml"}, w.Members)
		names = append(names, w.Dependency)
	}
	assert.Equal(t, []string{"dependencies", "dev-dependencies", `target."cfg(unix)".build-dependencies`}, names)
	assert.Equal(t, domain.NamespaceBuild, warnings[2].Namespace)
	assert.Equal(t, "ignoring dependencies: only [dependencies] table headers are read", warnings[0].Message())
}

func TestAggregate_IgnoredTableWarningPerMember(t *testing.T) {
	a := member(t, "a/Cargo.toml", "dependencies.serde = \"1\"\n")
	b := member(t, "b/Cargo.toml", "dependencies.serde = \"1\"\n")

	_, warnings := aggregator.New().Aggregate([]*domain.MemberManifest{a, b})

	require.Len(t, warnings, 2)
	assert.Equal(t, []string{"a/Cargo.toml"}, warnings[0].Members)
	assert.Equal(t, []string{"b/Cargo.toml"}, warnings[1].Members)
}
