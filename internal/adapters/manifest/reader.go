// Package manifest loads and stores the manifests of a workspace.
package manifest

import (
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/inherit/internal/core/domain"
	"go.trai.ch/inherit/internal/core/ports"
	"go.trai.ch/inherit/internal/toml"
	"go.trai.ch/zerr"
)

var _ ports.ManifestReader = (*Reader)(nil)

// Reader implements ports.ManifestReader.
type Reader struct {
	fs     FileSystem
	logger ports.Logger
}

// NewReader creates a Reader on top of the given filesystem.
func NewReader(fsys FileSystem, logger ports.Logger) *Reader {
	return &Reader{fs: fsys, logger: logger}
}

// Load reads the root manifest and every member manifest it declares.
func (r *Reader) Load(rootPath string, excludePackages []string) (*domain.Workspace, error) {
	path, err := r.resolveRootPath(rootPath)
	if err != nil {
		return nil, err
	}

	m, schema, err := r.readManifest(path)
	if err != nil {
		return nil, err
	}
	if schema.Workspace == nil || len(schema.Workspace.Members) == 0 {
		return nil, zerr.With(domain.ErrNoMembersDeclared, "path", path)
	}

	root := &domain.WorkspaceManifest{
		Manifest: m,
		Members:  schema.Workspace.Members,
		Exclude:  schema.Workspace.Exclude,
		Shared:   sharedSpecs(m.Document),
	}
	rootDir := filepath.Dir(path)

	var members []*domain.MemberManifest
	if schema.Package != nil {
		members = append(members, &domain.MemberManifest{
			Manifest:    m,
			Dir:         rootDir,
			PackageName: schema.Package.Name,
		})
	}

	dirs, err := r.resolveMemberDirs(rootDir, root.Members, root.Exclude)
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if dir == rootDir {
			if schema.Package == nil {
				members = append(members, &domain.MemberManifest{Manifest: m, Dir: rootDir})
			}
			continue
		}

		member, memberSchema, err := r.readManifest(domain.ManifestPath(dir))
		if err != nil {
			return nil, zerr.With(err, "member", relPath(rootDir, dir))
		}

		mm := &domain.MemberManifest{Manifest: member, Dir: dir}
		if memberSchema.Package != nil {
			mm.PackageName = memberSchema.Package.Name
		}
		members = append(members, mm)
	}

	members = slices.DeleteFunc(members, func(mm *domain.MemberManifest) bool {
		if mm.PackageName == "" || !slices.Contains(excludePackages, mm.PackageName) {
			return false
		}
		r.logger.Info("excluding package", "package", mm.PackageName, "path", mm.Path)
		return true
	})

	if len(members) == 0 {
		return nil, zerr.With(domain.ErrNoMembersDeclared, "path", path)
	}

	return &domain.Workspace{Root: root, Members: members}, nil
}

// resolveRootPath accepts either a manifest file or the directory holding it.
func (r *Reader) resolveRootPath(rootPath string) (string, error) {
	path := filepath.Clean(rootPath)

	info, err := r.fs.Stat(path)
	if err != nil {
		return "", statError(err, path)
	}
	if !info.IsDir() {
		return path, nil
	}

	path = domain.ManifestPath(path)
	if _, err := r.fs.Stat(path); err != nil {
		return "", statError(err, path)
	}
	return path, nil
}

func statError(err error, path string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return zerr.With(domain.ErrManifestNotFound, "path", path)
	}
	return zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", path)
}

// readManifest reads a manifest and builds its editable tree, then reads the
// fields the reader needs from that tree.
func (r *Reader) readManifest(path string) (*domain.Manifest, *manifestSchema, error) {
	data, err := r.fs.ReadFile(path)
	if err != nil {
		return nil, nil, statError(err, path)
	}

	doc, err := toml.Parse(data)
	if err != nil {
		return nil, nil, malformed(err, path)
	}

	schema, err := decodeSchema(doc, path)
	if err != nil {
		return nil, nil, err
	}

	return &domain.Manifest{
		Path:       path,
		Document:   doc,
		Source:     data,
		SourceHash: xxhash.Sum64(data),
	}, schema, nil
}

func malformed(err error, path string) error {
	wrapped := zerr.Wrap(err, domain.ErrMalformedManifest.Error())
	wrapped = zerr.With(wrapped, "path", path)

	var parseErr *toml.ParseError
	if errors.As(err, &parseErr) {
		wrapped = zerr.With(wrapped, "line", parseErr.Line)
		wrapped = zerr.With(wrapped, "column", parseErr.Column)
	}
	return wrapped
}

// resolveMemberDirs expands the member patterns into sorted package directories.
// Glob matches without a manifest are skipped with a warning and glob matches
// under an excluded path are dropped. Explicit members are always kept.
func (r *Reader) resolveMemberDirs(rootDir string, patterns, exclude []string) ([]string, error) {
	// A map deduplicates directories matched by several patterns.
	dirs := make(map[string]struct{})

	for _, pattern := range patterns {
		absPattern := filepath.Join(rootDir, pattern)

		if !isGlob(pattern) {
			dirs[absPattern] = struct{}{}
			continue
		}

		matches, err := r.fs.Glob(absPattern)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrMemberGlobFailed.Error()), "pattern", pattern)
		}

		for _, match := range matches {
			info, err := r.fs.Stat(match)
			if err != nil || !info.IsDir() {
				continue
			}
			rel := relPath(rootDir, match)
			if isExcluded(rel, exclude) {
				continue
			}
			if _, err := r.fs.Stat(domain.ManifestPath(match)); err != nil {
				r.logger.Warn(domain.ManifestFileName+" missing in workspace member, skipping", "member", rel)
				continue
			}
			dirs[match] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(dirs))
	for d := range dirs {
		sorted = append(sorted, d)
	}
	slices.Sort(sorted)

	return sorted, nil
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// isExcluded reports whether rel lies under one of the exclude paths.
func isExcluded(rel string, exclude []string) bool {
	for _, ex := range exclude {
		ex = filepath.Clean(ex)
		if rel == ex || strings.HasPrefix(rel, ex+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func relPath(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return target
	}
	return rel
}

// sharedSpecs reads [workspace.dependencies] in all its syntactic forms.
func sharedSpecs(doc *toml.Document) map[string]domain.DependencySpec {
	specs := make(map[string]domain.DependencySpec)

	if t := doc.Table("workspace", "dependencies"); t != nil {
		dotted := make(map[string][]*toml.Entry)
		var order []string
		for _, e := range t.Entries() {
			key := e.Key()
			if len(key) == 1 {
				spec, _ := domain.SpecFromValue(e.Value())
				specs[key[0]] = spec
				continue
			}
			if _, ok := dotted[key[0]]; !ok {
				order = append(order, key[0])
			}
			dotted[key[0]] = append(dotted[key[0]], e)
		}
		for _, name := range order {
			specs[name] = domain.SpecFromDotted(dotted[name])
		}
	}

	for _, t := range doc.TablesWithPrefix("workspace", "dependencies") {
		if path := t.Path(); len(path) == 3 {
			specs[path[2]] = domain.SpecFromTable(t)
		}
	}

	return specs
}
