package domain

// Namespace is the kind of dependency table an entry lives in. Each namespace
// is counted and published independently of the others.
type Namespace int

const (
	// NamespaceNormal is the [dependencies] table.
	NamespaceNormal Namespace = iota
	// NamespaceDev is the [dev-dependencies] table.
	NamespaceDev
	// NamespaceBuild is the [build-dependencies] table.
	NamespaceBuild
)

// Namespaces lists every namespace in canonical order.
var Namespaces = []Namespace{NamespaceNormal, NamespaceDev, NamespaceBuild}

// String returns the short name of the namespace.
func (n Namespace) String() string {
	switch n {
	case NamespaceNormal:
		return "normal"
	case NamespaceDev:
		return "dev"
	case NamespaceBuild:
		return "build"
	default:
		return "unknown"
	}
}

// TableName returns the manifest table holding the namespace.
func (n Namespace) TableName() string {
	switch n {
	case NamespaceDev:
		return "dev-dependencies"
	case NamespaceBuild:
		return "build-dependencies"
	default:
		return "dependencies"
	}
}

// NamespaceForTable maps a dependency table name, including the legacy
// underscore spellings, to its namespace.
func NamespaceForTable(name string) (Namespace, bool) {
	switch name {
	case "dependencies":
		return NamespaceNormal, true
	case "dev-dependencies", "dev_dependencies":
		return NamespaceDev, true
	case "build-dependencies", "build_dependencies":
		return NamespaceBuild, true
	default:
		return 0, false
	}
}
