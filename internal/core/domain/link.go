package domain

// LinkKind tells the enclosing linker how to consume a library.
type LinkKind string

const (
	// LinkDynamic links a shared library.
	LinkDynamic LinkKind = "dylib"
	// LinkStatic links a static archive.
	LinkStatic LinkKind = "static"
)

// Conditions recorded on directives, naming the rule that produced them.
const (
	ConditionManagedRuntime   = "link_managed_runtime"
	ConditionAcceleratorUnit  = "accelerator_unit"
	ConditionAcceleratorAPI   = "use_accelerator_api"
	ConditionCompiledArtifact = "artifact"
)

// LinkDirective is one instruction for the enclosing build's link step.
type LinkDirective struct {
	Library    string   `json:"library"`
	SearchPath string   `json:"search_path,omitempty"`
	Kind       LinkKind `json:"kind"`
	Condition  string   `json:"condition"`
}

// MergeDirectives concatenates directive lists in order, keeping the first
// occurrence of any repeated directive.
func MergeDirectives(lists ...[]LinkDirective) []LinkDirective {
	seen := make(map[LinkDirective]struct{})
	var out []LinkDirective
	for _, list := range lists {
		for _, d := range list {
			key := d
			key.Condition = ""
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, d)
		}
	}
	return out
}

// SearchPaths returns the distinct search paths of directives in order.
func SearchPaths(directives []LinkDirective) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range directives {
		if d.SearchPath == "" {
			continue
		}
		if _, ok := seen[d.SearchPath]; ok {
			continue
		}
		seen[d.SearchPath] = struct{}{}
		out = append(out, d.SearchPath)
	}
	return out
}
