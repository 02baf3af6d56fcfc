package persona

const (
	reasonMissing   = "missing required field"
	reasonNotObject = "field should be an object"
)

// ValidationOutcome reports whether a document satisfies a FieldSpec.
// FailurePath is the dotted path of the first problem found.
type ValidationOutcome struct {
	Valid       bool
	FailurePath string
	Reason      string
}

func failAt(path, reason string) ValidationOutcome {
	return ValidationOutcome{FailurePath: path, Reason: reason}
}

// Validate checks presence and container type only, stopping at the first failure.
//
// Order: top-level keys, then each declared parent present at the top level,
// then each nested field inside its enclosing object.
func Validate(doc map[string]any, spec *FieldSpec) ValidationOutcome {
	for _, key := range spec.Required {
		if _, ok := doc[key]; !ok {
			return failAt(key, reasonMissing)
		}
	}

	for _, child := range spec.Children {
		value, ok := doc[child.Parent]
		if !ok {
			continue
		}
		if out := checkChildren(value, child.Parent, child.Fields); !out.Valid {
			return out
		}
	}

	for _, nested := range spec.Nested {
		outer, ok := doc[nested.Under].(map[string]any)
		if !ok {
			continue
		}
		value, ok := outer[nested.Field]
		if !ok {
			continue
		}
		path := nested.Under + "." + nested.Field
		if out := checkChildren(value, path, spec.ChildrenOf(nested.Field)); !out.Valid {
			return out
		}
	}

	return ValidationOutcome{Valid: true}
}

func checkChildren(value any, path string, fields []string) ValidationOutcome {
	obj, ok := value.(map[string]any)
	if !ok {
		return failAt(path, reasonNotObject)
	}
	for _, f := range fields {
		if _, ok := obj[f]; !ok {
			return failAt(path+"."+f, reasonMissing)
		}
	}
	return ValidationOutcome{Valid: true}
}
