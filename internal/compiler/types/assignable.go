package types

// seen guards assignability checks over recursive references
type seen map[[2]Type]bool

func newSeen() seen {
	return make(seen)
}

// isAssignable reports whether a value of type source fits target.
// Unrepresentable and deferred types are never assignable in either direction
// so that callers fall back to generating a guard.
func isAssignable(target, source Type, s seen) bool {
	if target == nil || source == nil {
		return false
	}

	// Top and bottom types
	if p, ok := target.(*PrimitiveType); ok && p.IsTop() {
		return true
	}
	if p, ok := source.(*PrimitiveType); ok && (p.Name == Any || p.Name == Never) {
		return true
	}

	switch source.Kind() {
	case KindUnrepresentable, KindDeferred:
		return false
	}
	switch target.Kind() {
	case KindUnrepresentable, KindDeferred:
		return false
	}

	if target.Equals(source) {
		return true
	}

	key := [2]Type{target, source}
	if s[key] {
		// Assume success for a pair already under comparison
		return true
	}
	s[key] = true

	// Distribute over source unions first: every member must fit.
	if u, ok := source.(*UnionType); ok {
		for _, m := range u.Members {
			if !isAssignable(target, m, s) {
				return false
			}
		}
		return true
	}

	switch t := target.(type) {
	case *UnionType:
		for _, m := range t.Members {
			if isAssignable(m, source, s) {
				return true
			}
		}
		return false

	case *IntersectionType:
		for _, m := range t.Members {
			if !isAssignable(m, source, s) {
				return false
			}
		}
		return true
	}

	if i, ok := source.(*IntersectionType); ok {
		for _, m := range i.Members {
			if isAssignable(target, m, s) {
				return true
			}
		}
		if merged, ok := flattenIntersection(i); ok {
			return isAssignable(target, merged, s)
		}
		return false
	}

	// Unwrap non-class references on either side
	if r, ok := source.(*ReferenceType); ok && !r.IsClass() && r.Target != nil {
		if tr, ok := target.(*ReferenceType); !ok || tr.Decl != r.Decl {
			return isAssignable(target, r.Target, s)
		}
	}

	switch t := target.(type) {
	case *PrimitiveType:
		switch src := source.(type) {
		case *PrimitiveType:
			return src.Name == t.Name
		case *LiteralType:
			return src.Tag() == t.Name
		case *ObjectType, *ArrayType, *TupleType:
			return t.Name == ObjectTag
		case *ReferenceType:
			return t.Name == ObjectTag && src.IsClass()
		}
		return false

	case *LiteralType:
		return t.Equals(source)

	case *ArrayType:
		switch src := source.(type) {
		case *ArrayType:
			return isAssignable(t.Element, src.Element, s)
		case *TupleType:
			for _, e := range src.Elements {
				if !isAssignable(t.Element, e, s) {
					return false
				}
			}
			return true
		}
		return false

	case *TupleType:
		src, ok := source.(*TupleType)
		if !ok || len(src.Elements) != len(t.Elements) {
			return false
		}
		for i := range t.Elements {
			if !isAssignable(t.Elements[i], src.Elements[i], s) {
				return false
			}
		}
		return true

	case *ObjectType:
		src, ok := source.(*ObjectType)
		if !ok {
			return false
		}
		for _, f := range t.Fields {
			sf, ok := src.Field(f.Name)
			if !ok {
				if f.Optional {
					continue
				}
				return false
			}
			if sf.Optional && !f.Optional {
				return false
			}
			if !isAssignable(f.Type, sf.Type, s) {
				return false
			}
		}
		return true

	case *ReferenceType:
		if src, ok := source.(*ReferenceType); ok {
			if src.Decl == t.Decl {
				return equalLists(src.Args, t.Args)
			}
			if t.IsClass() && src.IsClass() {
				return src.Inherits(t.Decl)
			}
		}
		if !t.IsClass() && t.Target != nil {
			return isAssignable(t.Target, source, s)
		}
		return false
	}

	return false
}

// flattenIntersection merges the object members of an intersection into one
// shape. Earlier members win and nested intersections behind aliases are
// merged too. An intersection that contains itself cannot be flattened.
func flattenIntersection(i *IntersectionType) (*ObjectType, bool) {
	merged := &ObjectType{}
	if !mergeInto(merged, i, make(map[Type]bool)) {
		return nil, false
	}
	return merged, true
}

func mergeInto(merged *ObjectType, t Type, visiting map[Type]bool) bool {
	if visiting[t] {
		return false
	}
	switch t := t.(type) {
	case *ObjectType:
		for _, f := range t.Fields {
			if _, exists := merged.Field(f.Name); !exists {
				merged.Fields = append(merged.Fields, f)
			}
		}
		return true
	case *ReferenceType:
		if t.Target == nil {
			return false
		}
		visiting[t] = true
		defer delete(visiting, t)
		return mergeInto(merged, t.Target, visiting)
	case *IntersectionType:
		visiting[t] = true
		defer delete(visiting, t)
		for _, m := range t.Members {
			if !mergeInto(merged, m, visiting) {
				return false
			}
		}
		return true
	}
	return false
}
