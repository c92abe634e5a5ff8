package common

// First returns the first element of the slice and true, or the zero value and false if empty.
func First[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[0], true
}

// Only returns the element of a single-element slice.
func Only[S ~[]E, E any](s S) (E, bool) {
	if len(s) != 1 {
		var zero E
		return zero, false
	}

	return s[0], true
}

// GroupBy splits s by key. Keys are returned in order of first appearance
// and every group keeps the order of s.
func GroupBy[S ~[]E, E any, K comparable](s S, key func(E) K) ([]K, map[K]S) {
	var keys []K

	groups := make(map[K]S)

	for _, e := range s {
		k := key(e)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}

		groups[k] = append(groups[k], e)
	}

	return keys, groups
}
