package mapping

import (
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"mapping-resolver/internal/common"
)

// --- StringOrArray YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for StringOrArray.
// Accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML implements custom YAML marshaling for StringOrArray.
// Outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// First returns the first element or empty string if empty.
func (s StringOrArray) First() string {
	if v, ok := common.First(s); ok {
		return v
	}

	return ""
}

// IsEmpty returns true if the array is empty.
func (s StringOrArray) IsEmpty() bool {
	return len(s) == 0
}

// Contains returns true if the array contains the given string.
func (s StringOrArray) Contains(str string) bool {
	return slices.Contains(s, str)
}

// --- RenameList YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for RenameList.
// Accepts a map, kept in file order, or a list of single-key maps:
//
//	renames: {named: yarn, intermediary: calamus}
//	renames: [{named: yarn}, {intermediary: calamus}]
func (r *RenameList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		pairs, err := decodePairs(node)
		if err != nil {
			return err
		}

		*r = pairs

		return nil

	case yaml.SequenceNode:
		var out RenameList

		for _, item := range node.Content {
			if item.Kind != yaml.MappingNode {
				return fmt.Errorf("expected {from: to} map in renames, got %v", item.Kind)
			}

			pairs, err := decodePairs(item)
			if err != nil {
				return err
			}

			out = append(out, pairs...)
		}

		*r = out

		return nil

	default:
		return fmt.Errorf("expected map or list of maps, got %v", node.Kind)
	}
}

func decodePairs(node *yaml.Node) (RenameList, error) {
	out := make(RenameList, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var from, to string

		if err := node.Content[i].Decode(&from); err != nil {
			return nil, fmt.Errorf("invalid rename source: %w", err)
		}

		if err := node.Content[i+1].Decode(&to); err != nil {
			return nil, fmt.Errorf("invalid rename target for %q: %w", from, err)
		}

		out = append(out, Rename{From: from, To: to})
	}

	return out, nil
}

// MarshalYAML implements custom YAML marshaling for RenameList. Output is
// a map in list order.
func (r RenameList) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, rn := range r {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: rn.From},
			&yaml.Node{Kind: yaml.ScalarNode, Value: rn.To},
		)
	}

	return node, nil
}

// --- ProvidedArray YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for ProvidedArray.
// Accepts:
//   - Single string: "intermediary"
//   - Single map: {yarn: true}
//   - Array mixing both: [searge, {mcp: true}]
func (p *ProvidedArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*p = ProvidedArray{{Namespace: str}}
		} else {
			*p = ProvidedArray{}
		}

		return nil

	case yaml.MappingNode:
		provided, err := parseProvidedFromMap(node)
		if err != nil {
			return err
		}

		*p = provided

		return nil

	case yaml.SequenceNode:
		var out ProvidedArray

		for _, item := range node.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				var str string

				err := item.Decode(&str)
				if err != nil {
					return err
				}

				out = append(out, Provided{Namespace: str})

			case yaml.MappingNode:
				provided, err := parseProvidedFromMap(item)
				if err != nil {
					return err
				}

				out = append(out, provided...)

			default:
				return fmt.Errorf("expected string or map in array, got %v", item.Kind)
			}
		}

		*p = out

		return nil

	default:
		return fmt.Errorf("expected string, map, or array, got %v", node.Kind)
	}
}

// parseProvidedFromMap parses a YAML mapping node like {yarn: true}.
func parseProvidedFromMap(node *yaml.Node) (ProvidedArray, error) {
	if len(node.Content) == 0 {
		return nil, errors.New("expected map like {yarn: true}")
	}

	out := make(ProvidedArray, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var (
			ns            string
			authoritative bool
		)

		if err := node.Content[i].Decode(&ns); err != nil {
			return nil, fmt.Errorf("invalid namespace: %w", err)
		}

		if err := node.Content[i+1].Decode(&authoritative); err != nil {
			return nil, fmt.Errorf("invalid authoritative flag for %q: %w", ns, err)
		}

		out = append(out, Provided{Namespace: ns, Authoritative: authoritative})
	}

	return out, nil
}

// MarshalYAML implements custom YAML marshaling for ProvidedArray.
// Non-authoritative namespaces are written as plain strings.
func (p ProvidedArray) MarshalYAML() (any, error) {
	out := make([]any, len(p))

	for i, v := range p {
		if v.Authoritative {
			out[i] = map[string]bool{v.Namespace: true}
		} else {
			out[i] = v.Namespace
		}
	}

	return out, nil
}
