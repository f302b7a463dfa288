package symbols

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when decoding a symbol whose type tag has no payload shape.
var ErrUnknownKind = errors.New("unknown symbol kind")

// UnmarshalJSON decodes a symbol, choosing the meta shape from the "type" tag.
func (s *Symbol) UnmarshalJSON(data []byte) error {
	type plain Symbol
	var raw struct {
		plain
		Meta json.RawMessage `json:"meta"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	meta, err := newMeta(raw.Type)
	if err != nil {
		return err
	}
	if len(raw.Meta) > 0 && string(raw.Meta) != "null" {
		if err := json.Unmarshal(raw.Meta, meta); err != nil {
			return fmt.Errorf("failed to decode %s meta: %w", raw.Type, err)
		}
	}

	*s = Symbol(raw.plain)
	s.Meta = meta
	return nil
}

func newMeta(kind Kind) (Meta, error) {
	switch kind {
	case KindFunction:
		return &FunctionMeta{}, nil
	case KindType:
		return &TypeMeta{}, nil
	case KindClass:
		return &ClassMeta{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
