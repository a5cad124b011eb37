package config

import (
	"fmt"

	"github.com/valyala/fastjson"
)

// FromJSON parses a JSON object into a Group. fastjson visits object
// members in document order, which keeps variable declaration order
// intact. JSON carries no line information, so entry lines are zero.
func FromJSON(src []byte) (*Group, error) {
	v, err := fastjson.ParseBytes(src)
	if err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	obj, err := v.Object()
	if err != nil {
		return nil, fmt.Errorf("animation script must be an object: %w", err)
	}
	return groupFromObject(obj)
}

func groupFromObject(obj *fastjson.Object) (*Group, error) {
	g := NewGroup()
	var visitErr error
	obj.Visit(func(key []byte, v *fastjson.Value) {
		if visitErr != nil {
			return
		}
		name := string(key)
		switch v.Type() {
		case fastjson.TypeNumber:
			g.AddNumber(name, v.GetFloat64(), 0)
		case fastjson.TypeString:
			g.AddString(name, string(v.GetStringBytes()), 0)
		case fastjson.TypeTrue:
			g.AddBool(name, true, 0)
		case fastjson.TypeFalse:
			g.AddBool(name, false, 0)
		case fastjson.TypeObject:
			sub, err := groupFromObject(v.GetObject())
			if err != nil {
				visitErr = err
				return
			}
			g.AddGroup(name, sub, 0)
		default:
			visitErr = fmt.Errorf("unsupported %s value for %q", v.Type(), name)
		}
	})
	if visitErr != nil {
		return nil, visitErr
	}
	return g, nil
}
