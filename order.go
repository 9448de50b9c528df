package chainref

import "strconv"

// OrderKeys projects every record of batch onto the canonical key order of
// t. Absent optional fields are omitted (a null optional counts as absent);
// empty strings are kept. Record order is unchanged.
func OrderKeys(t RecordType, batch any) ([]Record, error) {
	l, err := LayoutOf(t)
	if err != nil {
		return nil, err
	}
	objs, err := objects(t, batch)
	if err != nil {
		return nil, err
	}
	out := make([]Record, len(objs))
	for i, obj := range objs {
		out[i] = orderRecord(l, obj)
	}
	return out, nil
}

func orderRecord(l Layout, obj map[string]any) Record {
	r := Record{keys: make([]string, 0, len(l.Fields)), values: make(map[string]any, len(l.Fields))}
	for _, f := range l.Fields {
		v, ok := obj[f.Name]
		if !ok || (v == nil && !f.Required) {
			continue
		}
		r.Set(f.Name, v)
	}
	return r
}

// objects asserts the decoded batch is an array of objects.
func objects(t RecordType, batch any) ([]map[string]any, error) {
	switch b := normalizeBatch(batch).(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]map[string]any, len(b))
		for i, v := range b {
			obj, ok := v.(map[string]any)
			if !ok {
				return nil, &InputError{Type: t, Path: "/" + strconv.Itoa(i), Got: jsonTypeName(v)}
			}
			out[i] = obj
		}
		return out, nil
	default:
		return nil, &InputError{Type: t, Path: "/", Got: jsonTypeName(b)}
	}
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return "number"
	}
}
