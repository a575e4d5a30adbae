package toon

// Layout is the form an array takes in TOON output.
type Layout int

const (
	// LayoutEmpty is a zero-length array: key[0]:
	LayoutEmpty Layout = iota
	// LayoutInline is an array of primitives on the header line: key[3]: a,b,c
	LayoutInline
	// LayoutArrays is an array of primitive arrays written as list items: - [2]: 1,2
	LayoutArrays
	// LayoutTabular is an array of uniform flat objects: key[2]{id,name}: followed by rows
	LayoutTabular
	// LayoutList is any other array, one "- " item per element.
	LayoutList
)

func (l Layout) String() string {
	switch l {
	case LayoutEmpty:
		return "empty"
	case LayoutInline:
		return "inline"
	case LayoutArrays:
		return "arrays"
	case LayoutTabular:
		return "tabular"
	case LayoutList:
		return "list"
	}
	return "unknown"
}

// ArrayLayout reports how arr is encoded. arr must already be normalized.
func ArrayLayout(arr []any) Layout {
	if len(arr) == 0 {
		return LayoutEmpty
	}
	if allPrimitive(arr) {
		return LayoutInline
	}
	if allPrimitiveArrays(arr) {
		return LayoutArrays
	}
	if TabularFields(arr) != nil {
		return LayoutTabular
	}
	return LayoutList
}

// TabularFields returns the field header for arr when every element is an object with
// the same keys and only primitive values. It returns nil otherwise.
func TabularFields(arr []any) []string {
	if len(arr) == 0 {
		return nil
	}
	first, ok := arr[0].(*Object)
	if !ok || first.Len() == 0 {
		return nil
	}
	fields := first.Keys()
	for _, item := range arr {
		row, ok := item.(*Object)
		if !ok || row.Len() != len(fields) {
			return nil
		}
		for _, f := range fields {
			v, ok := row.Get(f)
			if !ok || !isPrimitive(v) {
				return nil
			}
		}
	}
	return fields
}

func isPrimitive(v any) bool {
	switch v.(type) {
	case nil, bool, string, int64, uint64, float64:
		return true
	}
	return false
}

func allPrimitive(arr []any) bool {
	for _, v := range arr {
		if !isPrimitive(v) {
			return false
		}
	}
	return true
}

func allPrimitiveArrays(arr []any) bool {
	for _, v := range arr {
		inner, ok := v.([]any)
		if !ok || !allPrimitive(inner) {
			return false
		}
	}
	return true
}
