package engine

// RequestSources are the raw variable sources a run can populate for the
// guest. Which of them appear, and in what order, is controlled by the
// variables_order setting; the merged request map follows request_order.
type RequestSources struct {
	Env    map[string]string
	Get    map[string]string
	Post   map[string]string
	Cookie map[string]string
	Server map[string]string
}

// sourceFor maps an order letter to its source name and map.
// E=env, G=get, P=post, C=cookie, S=server; anything else is ignored.
func sourceFor(letter byte, src RequestSources) (string, map[string]string) {
	switch letter {
	case 'E':
		return "env", src.Env
	case 'G':
		return "get", src.Get
	case 'P':
		return "post", src.Post
	case 'C':
		return "cookie", src.Cookie
	case 'S':
		return "server", src.Server
	default:
		return "", nil
	}
}

// PopulateVariables returns the variable sources named by order, keyed by
// source name. Sources not listed are absent entirely; listed sources with
// no data appear as empty maps. Duplicate letters keep their first position.
func PopulateVariables(order string, src RequestSources) map[string]map[string]string {
	vars := make(map[string]map[string]string)
	for i := 0; i < len(order); i++ {
		name, data := sourceFor(order[i], src)
		if name == "" {
			continue
		}
		if _, seen := vars[name]; seen {
			continue
		}
		m := make(map[string]string, len(data))
		for k, v := range data {
			m[k] = v
		}
		vars[name] = m
	}
	return vars
}

// MergeRequest folds the sources named by order into one map, later
// sources overwriting earlier keys. The default "GP" means post values win
// over get values for colliding keys.
func MergeRequest(order string, src RequestSources) map[string]string {
	merged := make(map[string]string)
	for i := 0; i < len(order); i++ {
		_, data := sourceFor(order[i], src)
		for k, v := range data {
			merged[k] = v
		}
	}
	return merged
}
