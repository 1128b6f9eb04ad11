// api/names.go
package api

import "strings"

// normalizeName возвращает FQN ("module.name") по паре {module, name} для
// любого реестра по FQN. Регистр не важен. Если module пустой, имя должно
// быть уникальным среди всех модулей.
func normalizeName[V any](byFQN map[string]V, module, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	ml := strings.ToLower(strings.TrimSpace(module))
	nl := strings.ToLower(strings.TrimSpace(name))

	if ml != "" {
		if _, ok := byFQN[module+"."+name]; ok {
			return module + "." + name, true
		}
		for fqn := range byFQN {
			fm, fn := splitFQN(fqn)
			if strings.ToLower(fm) == ml && strings.ToLower(fn) == nl {
				return fqn, true
			}
		}
		return "", false
	}

	var found string
	for fqn := range byFQN {
		if _, fn := splitFQN(fqn); strings.ToLower(fn) == nl {
			if found != "" { // неуникально
				return "", false
			}
			found = fqn
		}
	}
	return found, found != ""
}

// splitFQN("module.entity") -> ("module","entity")
func splitFQN(fqn string) (string, string) {
	i := strings.IndexByte(fqn, '.')
	if i <= 0 || i >= len(fqn)-1 {
		return "", fqn
	}
	return fqn[:i], fqn[i+1:]
}
