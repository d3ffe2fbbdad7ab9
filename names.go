package azguard

import "golang.org/x/text/cases"

func namesEqual(fold bool, a, b string) bool {
	if a == b {
		return true
	}
	if !fold {
		return false
	}
	c := cases.Fold()
	return c.String(a) == c.String(b)
}

func containsName(fold bool, list []string, name string) bool {
	for _, v := range list {
		if namesEqual(fold, v, name) {
			return true
		}
	}
	return false
}
